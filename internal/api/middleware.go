package api

import (
	"net/http"
	"strings"

	"techorbit/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// authRequired verifies the bearer token and stores the verified user id
// and role in the request context. The role comes from the token claims
// set at login, never from anything the client asserts per-request.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims, err := h.tokens.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// requireRole gates a route to the listed roles.
func (h *Handler) requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
	}
}

func actor(c *gin.Context) (int64, string) {
	return c.GetInt64(ctxUserID), c.GetString(ctxRole)
}

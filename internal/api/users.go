package api

import (
	"net/http"

	"techorbit/internal/service"

	"github.com/gin-gonic/gin"
)

// signup handles account registration
func (h *Handler) signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.users.Signup(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Account created", resp)
}

// login handles credential verification
func (h *Handler) login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Logged in", resp)
}

// listUsers handles the admin account listing
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Users fetched", users)
}

// updateUser handles profile edits (self or admin)
func (h *Handler) updateUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	actorID, role := actor(c)
	user, err := h.users.UpdateUser(c.Request.Context(), id, actorID, role, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "User updated", user)
}

// deleteUser handles admin account removal
func (h *Handler) deleteUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "User deleted", nil)
}

// getStats handles the admin analytics snapshot
func (h *Handler) getStats(c *gin.Context) {
	stats, err := h.stats.GetStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Stats fetched", stats)
}

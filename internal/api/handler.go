package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"techorbit/internal/auth"
	"techorbit/internal/models"
	"techorbit/internal/redisclient"
	"techorbit/internal/service"
	"techorbit/internal/store"
	"techorbit/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains the HTTP handlers for the storefront API.
type Handler struct {
	users         *service.UserService
	catalog       *service.CatalogService
	orders        *service.OrderService
	reviews       *service.ReviewService
	wishlist      *service.WishlistService
	notifications *service.NotificationService
	coupons       *service.CouponService
	stats         *service.StatsService
	redis         *redisclient.Client
	tokens        *auth.Manager
	logger        *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	users *service.UserService,
	catalog *service.CatalogService,
	orders *service.OrderService,
	reviews *service.ReviewService,
	wishlist *service.WishlistService,
	notifications *service.NotificationService,
	coupons *service.CouponService,
	stats *service.StatsService,
	redis *redisclient.Client,
	tokens *auth.Manager,
) *Handler {
	return &Handler{
		users:         users,
		catalog:       catalog,
		orders:        orders,
		reviews:       reviews,
		wishlist:      wishlist,
		notifications: notifications,
		coupons:       coupons,
		stats:         stats,
		redis:         redis,
		tokens:        tokens,
		logger:        util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.Use(corsMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/signup", h.signup)
		api.POST("/login", h.login)

		api.GET("/products", h.listProducts)
		api.GET("/products/:id", h.getProduct)
		api.GET("/products/seller/:id", h.getProductsBySeller)
		api.GET("/categories", h.getCategories)
		api.GET("/reviews/:productId", h.getReviews)
		api.POST("/validate-coupon", h.validateCoupon)

		authed := api.Group("", h.authRequired())
		{
			authed.POST("/products", h.requireRole(models.RoleSeller, models.RoleAdmin), h.createProduct)
			authed.PUT("/products/:id", h.requireRole(models.RoleSeller, models.RoleAdmin), h.updateProduct)
			authed.DELETE("/products/:id", h.requireRole(models.RoleSeller, models.RoleAdmin), h.deleteProduct)

			authed.GET("/users", h.requireRole(models.RoleAdmin), h.listUsers)
			authed.PUT("/users/:id", h.updateUser)
			authed.DELETE("/users/:id", h.requireRole(models.RoleAdmin), h.deleteUser)
			authed.GET("/stats", h.requireRole(models.RoleAdmin), h.getStats)

			authed.POST("/orders", h.checkout)
			authed.PATCH("/orders/:id", h.updateOrderStatus)
			authed.GET("/orders/:userId", h.getOrdersByUser)
			authed.GET("/orders/seller/:id", h.getOrdersBySeller)
			authed.GET("/orders/detail/:id", h.getOrderDetail)

			authed.POST("/reviews", h.createReview)
			authed.POST("/wishlist", h.toggleWishlist)
			authed.GET("/wishlist/:userId", h.getWishlist)

			authed.GET("/notifications/:userId", h.getNotifications)
			authed.GET("/notifications/stream/:userId", h.streamNotifications)
			authed.PATCH("/notifications/read/:id", h.markNotificationRead)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// ok writes the success envelope
func ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"message": message, "data": data})
}

// respondError maps service errors onto HTTP statuses. Internal errors are
// logged and never leak driver details to the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicateEmail),
		errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, service.ErrCannotCancel),
		errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCoupon),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrUnknownPaymentMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

// corsMiddleware allows the storefront client origin
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

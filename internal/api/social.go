package api

import (
	"net/http"

	"techorbit/internal/models"
	"techorbit/internal/service"

	"github.com/gin-gonic/gin"
)

// createReview handles posting a product review
func (h *Handler) createReview(c *gin.Context) {
	var req service.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	userID, _ := actor(c)
	review, err := h.reviews.CreateReview(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Review created", review)
}

// getReviews lists a product's reviews
func (h *Handler) getReviews(c *gin.Context) {
	id, valid := pathID(c, "productId")
	if !valid {
		return
	}

	reviews, err := h.reviews.GetReviews(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Reviews fetched", reviews)
}

// toggleWishlist flips wishlist membership for the acting user
func (h *Handler) toggleWishlist(c *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	userID, _ := actor(c)
	added, err := h.wishlist.Toggle(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	message := "Removed from wishlist"
	if added {
		message = "Added to wishlist"
	}
	ok(c, http.StatusOK, message, gin.H{"wishlisted": added})
}

// getWishlist lists the acting user's wishlisted products
func (h *Handler) getWishlist(c *gin.Context) {
	id, valid := pathID(c, "userId")
	if !valid {
		return
	}

	actorID, role := actor(c)
	if role != models.RoleAdmin && actorID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
		return
	}

	products, err := h.wishlist.List(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Wishlist fetched", products)
}

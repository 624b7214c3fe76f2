package api

import (
	"net/http"

	"techorbit/internal/models"
	"techorbit/internal/service"

	"github.com/gin-gonic/gin"
)

// checkout handles order placement
func (h *Handler) checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	req.UserID, _ = actor(c)
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.orders.Checkout(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Order placed", resp)
}

// updateOrderStatus handles status transitions: seller shipping updates
// and buyer cancellation.
func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	actorID, role := actor(c)
	order, err := h.orders.UpdateStatus(c.Request.Context(), id, actorID, role, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Order updated", order)
}

// getOrdersByUser lists a buyer's orders; buyers see only their own.
func (h *Handler) getOrdersByUser(c *gin.Context) {
	id, valid := pathID(c, "userId")
	if !valid {
		return
	}

	actorID, role := actor(c)
	if role == models.RoleUser && actorID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
		return
	}

	orders, err := h.orders.GetOrdersByUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Orders fetched", orders)
}

// getOrdersBySeller lists orders containing the seller's products
func (h *Handler) getOrdersBySeller(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	actorID, role := actor(c)
	if role != models.RoleAdmin && actorID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
		return
	}

	orders, err := h.orders.GetOrdersBySeller(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Seller orders fetched", orders)
}

// getOrderDetail fetches one order with items and tracking progress
func (h *Handler) getOrderDetail(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	actorID, role := actor(c)
	detail, err := h.orders.GetOrderDetail(c.Request.Context(), id, actorID, role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Order fetched", detail)
}

// validateCoupon checks a discount code and reports the discount it would
// yield on the supplied subtotal.
func (h *Handler) validateCoupon(c *gin.Context) {
	var req struct {
		Code     string  `json:"code" binding:"required"`
		Subtotal float64 `json:"subtotal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	percent, err := h.coupons.Validate(req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}

	discount := req.Subtotal * float64(percent) / 100
	final := req.Subtotal - discount
	if final < 0 {
		final = 0
	}

	ok(c, http.StatusOK, "Coupon applied", gin.H{
		"code":     req.Code,
		"percent":  percent,
		"discount": discount,
		"total":    final,
	})
}

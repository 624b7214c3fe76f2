package api

import (
	"net/http"
	"strconv"

	"techorbit/internal/service"
	"techorbit/internal/store"

	"github.com/gin-gonic/gin"
)

// listProducts handles the filtered catalog listing
func (h *Handler) listProducts(c *gin.Context) {
	filter := store.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	}

	if v := c.Query("min_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_price"})
			return
		}
		filter.MinPrice = &p
	}
	if v := c.Query("max_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_price"})
			return
		}
		filter.MaxPrice = &p
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	products, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Products fetched", products)
}

// getProduct handles fetching one product
func (h *Handler) getProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Product fetched", product)
}

// getProductsBySeller lists one seller's products
func (h *Handler) getProductsBySeller(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	products, err := h.catalog.GetProductsBySeller(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Seller products fetched", products)
}

// getCategories lists the distinct catalog categories
func (h *Handler) getCategories(c *gin.Context) {
	categories, err := h.catalog.GetCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Categories fetched", categories)
}

// createProduct handles a seller adding a listing
func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	sellerID, _ := actor(c)
	product, err := h.catalog.CreateProduct(c.Request.Context(), sellerID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Product created", product)
}

// updateProduct handles editing a listing
func (h *Handler) updateProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	actorID, role := actor(c)
	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, actorID, role, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Product updated", product)
}

// deleteProduct handles removing a listing
func (h *Handler) deleteProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	actorID, role := actor(c)
	if err := h.catalog.DeleteProduct(c.Request.Context(), id, actorID, role); err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Product deleted", nil)
}

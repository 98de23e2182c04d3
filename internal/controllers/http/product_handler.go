package http

import (
	"net/http"

	"storefront-api/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) ListProducts(c *gin.Context) {
	page, limit, ok := parsePage(c)
	if !ok {
		return
	}

	// inactive products stay hidden unless an admin asks for them
	p, _ := principalFrom(c)
	filter := domain.ProductFilter{
		Category:        c.Query("category"),
		Search:          c.Query("search"),
		IncludeInactive: p.IsAdmin && c.Query("isActive") == "false",
	}
	for key, dst := range map[string]**decimal.Decimal{"minPrice": &filter.MinPrice, "maxPrice": &filter.MaxPrice} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			badRequest(c, "Invalid "+key)
			return
		}
		*dst = &d
	}

	result, err := h.catalog.ListProducts(c.Request.Context(), filter, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProductListResponse{Products: result.Products, Pagination: pagination(page, limit, result.Total)})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	prod, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": prod})
}

func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.GetCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	prod, err := h.catalog.CreateProduct(c.Request.Context(), req.toProduct())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": prod})
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	prod, err := h.catalog.UpdateProduct(c.Request.Context(), id, req.toUpdate())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": prod})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

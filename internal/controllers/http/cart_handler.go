package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.carts.GetCart(c.Request.Context(), mustPrincipal(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	item, err := h.carts.AddToCart(c.Request.Context(), mustPrincipal(c).UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart successfully", "cartItem": item})
}

// UpdateCartItem sets the quantity. Zero removes the entry.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	productID, ok := parseID(c, "productId", "product")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid quantity")
		return
	}

	item, err := h.carts.UpdateQuantity(c.Request.Context(), mustPrincipal(c).UserID, productID, *req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if *req.Quantity == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart successfully"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated successfully", "cartItem": item})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	productID, ok := parseID(c, "productId", "product")
	if !ok {
		return
	}

	removed, err := h.carts.RemoveFromCart(c.Request.Context(), mustPrincipal(c).UserID, productID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart successfully"})
}

func (h *Handler) ClearCart(c *gin.Context) {
	cleared, err := h.carts.ClearCart(c.Request.Context(), mustPrincipal(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully", "success": cleared})
}

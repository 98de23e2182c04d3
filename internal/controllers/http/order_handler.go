package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	p := mustPrincipal(c)
	order, err := h.orders.Checkout(c.Request.Context(), req.toInput(p.UserID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": order})
}

func (h *Handler) CreateOrderFromCart(c *gin.Context) {
	var req CreateOrderFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	p := mustPrincipal(c)
	order, err := h.orders.CreateOrderFromCart(c.Request.Context(), p.UserID, req.ShippingAddress, req.BillingAddress, req.PaymentMethod)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully from cart", "order": order})
}

func (h *Handler) GetMyOrders(c *gin.Context) {
	page, limit, ok := parsePage(c)
	if !ok {
		return
	}

	p := mustPrincipal(c)
	result, err := h.orders.GetOrdersByUserID(c.Request.Context(), p.UserID, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, OrderListResponse{Orders: result.Orders, Pagination: pagination(page, limit, result.Total)})
}

func (h *Handler) GetAllOrders(c *gin.Context) {
	page, limit, ok := parsePage(c)
	if !ok {
		return
	}

	result, err := h.orders.GetAllOrders(c.Request.Context(), page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, OrderListResponse{Orders: result.Orders, Pagination: pagination(page, limit, result.Total)})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id, mustPrincipal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	order, err := h.orders.UpdateOrder(c.Request.Context(), id, req.toUpdate())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), mustPrincipal(c).UserID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": order})
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	found, err := h.orders.DeleteOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"storefront-api/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	orders  *services.OrderService
	carts   *services.CartService
	catalog *services.CatalogService
	users   *services.UserService
	tokens  TokenVerifier
	health  func(ctx context.Context) error
	logger  *zap.Logger
}

func NewHandler(
	orders *services.OrderService,
	carts *services.CartService,
	catalog *services.CatalogService,
	users *services.UserService,
	tokens TokenVerifier,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		orders:  orders,
		carts:   carts,
		catalog: catalog,
		users:   users,
		tokens:  tokens,
		logger:  logger,
	}
}

// SetHealthCheck installs the dependency probe behind GET /health.
func (h *Handler) SetHealthCheck(fn func(ctx context.Context) error) {
	h.health = fn
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", PrometheusHandler())

	api := r.Group("/api")
	authed := h.Authenticate()
	admin := RequireAdmin()

	auth := api.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.GET("/profile", authed, h.GetProfile)
	auth.PUT("/profile", authed, h.UpdateProfile)

	products := api.Group("/products")
	products.GET("", h.OptionalAuthenticate(), h.ListProducts)
	products.GET("/categories/list", h.GetCategories)
	products.GET("/:id", h.GetProduct)
	products.POST("", authed, admin, h.CreateProduct)
	products.PUT("/:id", authed, admin, h.UpdateProduct)
	products.DELETE("/:id", authed, admin, h.DeleteProduct)

	cart := api.Group("/cart", authed)
	cart.GET("", h.GetCart)
	cart.POST("/add", h.AddToCart)
	cart.PUT("/update/:productId", h.UpdateCartItem)
	cart.DELETE("/remove/:productId", h.RemoveFromCart)
	cart.DELETE("/clear", h.ClearCart)

	orders := api.Group("/orders", authed)
	orders.GET("", admin, h.GetAllOrders)
	orders.GET("/my-orders", h.GetMyOrders)
	orders.GET("/:id", h.GetOrder)
	orders.POST("/create", h.CreateOrder)
	orders.POST("/create-from-cart", h.CreateOrderFromCart)
	orders.PUT("/:id/status", admin, h.UpdateOrderStatus)
	orders.PUT("/:id/cancel", h.CancelOrder)
	orders.DELETE("/:id", admin, h.DeleteOrder)
}

func (h *Handler) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			h.logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC()})
}

func parseID(c *gin.Context, param, what string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+what+" ID")
		return 0, false
	}
	return id, true
}

// parsePage reads page and limit, defaulting absent values.
func parsePage(c *gin.Context) (page, limit int, ok bool) {
	page, limit = services.DefaultPage, services.DefaultLimit
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "Invalid page")
			return 0, 0, false
		}
		page = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "Invalid limit")
			return 0, 0, false
		}
		limit = n
	}

	page, limit, err := services.NormalizePage(page, limit)
	if err != nil {
		badRequest(c, "page and limit must be positive")
		return 0, 0, false
	}
	return page, limit, true
}

func pagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: services.PageCount(total, limit),
	}
}

package http

import (
	"storefront-api/internal/domain"

	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"required,min=2,max=50"`
	LastName  string `json:"lastName" binding:"required,min=2,max=50"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

func (r RegisterRequest) toInput() domain.RegisterInput {
	return domain.RegisterInput{
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Address:   r.Address,
		City:      r.City,
		State:     r.State,
		ZipCode:   r.ZipCode,
		Country:   r.Country,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
}

// UpdateProfileRequest has no email, password or role fields, so they cannot be changed here.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=2,max=50"`
	LastName  *string `json:"lastName" binding:"omitempty,min=2,max=50"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	ZipCode   *string `json:"zipCode"`
	Country   *string `json:"country"`
}

func (r UpdateProfileRequest) toUpdate() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Address:   r.Address,
		City:      r.City,
		State:     r.State,
		ZipCode:   r.ZipCode,
		Country:   r.Country,
	}
}

type ProductRequest struct {
	Name        string          `json:"name" binding:"required,min=2,max=100"`
	Description string          `json:"description" binding:"required,min=10,max=1000"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" binding:"required,min=2,max=50"`
	ImageURL    string          `json:"imageUrl" binding:"required,url"`
	Stock       *int            `json:"stock" binding:"required,min=0"`
	IsActive    *bool           `json:"isActive"`
}

func (r ProductRequest) toProduct() *domain.Product {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &domain.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Stock:       *r.Stock,
		IsActive:    active,
	}
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string          `json:"description" binding:"omitempty,min=10,max=1000"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category" binding:"omitempty,min=2,max=50"`
	ImageURL    *string          `json:"imageUrl" binding:"omitempty,url"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	IsActive    *bool            `json:"isActive"`
}

func (r UpdateProductRequest) toUpdate() domain.ProductUpdate {
	return domain.ProductUpdate{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Stock:       r.Stock,
		IsActive:    r.IsActive,
	}
}

type AddToCartRequest struct {
	ProductID uint64 `json:"productId" binding:"required,gt=0"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

type OrderItemRequest struct {
	ProductID uint64          `json:"productId" binding:"required,gt=0"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Price     decimal.Decimal `json:"price"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress string             `json:"shippingAddress" binding:"required,min=10"`
	BillingAddress  string             `json:"billingAddress" binding:"required,min=10"`
	PaymentMethod   string             `json:"paymentMethod" binding:"required,oneof=credit_card debit_card paypal stripe"`
}

func (r CreateOrderRequest) toInput(userID uint64) domain.CreateOrderInput {
	lines := make([]domain.OrderLine, len(r.Items))
	for i, it := range r.Items {
		lines[i] = domain.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
	}
	return domain.CreateOrderInput{
		UserID:          userID,
		Items:           lines,
		ShippingAddress: r.ShippingAddress,
		BillingAddress:  r.BillingAddress,
		PaymentMethod:   r.PaymentMethod,
	}
}

type CreateOrderFromCartRequest struct {
	ShippingAddress string `json:"shippingAddress" binding:"required,min=10"`
	BillingAddress  string `json:"billingAddress" binding:"required,min=10"`
	PaymentMethod   string `json:"paymentMethod" binding:"required,oneof=credit_card debit_card paypal stripe"`
}

type UpdateOrderRequest struct {
	Status          *domain.OrderStatus   `json:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	PaymentStatus   *domain.PaymentStatus `json:"paymentStatus" binding:"omitempty,oneof=pending paid failed refunded"`
	ShippingAddress *string               `json:"shippingAddress" binding:"omitempty,min=10"`
	BillingAddress  *string               `json:"billingAddress" binding:"omitempty,min=10"`
}

func (r UpdateOrderRequest) toUpdate() domain.OrderUpdate {
	return domain.OrderUpdate{
		Status:          r.Status,
		PaymentStatus:   r.PaymentStatus,
		ShippingAddress: r.ShippingAddress,
		BillingAddress:  r.BillingAddress,
	}
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type OrderListResponse struct {
	Orders     []domain.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

type ProductListResponse struct {
	Products   []domain.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

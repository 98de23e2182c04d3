package services

import (
	"time"

	"storefront-api/internal/domain"

	"github.com/shopspring/decimal"
)

func CreateMockOrder(id uint64, userID uint64, status domain.OrderStatus, items ...domain.OrderItem) *domain.Order {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return &domain.Order{
		ID:              id,
		UserID:          userID,
		Status:          status,
		PaymentStatus:   domain.PaymentPending,
		TotalAmount:     total,
		ShippingAddress: TestAddress,
		BillingAddress:  TestAddress,
		PaymentMethod:   "credit_card",
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
		Items:           items,
	}
}

func CreateMockProduct(id uint64, name string, price string, stock int) *domain.Product {
	return &domain.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: "Electronics",
		ImageURL: "https://img.example.com/" + name + ".png",
		Stock:    stock,
		IsActive: true,
	}
}

func CreateMockCartItem(userID, productID uint64, quantity int, price string) domain.CartItem {
	return domain.CartItem{
		ID:           productID,
		UserID:       userID,
		ProductID:    productID,
		Quantity:     quantity,
		ProductName:  "Product",
		ProductPrice: decimal.RequireFromString(price),
	}
}

const (
	TestUserID    = uint64(1)
	TestOrderID   = uint64(1)
	TestProductID = uint64(7)
	TestAddress   = "221B Baker Street, London"
)

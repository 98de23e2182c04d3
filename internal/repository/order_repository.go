package repository

import (
	"context"

	"storefront-api/internal/domain"
)

// OrderRepository lookups return nil, nil when the order does not exist.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	AddItem(ctx context.Context, item *domain.OrderItem) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	// FindPage returns one page of orders, newest first, with items loaded.
	// A nil userID selects every order.
	FindPage(ctx context.Context, userID *uint64, offset, limit int) (*domain.OrderPage, error)
	Update(ctx context.Context, id uint64, upd domain.OrderUpdate) (bool, error)
	// UpdateStatusIf moves the order to `to` only while it is still in `from`.
	UpdateStatusIf(ctx context.Context, id uint64, from, to domain.OrderStatus) (bool, error)
	DeleteItems(ctx context.Context, orderID uint64) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

package repository

import (
	"context"

	"storefront-api/internal/domain"

	"github.com/shopspring/decimal"
)

type CartRepository interface {
	Find(ctx context.Context, userID, productID uint64) (*domain.CartItem, error)
	FindByUser(ctx context.Context, userID uint64) ([]domain.CartItem, error)
	Increment(ctx context.Context, userID, productID uint64, quantity int) (*domain.CartItem, error)
	// Upsert inserts the entry or, when (user, product) already exists, adds its quantity.
	Upsert(ctx context.Context, item *domain.CartItem) error
	SetQuantity(ctx context.Context, userID, productID uint64, quantity int) (*domain.CartItem, error)
	Remove(ctx context.Context, userID, productID uint64) (bool, error)
	Clear(ctx context.Context, userID uint64) (bool, error)
	Total(ctx context.Context, userID uint64) (decimal.Decimal, error)
	Count(ctx context.Context, userID uint64) (int64, error)
}

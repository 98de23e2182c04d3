package repository

import (
	"context"

	"storefront-api/internal/domain"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	FindActiveByID(ctx context.Context, id uint64) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter, offset, limit int) (*domain.ProductPage, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id uint64, upd domain.ProductUpdate) (bool, error)
	Delete(ctx context.Context, id uint64) (bool, error)
	// DecrementStock fails with domain.ErrInsufficientStock instead of letting stock go negative.
	DecrementStock(ctx context.Context, id uint64, quantity int) error
}

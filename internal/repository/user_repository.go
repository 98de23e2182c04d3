package repository

import (
	"context"

	"storefront-api/internal/domain"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, id uint64, upd domain.ProfileUpdate) (bool, error)
}

package gormrepo

import (
	"context"
	"errors"
	"time"

	"storefront-api/internal/domain"

	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *userRepo) Update(ctx context.Context, id uint64, upd domain.ProfileUpdate) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	fields := map[string]any{"updated_at": time.Now()}
	set := func(column string, v *string) {
		if v != nil {
			fields[column] = *v
		}
	}
	set("first_name", upd.FirstName)
	set("last_name", upd.LastName)
	set("phone", upd.Phone)
	set("address", upd.Address)
	set("city", upd.City)
	set("state", upd.State)
	set("zip_code", upd.ZipCode)
	set("country", upd.Country)

	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return false, err
	}
	return true, nil
}

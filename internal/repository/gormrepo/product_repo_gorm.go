package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-api/internal/domain"

	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	return firstProduct(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *productRepo) FindActiveByID(ctx context.Context, id uint64) (*domain.Product, error) {
	return firstProduct(r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true))
}

func firstProduct(q *gorm.DB) (*domain.Product, error) {
	var p domain.Product
	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter domain.ProductFilter, offset, limit int) (*domain.ProductPage, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if !filter.IncludeInactive {
			db = db.Where("is_active = ?", true)
		}
		if filter.Category != "" {
			db = db.Where("category = ?", filter.Category)
		}
		if filter.MinPrice != nil {
			db = db.Where("price >= ?", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			db = db.Where("price <= ?", *filter.MaxPrice)
		}
		if q := strings.TrimSpace(filter.Search); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			db = db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, limit)
	err := r.db.WithContext(ctx).
		Scopes(scope).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return &domain.ProductPage{Products: products, Total: total}, nil
}

func (r *productRepo) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("is_active = ?", true).
		Distinct().
		Order("category").
		Pluck("category", &out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) Update(ctx context.Context, id uint64, upd domain.ProductUpdate) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	fields := map[string]any{"updated_at": time.Now()}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.Price != nil {
		fields["price"] = *upd.Price
	}
	if upd.Category != nil {
		fields["category"] = *upd.Category
	}
	if upd.ImageURL != nil {
		fields["image_url"] = *upd.ImageURL
	}
	if upd.Stock != nil {
		fields["stock"] = *upd.Stock
	}
	if upd.IsActive != nil {
		fields["is_active"] = *upd.IsActive
	}

	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *productRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *productRepo) DecrementStock(ctx context.Context, id uint64, quantity int) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", domain.ErrInsufficientStock, id)
	}
	return nil
}

package gormrepo

import (
	"context"
	"errors"
	"time"

	"storefront-api/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepo struct {
	db *gorm.DB
}

func (r *cartRepo) Find(ctx context.Context, userID, productID uint64) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) FindByUser(ctx context.Context, userID uint64) ([]domain.CartItem, error) {
	items := []domain.CartItem{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepo) Increment(ctx context.Context, userID, productID uint64, quantity int) (*domain.CartItem, error) {
	err := r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, userID, productID)
}

// Upsert qualifies the existing quantity with the table name; postgres treats a
// bare column as ambiguous against EXCLUDED.
func (r *cartRepo) Upsert(ctx context.Context, item *domain.CartItem) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + ?", item.Quantity),
			"updated_at": time.Now(),
		}),
	}).Create(item).Error
}

func (r *cartRepo) SetQuantity(ctx context.Context, userID, productID uint64, quantity int) (*domain.CartItem, error) {
	err := r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now()}).Error
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, userID, productID)
}

func (r *cartRepo) Remove(ctx context.Context, userID, productID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *cartRepo) Clear(ctx context.Context, userID uint64) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *cartRepo) Total(ctx context.Context, userID uint64) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Select("COALESCE(SUM(quantity * product_price), 0)").
		Where("user_id = ?", userID).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *cartRepo) Count(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("user_id = ?", userID).
		Row().
		Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

package gormrepo

import (
	"context"
	"errors"
	"time"

	"storefront-api/internal/domain"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	// items are written one by one through AddItem
	if err := r.db.WithContext(ctx).Omit("Items").Create(order).Error; err != nil {
		return err
	}
	if order.ID == 0 {
		return errors.New("failed to assign order ID")
	}
	return nil
}

func (r *orderRepo) AddItem(ctx context.Context, item *domain.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items", orderItemsByID).First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindPage(ctx context.Context, userID *uint64, offset, limit int) (*domain.OrderPage, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if userID != nil {
			return db.Where("user_id = ?", *userID)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, limit)
	err := r.db.WithContext(ctx).
		Scopes(scope).
		Preload("Items", orderItemsByID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return &domain.OrderPage{Orders: orders, Total: total}, nil
}

func (r *orderRepo) Update(ctx context.Context, id uint64, upd domain.OrderUpdate) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	fields := map[string]any{"updated_at": time.Now()}
	if upd.Status != nil {
		fields["status"] = string(*upd.Status)
	}
	if upd.PaymentStatus != nil {
		fields["payment_status"] = string(*upd.PaymentStatus)
	}
	if upd.ShippingAddress != nil {
		fields["shipping_address"] = *upd.ShippingAddress
	}
	if upd.BillingAddress != nil {
		fields["billing_address"] = *upd.BillingAddress
	}

	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *orderRepo) UpdateStatusIf(ctx context.Context, id uint64, from, to domain.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) DeleteItems(ctx context.Context, orderID uint64) error {
	return r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&domain.OrderItem{}).Error
}

func (r *orderRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Order{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func orderItemsByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

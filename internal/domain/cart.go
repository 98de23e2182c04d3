package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem snapshots the product name, price and image when it is first added.
// The snapshot is not refreshed when the catalog changes.
type CartItem struct {
	ID              uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          uint64          `json:"userId" gorm:"not null;uniqueIndex:idx_cart_user_product"`
	ProductID       uint64          `json:"productId" gorm:"not null;uniqueIndex:idx_cart_user_product"`
	Quantity        int             `json:"quantity" gorm:"not null;default:1"`
	ProductName     string          `json:"productName" gorm:"type:varchar(255);not null"`
	ProductPrice    decimal.Decimal `json:"productPrice" gorm:"type:decimal(10,2);not null"`
	ProductImageURL string          `json:"productImageUrl" gorm:"column:product_image_url;type:varchar(500);not null"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`

	User    *User    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Product *Product `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

type CartSummary struct {
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int64           `json:"itemCount"`
}

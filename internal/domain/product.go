package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Category    string          `json:"category" gorm:"type:varchar(100);not null;index"`
	ImageURL    string          `json:"imageUrl" gorm:"column:image_url;type:varchar(500);not null"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	IsActive    bool            `json:"isActive" gorm:"not null;default:true"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

type ProductFilter struct {
	Category        string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Search          string
	IncludeInactive bool
}

type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	ImageURL    *string
	Stock       *int
	IsActive    *bool
}

func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.Category == nil &&
		u.ImageURL == nil && u.Stock == nil && u.IsActive == nil
}

type ProductPage struct {
	Products []Product
	Total    int64
}

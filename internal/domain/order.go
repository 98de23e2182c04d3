package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next follows s in the regular order lifecycle.
// Delivered and cancelled orders have no successors.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range orderTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type Order struct {
	ID              uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          uint64          `json:"userId" gorm:"not null;index"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" gorm:"type:varchar(20);not null;default:'pending'"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:decimal(10,2);not null"`
	ShippingAddress string          `json:"shippingAddress" gorm:"type:varchar(500);not null"`
	BillingAddress  string          `json:"billingAddress" gorm:"type:varchar(500);not null"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"type:varchar(100);not null"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// OrderItem is frozen at order time: price and product snapshot do not follow later catalog edits.
type OrderItem struct {
	ID              uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID         uint64          `json:"orderId" gorm:"not null;index"`
	ProductID       uint64          `json:"productId" gorm:"not null;index"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	ProductName     string          `json:"productName" gorm:"type:varchar(255);not null"`
	ProductImageURL string          `json:"productImageUrl" gorm:"column:product_image_url;type:varchar(500)"`

	Product *Product `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// OrderLine is one requested line of a new order. Price is supplied by the caller.
type OrderLine struct {
	ProductID uint64
	Quantity  int
	Price     decimal.Decimal
}

type CreateOrderInput struct {
	UserID          uint64
	Items           []OrderLine
	ShippingAddress string
	BillingAddress  string
	PaymentMethod   string
}

// OrderUpdate carries the mutable order fields; nil fields are left untouched.
type OrderUpdate struct {
	Status          *OrderStatus
	PaymentStatus   *PaymentStatus
	ShippingAddress *string
	BillingAddress  *string
}

func (u OrderUpdate) Empty() bool {
	return u.Status == nil && u.PaymentStatus == nil && u.ShippingAddress == nil && u.BillingAddress == nil
}

type OrderPage struct {
	Orders []Order
	Total  int64
}

// OrderTotal sums price*quantity over the lines.
func OrderTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

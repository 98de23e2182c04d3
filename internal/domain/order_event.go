package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated   = "order.created"
	EventOrderUpdated   = "order.updated"
	EventOrderCancelled = "order.cancelled"
	EventOrderDeleted   = "order.deleted"
)

type OrderEvent struct {
	OrderID       uint64          `json:"orderId"`
	UserID        uint64          `json:"userId"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	ItemCount     int             `json:"itemCount"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

func NewOrderEvent(o *Order) OrderEvent {
	return OrderEvent{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		ItemCount:     len(o.Items),
		OccurredAt:    time.Now(),
	}
}

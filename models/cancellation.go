package models

import (
	"time"
)

// Cancellation types
const (
	CancellationTypeCustomer = "customer"
	CancellationTypeAdmin    = "admin"
	CancellationTypeSystem   = "system"
)

// Refund statuses, shared between cancellations and returns
const (
	RefundStatusPending    = "pending"
	RefundStatusProcessing = "processing"
	RefundStatusCompleted  = "completed"
	RefundStatusFailed     = "failed"
)

// OrderCancellation records a cancellation request against an order.
// Business rule: at most one active (non-failed) cancellation per order.
type OrderCancellation struct {
	ID                     string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID                uint      `gorm:"not null;index" json:"order_id"`
	Order                  Order     `gorm:"foreignKey:OrderID" json:"-"`
	UserID                 uint      `gorm:"index" json:"user_id"`
	Reason                 string    `json:"reason"`
	CancellationType       string    `gorm:"not null;default:'customer'" json:"cancellation_type"`
	CancelledBy            uint      `json:"cancelled_by"`
	RefundAmount           float64   `json:"refund_amount"`
	RefundStatus           string    `gorm:"not null;default:'pending'" json:"refund_status"`
	ShipmentCancelled      bool      `gorm:"not null;default:false" json:"shipment_cancelled"`
	ShipmentCancelResponse JSONMap   `gorm:"type:text" json:"shipment_cancel_response"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// TableName specifies the table name for the OrderCancellation model
func (OrderCancellation) TableName() string {
	return "order_cancellations"
}

// IsActive reports whether this cancellation still blocks a new one.
// A failed refund releases the slot so the cancellation can be retried.
func (c *OrderCancellation) IsActive() bool {
	return c.RefundStatus != RefundStatusFailed
}

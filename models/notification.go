package models

import (
	"time"
)

// Notification types emitted by the order/return core
const (
	NotificationOrderPlaced    = "order_placed"
	NotificationOrderStatus    = "order_status"
	NotificationOrderCancelled = "order_cancelled"
	NotificationReturnRequest  = "return_request"
	NotificationReturnApproved = "return_approved"
	NotificationReturnRejected = "return_rejected"
	NotificationReturnUpdate   = "return_update"
	NotificationRefundUpdate   = "refund_update"
)

// Notification is a user-visible event. A nil UserID puts the event on the
// admin feed instead of a user's feed.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Type      string    `gorm:"not null;index" json:"type"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"not null" json:"message"`
	OrderID   *uint     `gorm:"index" json:"order_id"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

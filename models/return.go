package models

import (
	"time"
)

// Return statuses. The lifecycle is strictly forward-moving:
// requested → approved → picked_up → received → refunded, with rejected
// reachable only from requested or approved. Rejected and refunded are
// terminal.
const (
	ReturnStatusRequested = "requested"
	ReturnStatusApproved  = "approved"
	ReturnStatusRejected  = "rejected"
	ReturnStatusPickedUp  = "picked_up"
	ReturnStatusReceived  = "received"
	ReturnStatusRefunded  = "refunded"
)

// Return types
const (
	ReturnTypeDefective = "defective"
	ReturnTypeWrongItem = "wrong_item"
	ReturnTypeNotNeeded = "not_needed"
	ReturnTypeOther     = "other"
)

// Return records a return request for a delivered order.
// Business rule: at most one active (non-rejected, non-refunded) return
// per order.
type Return struct {
	ID                  string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID             uint       `gorm:"not null;index" json:"order_id"`
	Order               Order      `gorm:"foreignKey:OrderID" json:"-"`
	UserID              uint       `gorm:"not null;index" json:"user_id"`
	Status              string     `gorm:"not null;default:'requested';index" json:"status"`
	ReturnType          string     `gorm:"not null;default:'defective'" json:"return_type"`
	Reason              string     `json:"reason"`
	Description         string     `json:"description"`
	EvidenceImages      StringList `gorm:"type:text" json:"evidence_images"` // S3 keys
	EvidenceVideos      StringList `gorm:"type:text" json:"evidence_videos"` // S3 keys
	RefundAmount        *float64   `json:"refund_amount"` // set on approval
	RefundStatus        string     `gorm:"not null;default:'pending'" json:"refund_status"`
	PickupCompletedDate *time.Time `json:"pickup_completed_date"`
	ReceivedDate        *time.Time `json:"received_date"`
	AdminNotes          string     `json:"admin_notes"`
	ProcessedBy         *uint      `json:"processed_by"` // admin who handled the request
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Return model
func (Return) TableName() string {
	return "returns"
}

// IsActive reports whether this return still blocks a new one for the
// same order.
func (r *Return) IsActive() bool {
	return r.Status != ReturnStatusRejected && r.Status != ReturnStatusRefunded
}

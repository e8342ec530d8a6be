package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses. Transitions only move forward (pending → processing →
// shipped → delivered) or to a terminal cancelled/returned state.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusReturned   = "returned"
)

// ShippingAddress is embedded into the order row so the address is frozen
// at checkout time.
type ShippingAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// Order represents a customer order. It is the aggregate root for its items
// and any attached cancellation or return.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	User            User            `gorm:"foreignKey:UserID" json:"user"`
	Status          string          `gorm:"not null;default:'pending';index" json:"status"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	PaymentMethod   string          `gorm:"not null;default:'cod'" json:"payment_method"` // "cod" or "prepaid"
	ApplyGST        bool            `gorm:"not null;default:false" json:"apply_gst"`
	Subtotal        float64         `gorm:"not null" json:"subtotal"`
	GSTAmount       float64         `gorm:"not null;default:0" json:"gst_amount"`
	GrandTotal      float64         `gorm:"not null" json:"grand_total"`
	DeliveredAt     *time.Time      `json:"delivered_at"` // anchor for the return window
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsTerminal reports whether the order has reached a state that permits no
// further lifecycle transitions.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCancelled || o.Status == OrderStatusReturned
}

// OrderItem is a line item on an order. UnitPrice is the selling price at
// the time of purchase.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int     `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

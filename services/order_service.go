package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amorlias/bharatbazaar-api/models"
)

// defaultGSTRate applies when no gst setting has been stored
const defaultGSTRate = 0.18

// CreateOrderItemInput is one requested line item at checkout
type CreateOrderItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderInput is the checkout payload handed to the order core
type CreateOrderInput struct {
	Items           []CreateOrderItemInput `json:"items" binding:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shipping_address" binding:"required"`
	PaymentMethod   string                 `json:"payment_method" binding:"required,oneof=cod prepaid"`
	ApplyGST        bool                   `json:"apply_gst"`
}

// statusRank orders the forward lifecycle states. Cancelled and returned
// are terminal and handled outside this ranking.
var statusRank = map[string]int{
	models.OrderStatusPending:    0,
	models.OrderStatusProcessing: 1,
	models.OrderStatusShipped:    2,
	models.OrderStatusDelivered:  3,
}

// generateOrderNumber builds a human-readable unique order number,
// e.g. BB-20250901-7F3A2C1D.
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("BB-%s-%s", time.Now().Format("20060102"), suffix)
}

// gstRate reads the configured GST rate from settings, falling back to the
// statutory default when unset.
func gstRate(tx *gorm.DB) float64 {
	var setting models.Setting
	if err := tx.Where("type = ?", models.SettingGST).First(&setting).Error; err != nil {
		return defaultGSTRate
	}
	if rate, ok := setting.Value["rate"].(float64); ok && rate >= 0 {
		return rate
	}
	return defaultGSTRate
}

// CreateOrder places an order for the user. All stock checks and writes
// happen in one transaction with the product rows locked, so two
// concurrent checkouts cannot both claim the last unit.
func CreateOrder(db *gorm.DB, user *models.User, input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, &ValidationError{Message: "Order must contain at least one item"}
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, &ValidationError{Message: "Item quantities must be positive"}
		}
	}

	var order *models.Order
	var placed *models.Notification

	err := db.Transaction(func(tx *gorm.DB) error {
		var subtotal float64
		orderItems := make([]models.OrderItem, 0, len(input.Items))

		// Quantity already claimed by earlier lines of this order, so a
		// product listed twice cannot pass the check on each line alone.
		claimed := make(map[uint]int)

		for _, item := range input.Items {
			// Lock the product row for the duration of the stock check so a
			// concurrent checkout of the same product serializes behind us.
			var product models.Product
			err := lockForUpdate(tx).First(&product, item.ProductID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Resource: "product", Message: fmt.Sprintf("Product %d not found", item.ProductID)}
				}
				return err
			}
			if !product.IsActive {
				return &ValidationError{Message: fmt.Sprintf("Product %q is no longer available", product.Name)}
			}

			blocked, err := blockedQuantity(tx, product.ID)
			if err != nil {
				return err
			}
			available := product.StockQty - blocked - claimed[product.ID]
			if available < 0 {
				available = 0
			}
			if item.Quantity > available {
				return &InsufficientStockError{
					ProductID: product.ID,
					Requested: item.Quantity,
					Available: available,
				}
			}
			claimed[product.ID] += item.Quantity

			subtotal += float64(item.Quantity) * product.SellingPrice
			orderItems = append(orderItems, models.OrderItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: product.SellingPrice,
			})
		}

		var gstAmount float64
		if input.ApplyGST {
			gstAmount = subtotal * gstRate(tx)
		}

		order = &models.Order{
			OrderNumber:     generateOrderNumber(),
			UserID:          user.ID,
			Status:          models.OrderStatusPending,
			Items:           orderItems,
			ShippingAddress: input.ShippingAddress,
			PaymentMethod:   input.PaymentMethod,
			ApplyGST:        input.ApplyGST,
			Subtotal:        subtotal,
			GSTAmount:       gstAmount,
			GrandTotal:      subtotal + gstAmount,
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		var err error
		placed, err = NotifyUser(tx, user.ID, models.NotificationOrderPlaced,
			"Order placed",
			fmt.Sprintf("Your order %s has been placed successfully.", order.OrderNumber),
			&order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	PublishNotifications(placed)

	if err := db.Preload("Items.Product").Preload("User").First(order, order.ID).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// TransitionStatus advances an order along the forward lifecycle
// (pending → processing → shipped → delivered). Skipping intermediate
// states is allowed; moving backwards is not. Cancellation goes through
// CancelOrder, never through here. Re-issuing the current status is an
// idempotent no-op.
func TransitionStatus(db *gorm.DB, orderID uint, newStatus string, actor *models.User) (*models.Order, error) {
	if _, ok := statusRank[newStatus]; !ok {
		if newStatus == models.OrderStatusCancelled {
			return nil, &StateConflictError{Message: "Use the cancellation endpoint to cancel an order"}
		}
		return nil, &ValidationError{Message: fmt.Sprintf("Unknown order status %q", newStatus)}
	}

	var order models.Order
	var notifs []*models.Notification

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "order", Message: "Order not found"}
			}
			return err
		}

		// Idempotent replay
		if order.Status == newStatus {
			return nil
		}

		if order.IsTerminal() {
			return &StateConflictError{Message: fmt.Sprintf("Order is %s and cannot change status", order.Status)}
		}
		if statusRank[newStatus] <= statusRank[order.Status] {
			return &StateConflictError{Message: fmt.Sprintf("Cannot move order from %s to %s", order.Status, newStatus)}
		}

		updates := map[string]interface{}{"status": newStatus}
		if newStatus == models.OrderStatusDelivered {
			now := time.Now()
			updates["delivered_at"] = &now
			order.DeliveredAt = &now
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}
		order.Status = newStatus

		n, err := NotifyUser(tx, order.UserID, models.NotificationOrderStatus,
			"Order update",
			fmt.Sprintf("Your order %s is now %s.", order.OrderNumber, newStatus),
			&order.ID)
		if err != nil {
			return err
		}
		notifs = append(notifs, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	PublishNotifications(notifs...)

	if err := db.Preload("Items.Product").First(&order, order.ID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amorlias/bharatbazaar-api/models"
)

// CancelEligibility is the answer to "can this order still be cancelled"
type CancelEligibility struct {
	CanCancel    bool    `json:"can_cancel"`
	Reason       string  `json:"reason,omitempty"`
	RefundAmount float64 `json:"refund_amount"`
}

// CancelOrderInput carries a cancellation request into the core
type CancelOrderInput struct {
	Reason           string `json:"reason" binding:"required"`
	CancellationType string `json:"cancellation_type"`
}

// refundableAmount is what the customer gets back on cancellation. Nothing
// was collected for cash-on-delivery orders.
func refundableAmount(order *models.Order) float64 {
	if order.PaymentMethod == "prepaid" {
		return order.GrandTotal
	}
	return 0
}

// activeCancellation returns the order's active cancellation, if any.
func activeCancellation(tx *gorm.DB, orderID uint) (*models.OrderCancellation, error) {
	var cancellation models.OrderCancellation
	err := tx.Where("order_id = ? AND refund_status <> ?", orderID, models.RefundStatusFailed).
		First(&cancellation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cancellation, nil
}

// CheckCancelEligibility reports whether the order can still be cancelled
// and the refund the customer would receive. Orders are cancellable until
// delivery; delivered orders must go through the return flow.
func CheckCancelEligibility(db *gorm.DB, orderID uint) (*CancelEligibility, error) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "order", Message: "Order not found"}
		}
		return nil, err
	}

	switch order.Status {
	case models.OrderStatusDelivered:
		return &CancelEligibility{CanCancel: false, Reason: "Order has been delivered. Please request a return instead."}, nil
	case models.OrderStatusCancelled:
		return &CancelEligibility{CanCancel: false, Reason: "Order is already cancelled."}, nil
	case models.OrderStatusReturned:
		return &CancelEligibility{CanCancel: false, Reason: "Order has been returned."}, nil
	}

	existing, err := activeCancellation(db, order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &CancelEligibility{CanCancel: false, Reason: "A cancellation is already in progress for this order."}, nil
	}

	return &CancelEligibility{CanCancel: true, RefundAmount: refundableAmount(&order)}, nil
}

// CancelOrder cancels an order and records the cancellation. Policy:
// customers may cancel while the order is pending or processing; once it
// has shipped only an admin may cancel it (the courier recall is attempted
// post-commit). Flipping the order to cancelled removes its items from the
// blocked set, which releases the reserved stock.
func CancelOrder(db *gorm.DB, orderID uint, actor *models.User, input CancelOrderInput) (*models.OrderCancellation, error) {
	cancellationType := input.CancellationType
	if cancellationType == "" {
		cancellationType = models.CancellationTypeCustomer
	}
	if actor.IsAdmin() && cancellationType == models.CancellationTypeCustomer {
		cancellationType = models.CancellationTypeAdmin
	}

	var cancellation *models.OrderCancellation
	var order models.Order
	var wasShipped bool
	var notifs []*models.Notification

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "order", Message: "Order not found"}
			}
			return err
		}

		if !actor.IsAdmin() && order.UserID != actor.ID {
			return &NotFoundError{Resource: "order", Message: "Order not found"}
		}

		switch order.Status {
		case models.OrderStatusDelivered:
			return &StateConflictError{Message: "Order has been delivered. Please request a return instead."}
		case models.OrderStatusCancelled:
			return &StateConflictError{Message: "Order is already cancelled."}
		case models.OrderStatusReturned:
			return &StateConflictError{Message: "Order has been returned."}
		case models.OrderStatusShipped:
			if !actor.IsAdmin() {
				return &StateConflictError{Message: "Order has shipped. Please contact support to cancel."}
			}
			wasShipped = true
		}

		existing, err := activeCancellation(tx, order.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &DuplicateCancellationError{OrderID: order.ID}
		}

		cancellation = &models.OrderCancellation{
			ID:               uuid.NewString(),
			OrderID:          order.ID,
			UserID:           order.UserID,
			Reason:           input.Reason,
			CancellationType: cancellationType,
			CancelledBy:      actor.ID,
			RefundAmount:     refundableAmount(&order),
			RefundStatus:     models.RefundStatusPending,
		}
		if err := tx.Create(cancellation).Error; err != nil {
			return err
		}

		// Status flip and cancellation row commit together or not at all.
		if err := tx.Model(&order).Update("status", models.OrderStatusCancelled).Error; err != nil {
			return err
		}
		order.Status = models.OrderStatusCancelled

		n, err := NotifyUser(tx, order.UserID, models.NotificationOrderCancelled,
			"Order cancelled",
			fmt.Sprintf("Your order %s has been cancelled.", order.OrderNumber),
			&order.ID)
		if err != nil {
			return err
		}
		a, err := NotifyAdmin(tx, models.NotificationOrderCancelled,
			"Order cancelled",
			fmt.Sprintf("Order %s was cancelled (%s).", order.OrderNumber, cancellationType),
			&order.ID)
		if err != nil {
			return err
		}
		notifs = append(notifs, n, a)
		return nil
	})
	if err != nil {
		return nil, err
	}

	PublishNotifications(notifs...)

	// External collaborators run strictly after commit. Their failures are
	// logged and retried out of band; the cancellation itself stands.
	if wasShipped {
		if courier := GetCourierService(); courier != nil {
			resp, err := courier.CancelShipment(order.OrderNumber)
			if err != nil {
				log.Printf("Courier cancel failed for order %s: %v", order.OrderNumber, err)
			} else {
				updates := map[string]interface{}{
					"shipment_cancelled":       true,
					"shipment_cancel_response": models.JSONMap(resp),
				}
				if err := db.Model(cancellation).Updates(updates).Error; err != nil {
					log.Printf("Failed to record courier response for cancellation %s: %v", cancellation.ID, err)
				} else {
					cancellation.ShipmentCancelled = true
					cancellation.ShipmentCancelResponse = models.JSONMap(resp)
				}
			}
		}
	}

	if cancellation.RefundAmount > 0 {
		initiateCancellationRefund(db, cancellation, &order)
	}

	return cancellation, nil
}

// initiateCancellationRefund kicks off refund settlement with the payment
// collaborator and moves refund_status to processing. Settlement completes
// asynchronously via SettleCancellationRefund.
func initiateCancellationRefund(db *gorm.DB, cancellation *models.OrderCancellation, order *models.Order) {
	refunds := GetRefundService()
	if refunds == nil {
		return
	}
	if _, err := refunds.InitiateRefund(cancellation.ID, cancellation.RefundAmount, order.PaymentMethod); err != nil {
		log.Printf("Refund initiation failed for cancellation %s: %v", cancellation.ID, err)
		return
	}
	if err := db.Model(cancellation).Update("refund_status", models.RefundStatusProcessing).Error; err != nil {
		log.Printf("Failed to update refund status for cancellation %s: %v", cancellation.ID, err)
		return
	}
	cancellation.RefundStatus = models.RefundStatusProcessing
}

// SettleCancellationRefund records the asynchronous outcome of a refund.
// Called by the payment webhook layer once the gateway settles.
func SettleCancellationRefund(db *gorm.DB, cancellationID string, succeeded bool) (*models.OrderCancellation, error) {
	var cancellation models.OrderCancellation
	var notif *models.Notification

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			Where("id = ?", cancellationID).First(&cancellation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "cancellation", Message: "Cancellation not found"}
			}
			return err
		}

		target := models.RefundStatusCompleted
		if !succeeded {
			target = models.RefundStatusFailed
		}
		if cancellation.RefundStatus == target {
			return nil // idempotent replay
		}
		if cancellation.RefundStatus == models.RefundStatusCompleted {
			return &StateConflictError{Message: "Refund has already been completed"}
		}

		if err := tx.Model(&cancellation).Update("refund_status", target).Error; err != nil {
			return err
		}
		cancellation.RefundStatus = target

		var err error
		notif, err = NotifyUser(tx, cancellation.UserID, models.NotificationRefundUpdate,
			"Refund update",
			fmt.Sprintf("Refund of ₹%.2f for your cancelled order is %s.", cancellation.RefundAmount, target),
			&cancellation.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	PublishNotifications(notif)
	return &cancellation, nil
}

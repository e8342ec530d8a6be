package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/models"
)

// ReturnEligibility is the answer to "can this order still be returned"
type ReturnEligibility struct {
	CanReturn       bool   `json:"can_return"`
	Reason          string `json:"reason,omitempty"`
	WindowRemaining string `json:"return_window_remaining,omitempty"`
}

// CreateReturnInput carries a return request into the core
type CreateReturnInput struct {
	ReturnType     string   `json:"return_type" binding:"required,oneof=defective wrong_item not_needed other"`
	Reason         string   `json:"reason" binding:"required"`
	Description    string   `json:"description"`
	EvidenceImages []string `json:"evidence_images"`
	EvidenceVideos []string `json:"evidence_videos"`
}

// UpdateReturnInput carries an admin transition on a return request
type UpdateReturnInput struct {
	Status       string     `json:"status" binding:"required"`
	RefundAmount *float64   `json:"refund_amount"`
	AdminNotes   string     `json:"admin_notes"`
	PickupDate   *time.Time `json:"pickup_completed_date"`
	ReceivedDate *time.Time `json:"received_date"`
}

// returnEdges are the legal transitions of the return state machine.
// Rejected and refunded are terminal.
var returnEdges = map[string][]string{
	models.ReturnStatusRequested: {models.ReturnStatusApproved, models.ReturnStatusRejected},
	models.ReturnStatusApproved:  {models.ReturnStatusRejected, models.ReturnStatusPickedUp},
	models.ReturnStatusPickedUp:  {models.ReturnStatusReceived},
	models.ReturnStatusReceived:  {models.ReturnStatusRefunded},
}

func returnEdgeAllowed(from, to string) bool {
	for _, next := range returnEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// returnWindow computes the deadline for filing a return on an order.
// Orders delivered before the window column existed have no anchor and
// are treated as expired.
func returnWindow(order *models.Order, windowDays int) (deadline time.Time, ok bool) {
	if order.DeliveredAt == nil {
		return time.Time{}, false
	}
	return order.DeliveredAt.Add(time.Duration(windowDays) * 24 * time.Hour), true
}

// activeReturn returns the order's active return request, if any.
func activeReturn(tx *gorm.DB, orderID uint) (*models.Return, error) {
	var ret models.Return
	err := tx.Where("order_id = ? AND status NOT IN ?", orderID,
		[]string{models.ReturnStatusRejected, models.ReturnStatusRefunded}).
		First(&ret).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

// CheckReturnEligibility reports whether a return can still be filed for
// the order. Only delivered orders inside the configured window qualify.
func CheckReturnEligibility(db *gorm.DB, cfg *config.Config, orderID uint) (*ReturnEligibility, error) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "order", Message: "Order not found"}
		}
		return nil, err
	}

	if order.Status != models.OrderStatusDelivered {
		return &ReturnEligibility{CanReturn: false, Reason: "Only delivered orders can be returned."}, nil
	}

	deadline, ok := returnWindow(&order, cfg.ReturnWindowDays)
	if !ok || time.Now().After(deadline) {
		return &ReturnEligibility{CanReturn: false, Reason: fmt.Sprintf("The %d-day return window has expired.", cfg.ReturnWindowDays)}, nil
	}

	existing, err := activeReturn(db, order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &ReturnEligibility{CanReturn: false, Reason: "A return request is already in progress for this order."}, nil
	}

	return &ReturnEligibility{
		CanReturn:       true,
		WindowRemaining: time.Until(deadline).Round(time.Hour).String(),
	}, nil
}

// CreateReturn files a return request for a delivered order within the
// return window. The order row is locked so the request cannot race a
// concurrent status change.
func CreateReturn(db *gorm.DB, cfg *config.Config, orderID uint, user *models.User, input CreateReturnInput) (*models.Return, error) {
	var ret *models.Return
	var notifs []*models.Notification

	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockForUpdate(tx).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "order", Message: "Order not found"}
			}
			return err
		}

		if !user.IsAdmin() && order.UserID != user.ID {
			return &NotFoundError{Resource: "order", Message: "Order not found"}
		}

		if order.Status != models.OrderStatusDelivered {
			return &ReturnWindowExpiredError{Message: "Only delivered orders can be returned."}
		}
		deadline, ok := returnWindow(&order, cfg.ReturnWindowDays)
		if !ok || time.Now().After(deadline) {
			return &ReturnWindowExpiredError{Message: fmt.Sprintf("The %d-day return window has expired.", cfg.ReturnWindowDays)}
		}

		existing, err := activeReturn(tx, order.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &DuplicateReturnError{OrderID: order.ID}
		}

		ret = &models.Return{
			ID:             uuid.NewString(),
			OrderID:        order.ID,
			UserID:         order.UserID,
			Status:         models.ReturnStatusRequested,
			ReturnType:     input.ReturnType,
			Reason:         input.Reason,
			Description:    input.Description,
			EvidenceImages: models.StringList(input.EvidenceImages),
			EvidenceVideos: models.StringList(input.EvidenceVideos),
			RefundStatus:   models.RefundStatusPending,
		}
		if err := tx.Create(ret).Error; err != nil {
			return err
		}

		n, err := NotifyUser(tx, order.UserID, models.NotificationReturnRequest,
			"Return requested",
			fmt.Sprintf("Your return request for order %s has been received and is under review.", order.OrderNumber),
			&order.ID)
		if err != nil {
			return err
		}
		a, err := NotifyAdmin(tx, models.NotificationReturnRequest,
			"New return request",
			fmt.Sprintf("Order %s has a new %s return request.", order.OrderNumber, input.ReturnType),
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
	return ret, nil
}

// UpdateReturnStatus applies one admin transition to the return state
// machine. Replaying the current status is an idempotent no-op that emits
// no notification. Illegal edges fail with StateConflictError and leave
// the return unchanged.
func UpdateReturnStatus(db *gorm.DB, returnID string, admin *models.User, input UpdateReturnInput) (*models.Return, error) {
	if _, known := returnEdges[input.Status]; !known &&
		input.Status != models.ReturnStatusRejected && input.Status != models.ReturnStatusRefunded {
		return nil, &ValidationError{Message: fmt.Sprintf("Unknown return status %q", input.Status)}
	}

	var ret models.Return
	var order models.Order
	var refunded bool
	var pickupScheduled bool
	var notifs []*models.Notification

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			Where("id = ?", returnID).First(&ret).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "return", Message: "Return request not found"}
			}
			return err
		}
		if err := lockForUpdate(tx).First(&order, ret.OrderID).Error; err != nil {
			return err
		}

		// Idempotent replay
		if ret.Status == input.Status {
			return nil
		}

		if !returnEdgeAllowed(ret.Status, input.Status) {
			return &StateConflictError{Message: fmt.Sprintf("Cannot move return from %s to %s", ret.Status, input.Status)}
		}

		updates := map[string]interface{}{
			"status":       input.Status,
			"processed_by": admin.ID,
		}
		if input.AdminNotes != "" {
			updates["admin_notes"] = input.AdminNotes
		}

		switch input.Status {
		case models.ReturnStatusApproved:
			amount := input.RefundAmount
			if amount == nil {
				amount = ret.RefundAmount
			}
			if amount == nil {
				return &ValidationError{Message: "refund_amount is required to approve a return"}
			}
			updates["refund_amount"] = *amount
			ret.RefundAmount = amount
			pickupScheduled = true

		case models.ReturnStatusPickedUp:
			pickup := input.PickupDate
			if pickup == nil {
				now := time.Now()
				pickup = &now
			}
			updates["pickup_completed_date"] = pickup
			ret.PickupCompletedDate = pickup

		case models.ReturnStatusReceived:
			received := input.ReceivedDate
			if received == nil {
				now := time.Now()
				received = &now
			}
			updates["received_date"] = received
			ret.ReceivedDate = received

		case models.ReturnStatusRefunded:
			if ret.RefundAmount == nil {
				return &ValidationError{Message: "Return has no refund amount set"}
			}
			refunded = true
			// The order reaches its returned terminal state together with
			// the refund, atomically.
			if err := tx.Model(&order).Update("status", models.OrderStatusReturned).Error; err != nil {
				return err
			}
			order.Status = models.OrderStatusReturned
		}

		if err := tx.Model(&ret).Updates(updates).Error; err != nil {
			return err
		}
		ret.Status = input.Status
		ret.ProcessedBy = &admin.ID
		if input.AdminNotes != "" {
			ret.AdminNotes = input.AdminNotes
		}

		title, message, ntype := returnNotification(&ret, &order)
		n, err := NotifyUser(tx, ret.UserID, ntype, title, message, &order.ID)
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

	// Post-commit collaborators: pickup scheduling on approval, refund
	// settlement kick-off on the refunded transition.
	if pickupScheduled {
		if courier := GetCourierService(); courier != nil {
			if _, err := courier.SchedulePickup(order.OrderNumber, order.ShippingAddress); err != nil {
				log.Printf("Pickup scheduling failed for order %s: %v", order.OrderNumber, err)
			}
		}
	}
	if refunded {
		initiateReturnRefund(db, &ret, &order)
	}

	return &ret, nil
}

// returnNotification phrases the user-facing message for a transition.
func returnNotification(ret *models.Return, order *models.Order) (title, message, ntype string) {
	switch ret.Status {
	case models.ReturnStatusApproved:
		return "Return approved",
			fmt.Sprintf("Your return for order %s has been approved. Pickup will be scheduled shortly.", order.OrderNumber),
			models.NotificationReturnApproved
	case models.ReturnStatusRejected:
		return "Return rejected",
			fmt.Sprintf("Your return request for order %s has been rejected.", order.OrderNumber),
			models.NotificationReturnRejected
	case models.ReturnStatusPickedUp:
		return "Return picked up",
			fmt.Sprintf("Your return for order %s has been picked up.", order.OrderNumber),
			models.NotificationReturnUpdate
	case models.ReturnStatusReceived:
		return "Return received",
			fmt.Sprintf("Your return for order %s has been received and is being inspected.", order.OrderNumber),
			models.NotificationReturnUpdate
	case models.ReturnStatusRefunded:
		return "Refund initiated",
			fmt.Sprintf("Your refund for order %s has been initiated.", order.OrderNumber),
			models.NotificationRefundUpdate
	default:
		return "Return update",
			fmt.Sprintf("Your return for order %s is now %s.", order.OrderNumber, ret.Status),
			models.NotificationReturnUpdate
	}
}

// initiateReturnRefund kicks off refund settlement for a refunded return.
func initiateReturnRefund(db *gorm.DB, ret *models.Return, order *models.Order) {
	refunds := GetRefundService()
	if refunds == nil || ret.RefundAmount == nil {
		return
	}
	if _, err := refunds.InitiateRefund(ret.ID, *ret.RefundAmount, order.PaymentMethod); err != nil {
		log.Printf("Refund initiation failed for return %s: %v", ret.ID, err)
		return
	}
	if err := db.Model(ret).Update("refund_status", models.RefundStatusProcessing).Error; err != nil {
		log.Printf("Failed to update refund status for return %s: %v", ret.ID, err)
		return
	}
	ret.RefundStatus = models.RefundStatusProcessing
}

// SettleReturnRefund records the asynchronous outcome of a return refund.
func SettleReturnRefund(db *gorm.DB, returnID string, succeeded bool) (*models.Return, error) {
	var ret models.Return
	var notif *models.Notification

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			Where("id = ?", returnID).First(&ret).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "return", Message: "Return request not found"}
			}
			return err
		}

		target := models.RefundStatusCompleted
		if !succeeded {
			target = models.RefundStatusFailed
		}
		if ret.RefundStatus == target {
			return nil // idempotent replay
		}
		if ret.RefundStatus == models.RefundStatusCompleted {
			return &StateConflictError{Message: "Refund has already been completed"}
		}

		if err := tx.Model(&ret).Update("refund_status", target).Error; err != nil {
			return err
		}
		ret.RefundStatus = target

		amount := 0.0
		if ret.RefundAmount != nil {
			amount = *ret.RefundAmount
		}
		var err error
		notif, err = NotifyUser(tx, ret.UserID, models.NotificationRefundUpdate,
			"Refund update",
			fmt.Sprintf("Refund of ₹%.2f for your return is %s.", amount, target),
			&ret.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	PublishNotifications(notif)
	return &ret, nil
}

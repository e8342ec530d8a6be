package services

import (
	"fmt"
	"log"

	"github.com/google/uuid"
)

// RefundInterface defines the payment settlement collaborator. Refunds are
// initiated after commit; completion arrives asynchronously and is recorded
// via SettleCancellationRefund / SettleReturnRefund.
type RefundInterface interface {
	InitiateRefund(reference string, amount float64, paymentMethod string) (string, error)
}

// ManualRefundService covers the small-shop reality: prepaid refunds are
// settled by the operator through the payment app, so initiation just
// issues a reference for the admin queue. COD orders have nothing to
// refund.
type ManualRefundService struct{}

var refundServiceInstance RefundInterface

// InitRefundService initializes the refund service
func InitRefundService() RefundInterface {
	refundServiceInstance = &ManualRefundService{}
	return refundServiceInstance
}

// GetRefundService returns the initialized refund service instance
func GetRefundService() RefundInterface {
	return refundServiceInstance
}

// SetRefundService sets the refund service instance (primarily for testing)
func SetRefundService(service RefundInterface) {
	refundServiceInstance = service
}

// InitiateRefund issues a refund reference for manual settlement
func (s *ManualRefundService) InitiateRefund(reference string, amount float64, paymentMethod string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("refund amount must be positive, got %.2f", amount)
	}
	refundRef := "RF-" + uuid.NewString()[:8]
	log.Printf("Refund %s queued for manual settlement: ₹%.2f against %s (%s)", refundRef, amount, reference, paymentMethod)
	return refundRef, nil
}

package services

import (
	"github.com/amorlias/bharatbazaar-api/models"
)

// MockCourierService is a test double for the courier collaborator. Each
// hook can be overridden per test; unset hooks succeed with canned data.
type MockCourierService struct {
	CancelShipmentFunc func(orderNumber string) (map[string]interface{}, error)
	SchedulePickupFunc func(orderNumber string, address models.ShippingAddress) (string, error)
	TrackFunc          func(reference string) (map[string]interface{}, error)

	CancelledShipments []string
	ScheduledPickups   []string
}

// CancelShipment records the call and delegates to the hook if set
func (m *MockCourierService) CancelShipment(orderNumber string) (map[string]interface{}, error) {
	m.CancelledShipments = append(m.CancelledShipments, orderNumber)
	if m.CancelShipmentFunc != nil {
		return m.CancelShipmentFunc(orderNumber)
	}
	return map[string]interface{}{"status": "cancelled", "order_number": orderNumber}, nil
}

// SchedulePickup records the call and delegates to the hook if set
func (m *MockCourierService) SchedulePickup(orderNumber string, address models.ShippingAddress) (string, error) {
	m.ScheduledPickups = append(m.ScheduledPickups, orderNumber)
	if m.SchedulePickupFunc != nil {
		return m.SchedulePickupFunc(orderNumber, address)
	}
	return "PICKUP-" + orderNumber, nil
}

// Track delegates to the hook if set
func (m *MockCourierService) Track(reference string) (map[string]interface{}, error) {
	if m.TrackFunc != nil {
		return m.TrackFunc(reference)
	}
	return map[string]interface{}{"reference": reference, "status": "in_transit"}, nil
}

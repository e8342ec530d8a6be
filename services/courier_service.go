package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/models"
)

// CourierInterface defines the courier collaborator. All calls happen
// strictly after the owning database transaction has committed.
type CourierInterface interface {
	CancelShipment(orderNumber string) (map[string]interface{}, error)
	SchedulePickup(orderNumber string, address models.ShippingAddress) (string, error)
	Track(reference string) (map[string]interface{}, error)
}

// CourierService talks to the courier aggregator's HTTP API
type CourierService struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

var courierServiceInstance CourierInterface

// InitCourierService initializes the courier service from configuration.
// Without a base URL the courier integration stays disabled and shipped
// orders cannot be recalled automatically.
func InitCourierService(cfg *config.Config) CourierInterface {
	if cfg.CourierBaseURL == "" {
		log.Println("COURIER_BASE_URL not set, courier integration disabled")
		return nil
	}
	courierServiceInstance = &CourierService{
		baseURL:  cfg.CourierBaseURL,
		apiToken: cfg.CourierAPIToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	return courierServiceInstance
}

// GetCourierService returns the initialized courier service instance
func GetCourierService() CourierInterface {
	return courierServiceInstance
}

// SetCourierService sets the courier service instance (primarily for testing)
func SetCourierService(service CourierInterface) {
	courierServiceInstance = service
}

// post sends a JSON payload to the courier API and decodes the response
func (s *CourierService) post(path string, payload interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ExternalServiceError{Service: "courier", Err: err}
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &ExternalServiceError{Service: "courier", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &ExternalServiceError{Service: "courier", Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("warning: failed to close courier response body: %v", closeErr)
		}
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &ExternalServiceError{
			Service: "courier",
			Err:     fmt.Errorf("courier API returned status %d: %s", resp.StatusCode, string(raw)),
		}
	}

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &ExternalServiceError{Service: "courier", Err: err}
	}
	return decoded, nil
}

// CancelShipment asks the courier to recall an already-shipped order
func (s *CourierService) CancelShipment(orderNumber string) (map[string]interface{}, error) {
	return s.post("/shipments/cancel", map[string]string{"order_number": orderNumber})
}

// SchedulePickup books a reverse pickup for an approved return
func (s *CourierService) SchedulePickup(orderNumber string, address models.ShippingAddress) (string, error) {
	resp, err := s.post("/pickups", map[string]interface{}{
		"order_number": orderNumber,
		"address":      address,
	})
	if err != nil {
		return "", err
	}
	if ref, ok := resp["pickup_reference"].(string); ok {
		return ref, nil
	}
	return "", &ExternalServiceError{
		Service: "courier",
		Err:     fmt.Errorf("pickup response missing pickup_reference"),
	}
}

// Track fetches tracking details for a shipment or pickup reference
func (s *CourierService) Track(reference string) (map[string]interface{}, error) {
	req, err := http.NewRequest(http.MethodGet, s.baseURL+"/track/"+reference, nil)
	if err != nil {
		return nil, &ExternalServiceError{Service: "courier", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.apiToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &ExternalServiceError{Service: "courier", Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("warning: failed to close courier response body: %v", closeErr)
		}
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &ExternalServiceError{
			Service: "courier",
			Err:     fmt.Errorf("courier API returned status %d: %s", resp.StatusCode, string(raw)),
		}
	}

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &ExternalServiceError{Service: "courier", Err: err}
	}
	return decoded, nil
}

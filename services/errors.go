package services

import "fmt"

// ValidationError indicates a malformed or incomplete request. Not retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError indicates an unknown order, product or return id.
type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// StateConflictError indicates an illegal lifecycle transition or an
// operation that the current state does not permit. The state is left
// unchanged.
type StateConflictError struct {
	Message string
}

func (e *StateConflictError) Error() string {
	return e.Message
}

// InsufficientStockError is returned when a checkout requests more units
// than are available (stock minus quantity blocked by open orders).
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// DuplicateCancellationError is returned when an order already has an
// active (non-failed) cancellation.
type DuplicateCancellationError struct {
	OrderID uint
}

func (e *DuplicateCancellationError) Error() string {
	return fmt.Sprintf("order %d already has an active cancellation", e.OrderID)
}

// DuplicateReturnError is returned when an order already has an active
// (non-rejected, non-refunded) return.
type DuplicateReturnError struct {
	OrderID uint
}

func (e *DuplicateReturnError) Error() string {
	return fmt.Sprintf("order %d already has an active return request", e.OrderID)
}

// ReturnWindowExpiredError is returned when a return is requested for an
// order that is not delivered or whose return window has closed.
type ReturnWindowExpiredError struct {
	Message string
}

func (e *ReturnWindowExpiredError) Error() string {
	return e.Message
}

// ExternalServiceError wraps a failure from a post-commit collaborator
// (courier, payment gateway). Core state is already committed and remains
// consistent; the caller layer decides whether to retry.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s service error: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

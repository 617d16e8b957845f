package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrTxConflict marks a transient store-level conflict (serialization
	// failure, deadlock). The whole reservation attempt may be retried with
	// fresh snapshots; business-rule failures never wrap this.
	ErrTxConflict = errors.New("transaction conflict")
)

// ValidationError rejects a malformed checkout payload before any store
// transaction opens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid order: " + e.Reason
}

// ProductNotFoundError names a cart line whose product has no catalog entry.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// StockConflictError names the first product whose conditional decrement
// matched no row at commit time. The caller must revise the cart; the error
// is not retriable with the same intent.
type StockConflictError struct {
	ProductID string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

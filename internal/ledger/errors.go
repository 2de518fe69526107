package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrTradeNotFound        = errors.New("trade not found")
	ErrAssetNotFound        = errors.New("asset not found")
	ErrPersistence          = errors.New("persistence failure")
	ErrQuotesDisabled       = errors.New("quotes are disabled")
)

// ValidationError rejects input before anything is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type InsufficientHoldingsError struct {
	Asset     string
	Held      float64
	Requested float64
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient holdings of %s: held %g, requested %g", e.Asset, e.Held, e.Requested)
}

func (e *InsufficientHoldingsError) Is(target error) bool {
	return target == ErrInsufficientHoldings
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

package errors

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientPoints  = errors.New("insufficient points")
	ErrPromotionInvalid    = errors.New("promotion invalid")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvariantViolation  = errors.New("invariant violation")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

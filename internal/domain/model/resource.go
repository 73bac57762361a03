package model

import "github.com/google/uuid"

// ResourceKind names a per-user collection in which at most one entry may be the default.
type ResourceKind string

const (
	ResourceAddress       ResourceKind = "ADDRESS"
	ResourcePaymentMethod ResourceKind = "PAYMENT_METHOD"
)

// Valid reports whether the kind is known.
func (k ResourceKind) Valid() bool {
	return k == ResourceAddress || k == ResourcePaymentMethod
}

// Resource is a delivery address or a stored payment method owned by a user.
type Resource struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      ResourceKind
	IsDefault bool
}

package model

import (
	"fmt"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
)

// OrderStatus describes the fulfilment lifecycle.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// happyPath lists the forward statuses in order.
var happyPath = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

var progress = map[OrderStatus]int{
	OrderStatusPending:        10,
	OrderStatusConfirmed:      20,
	OrderStatusPreparing:      40,
	OrderStatusOutForDelivery: 90,
	OrderStatusDelivered:      100,
	OrderStatusCancelled:      0,
}

// ParseOrderStatus validates raw status input.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if _, ok := progress[s]; !ok {
		return "", fmt.Errorf("%w: unknown status %q", domainErrors.ErrValidation, raw)
	}
	return s, nil
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Progress returns a completion percentage for display.
func (s OrderStatus) Progress() int {
	return progress[s]
}

func (s OrderStatus) rank() int {
	for i, st := range happyPath {
		if st == s {
			return i
		}
	}
	return -1
}

// TransitionPolicy decides which status changes are legal.
type TransitionPolicy struct {
	// AllowSkip permits forward jumps over intermediate statuses, e.g. PENDING to PREPARING.
	AllowSkip bool
}

// Check returns ErrInvalidTransition when from -> to is not allowed.
func (p TransitionPolicy) Check(from, to OrderStatus) error {
	if from.Terminal() {
		return fmt.Errorf("%w: %s is terminal", domainErrors.ErrInvalidTransition, from)
	}
	if from == to {
		return fmt.Errorf("%w: already %s", domainErrors.ErrInvalidTransition, from)
	}
	if to == OrderStatusCancelled {
		return nil
	}
	fromRank, toRank := from.rank(), to.rank()
	if fromRank < 0 || toRank < 0 {
		return fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, from, to)
	}
	if toRank == fromRank+1 || (p.AllowSkip && toRank > fromRank) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, from, to)
}

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
)

// PaymentStatus tracks the external debit of an order.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusCaptured   PaymentStatus = "CAPTURED"
	PaymentStatusDeclined   PaymentStatus = "DECLINED"
)

// ParsePaymentStatus validates raw payment status input.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch s := PaymentStatus(raw); s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCaptured, PaymentStatusDeclined:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown payment status %q", domainErrors.ErrValidation, raw)
}

// OrderItem is a priced line of an order.
type OrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	ProductID  uuid.UUID
	Quantity   int64
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// LineRequest is a requested product line. Prices always come from the catalog.
type LineRequest struct {
	ProductID uuid.UUID
	Quantity  int64
}

// OrderRequest carries everything needed to place or quote an order.
type OrderRequest struct {
	UserID          uuid.UUID
	AddressID       uuid.UUID
	PaymentMethodID uuid.UUID
	Items           []LineRequest
	PromotionCode   string
	PointsToUse     int64
	Notes           string
}

// ReorderRequest places a new order from the items of an earlier one.
// Zero address or payment method IDs reuse those of the source order.
type ReorderRequest struct {
	UserID          uuid.UUID
	SourceOrderID   uuid.UUID
	ItemIDs         []uuid.UUID // empty selects every item
	Quantities      map[uuid.UUID]int64
	AddressID       uuid.UUID
	PaymentMethodID uuid.UUID
}

// OrderFilter narrows order listings. Zero fields match any value.
type OrderFilter struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
}

// Order describes a placed purchase with its financial summary.
type Order struct {
	ID               uuid.UUID
	Number           string
	UserID           uuid.UUID
	AddressID        uuid.UUID
	PaymentMethodID  uuid.UUID
	PromotionID      *uuid.UUID
	Status           OrderStatus
	PaymentStatus    PaymentStatus
	Subtotal         decimal.Decimal
	DeliveryFee      decimal.Decimal
	DiscountAmount   decimal.Decimal
	TotalAmount      decimal.Decimal
	PointsUsed       int64
	PointsEarned     int64
	PointsCreditedAt *time.Time
	DeliveredAt      *time.Time
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Items            []OrderItem
}

// CheckInvariants verifies the financial summary against the items.
// Items are only checked when loaded.
func (o *Order) CheckInvariants() error {
	if len(o.Items) > 0 {
		sum := decimal.Zero
		for i, item := range o.Items {
			if item.Quantity <= 0 {
				return fmt.Errorf("%w: item %d has quantity %d", domainErrors.ErrInvariantViolation, i, item.Quantity)
			}
			if !item.TotalPrice.Equal(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))) {
				return fmt.Errorf("%w: item %d total %s != %d x %s", domainErrors.ErrInvariantViolation, i, item.TotalPrice, item.Quantity, item.UnitPrice)
			}
			sum = sum.Add(item.TotalPrice)
		}
		if !sum.Equal(o.Subtotal) {
			return fmt.Errorf("%w: subtotal %s != items sum %s", domainErrors.ErrInvariantViolation, o.Subtotal, sum)
		}
	}
	if o.DiscountAmount.IsNegative() || o.DiscountAmount.GreaterThan(o.Subtotal) {
		return fmt.Errorf("%w: discount %s outside [0, %s]", domainErrors.ErrInvariantViolation, o.DiscountAmount, o.Subtotal)
	}
	if o.DeliveryFee.IsNegative() {
		return fmt.Errorf("%w: negative delivery fee %s", domainErrors.ErrInvariantViolation, o.DeliveryFee)
	}
	expected := o.Subtotal.Add(o.DeliveryFee).Sub(o.DiscountAmount)
	if !o.TotalAmount.Equal(expected) {
		return fmt.Errorf("%w: total %s != %s", domainErrors.ErrInvariantViolation, o.TotalAmount, expected)
	}
	if o.PointsUsed < 0 || o.PointsEarned < 0 {
		return fmt.Errorf("%w: negative points", domainErrors.ErrInvariantViolation)
	}
	return nil
}

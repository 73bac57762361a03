package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType selects how a promotion reduces the subtotal.
type DiscountType string

const (
	DiscountPercentage  DiscountType = "PERCENTAGE"
	DiscountFixedAmount DiscountType = "FIXED_AMOUNT"
)

// Promotion is a redeemable discount code.
type Promotion struct {
	ID                    uuid.UUID
	Code                  string
	DiscountType          DiscountType
	DiscountValue         decimal.Decimal
	MinimumOrderAmount    decimal.Decimal
	MaximumDiscountAmount *decimal.Decimal
	UsageLimit            *int64
	UsageCount            int64
	StartDate             time.Time
	EndDate               time.Time
	IsActive              bool
}

// Exhausted reports whether the usage limit has been reached.
func (p Promotion) Exhausted() bool {
	return p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit
}

// InWindow reports whether now falls in [StartDate, EndDate).
func (p Promotion) InWindow(now time.Time) bool {
	return !now.Before(p.StartDate) && now.Before(p.EndDate)
}

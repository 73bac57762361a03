package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
)

func TestTransitionPolicyCheck(t *testing.T) {
	cases := []struct {
		name      string
		policy    TransitionPolicy
		from, to  OrderStatus
		wantError bool
	}{
		{"pending to confirmed", TransitionPolicy{}, OrderStatusPending, OrderStatusConfirmed, false},
		{"confirmed to preparing", TransitionPolicy{}, OrderStatusConfirmed, OrderStatusPreparing, false},
		{"preparing to out for delivery", TransitionPolicy{}, OrderStatusPreparing, OrderStatusOutForDelivery, false},
		{"out for delivery to delivered", TransitionPolicy{}, OrderStatusOutForDelivery, OrderStatusDelivered, false},
		{"cancel pending", TransitionPolicy{}, OrderStatusPending, OrderStatusCancelled, false},
		{"cancel out for delivery", TransitionPolicy{}, OrderStatusOutForDelivery, OrderStatusCancelled, false},
		{"skip rejected by default", TransitionPolicy{}, OrderStatusPending, OrderStatusPreparing, true},
		{"skip allowed when configured", TransitionPolicy{AllowSkip: true}, OrderStatusPending, OrderStatusDelivered, false},
		{"backwards rejected", TransitionPolicy{AllowSkip: true}, OrderStatusPreparing, OrderStatusConfirmed, true},
		{"self rejected", TransitionPolicy{}, OrderStatusConfirmed, OrderStatusConfirmed, true},
		{"delivered is terminal", TransitionPolicy{}, OrderStatusDelivered, OrderStatusCancelled, true},
		{"cancelled is terminal", TransitionPolicy{AllowSkip: true}, OrderStatusCancelled, OrderStatusPending, true},
		{"unknown target", TransitionPolicy{}, OrderStatusPending, OrderStatus("LOST"), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.policy.Check(tc.from, tc.to)
			if tc.wantError {
				if !errors.Is(err, domainErrors.ErrInvalidTransition) {
					t.Fatalf("expected invalid transition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseOrderStatusAndProgress(t *testing.T) {
	s, err := ParseOrderStatus("OUT_FOR_DELIVERY")
	if err != nil || s != OrderStatusOutForDelivery {
		t.Fatalf("unexpected result %q %v", s, err)
	}
	if s.Progress() != 90 {
		t.Fatalf("expected 90, got %d", s.Progress())
	}
	if OrderStatusCancelled.Progress() != 0 || OrderStatusDelivered.Progress() != 100 {
		t.Fatal("unexpected terminal progress")
	}
	if _, err := ParseOrderStatus("shipped"); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func validOrder() *Order {
	return &Order{
		Items: []OrderItem{
			{Quantity: 2, UnitPrice: decimal.RequireFromString("50.00"), TotalPrice: decimal.RequireFromString("100.00")},
			{Quantity: 1, UnitPrice: decimal.RequireFromString("25.00"), TotalPrice: decimal.RequireFromString("25.00")},
		},
		Subtotal:       decimal.RequireFromString("125.00"),
		DeliveryFee:    decimal.RequireFromString("15.00"),
		DiscountAmount: decimal.RequireFromString("25.00"),
		TotalAmount:    decimal.RequireFromString("115.00"),
	}
}

func TestOrderCheckInvariants(t *testing.T) {
	if err := validOrder().CheckInvariants(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mutations := map[string]func(*Order){
		"total mismatch":     func(o *Order) { o.TotalAmount = decimal.RequireFromString("115.01") },
		"subtotal mismatch":  func(o *Order) { o.Subtotal = decimal.RequireFromString("120.00") },
		"item total":         func(o *Order) { o.Items[0].TotalPrice = decimal.RequireFromString("99.00") },
		"zero quantity":      func(o *Order) { o.Items[1].Quantity = 0 },
		"discount too large": func(o *Order) { o.DiscountAmount = decimal.RequireFromString("130.00") },
		"negative fee":       func(o *Order) { o.DeliveryFee = decimal.RequireFromString("-1") },
		"negative points":    func(o *Order) { o.PointsUsed = -1 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			o := validOrder()
			mutate(o)
			if err := o.CheckInvariants(); !errors.Is(err, domainErrors.ErrInvariantViolation) {
				t.Fatalf("expected invariant violation, got %v", err)
			}
		})
	}
}

func TestPromotionWindowAndLimit(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limit := int64(2)
	p := Promotion{StartDate: start, EndDate: start.Add(24 * time.Hour), UsageLimit: &limit, UsageCount: 1}

	if !p.InWindow(start) {
		t.Fatal("start must be inclusive")
	}
	if p.InWindow(p.EndDate) {
		t.Fatal("end must be exclusive")
	}
	if p.Exhausted() {
		t.Fatal("promotion should not be exhausted")
	}
	p.UsageCount = 2
	if !p.Exhausted() {
		t.Fatal("promotion should be exhausted")
	}
	p.UsageLimit = nil
	if p.Exhausted() {
		t.Fatal("unlimited promotion is never exhausted")
	}
}

func TestUserPointsExpired(t *testing.T) {
	now := time.Now()
	u := User{}
	if u.PointsExpired(now) {
		t.Fatal("points without expiry never expire")
	}
	past := now.Add(-time.Minute)
	u.PointsExpiryDate = &past
	if !u.PointsExpired(now) {
		t.Fatal("expected expired points")
	}
}

package usecase

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/orderengine/internal/domain/model"
	testhelpers "github.com/polkiloo/orderengine/internal/test"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *testhelpers.MemoryStore
	orders    *OrderUseCase
	lifecycle *LifecycleUseCase
	resources *ResourceUseCase
	points    *PointsLedger
}

func newFixture(t *testing.T, policy model.TransitionPolicy) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := testhelpers.NewMemoryStore()
	points := NewPointsLedger(logger)

	orders := NewOrderUseCase(
		store,
		store,
		store,
		FlatDeliveryFee(decimal.RequireFromString("15.00")),
		NewOrderNumberGenerator(store, "ORD"),
		NewPromotionUseCase(store),
		points,
		PointsPolicy{EarnRate: decimal.RequireFromString("0.1")},
		logger,
	)
	orders.now = func() time.Time { return fixedNow }

	lifecycle := NewLifecycleUseCase(store, points, policy, logger)
	lifecycle.now = func() time.Time { return fixedNow }

	return &fixture{
		store:     store,
		orders:    orders,
		lifecycle: lifecycle,
		resources: NewResourceUseCase(store, logger),
		points:    points,
	}
}

// customer seeds a user owning a default address and card.
type customer struct {
	id      uuid.UUID
	address uuid.UUID
	card    uuid.UUID
}

func (f *fixture) customer(balance int64) customer {
	id := f.store.AddUser(balance, nil)
	return customer{
		id:      id,
		address: f.store.AddResource(model.ResourceAddress, id, true),
		card:    f.store.AddResource(model.ResourcePaymentMethod, id, true),
	}
}

func (c customer) request(items ...model.LineRequest) model.OrderRequest {
	return model.OrderRequest{
		UserID:          c.id,
		AddressID:       c.address,
		PaymentMethodID: c.card,
		Items:           items,
	}
}

func line(product uuid.UUID, qty int64) model.LineRequest {
	return model.LineRequest{ProductID: product, Quantity: qty}
}

func welcome20(limit int64) model.Promotion {
	return model.Promotion{
		Code:               "WELCOME20",
		DiscountType:       model.DiscountPercentage,
		DiscountValue:      decimal.RequireFromString("20"),
		MinimumOrderAmount: decimal.RequireFromString("50"),
		UsageLimit:         &limit,
		StartDate:          fixedNow.Add(-24 * time.Hour),
		EndDate:            fixedNow.Add(24 * time.Hour),
		IsActive:           true,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
	testhelpers "github.com/polkiloo/orderengine/internal/test"
	"github.com/polkiloo/orderengine/internal/usecase"
)

type facadeFixture struct {
	facade  *EngineFacade
	store   *testhelpers.MemoryStore
	user    uuid.UUID
	address uuid.UUID
	card    uuid.UUID
	product uuid.UUID
}

func newFacade(gateway testhelpers.GatewayStub, health testhelpers.HealthFacadeStub) facadeFixture {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := testhelpers.NewMemoryStore()
	points := usecase.NewPointsLedger(logger)
	orders := usecase.NewOrderUseCase(
		store, store, store,
		usecase.FlatDeliveryFee(decimal.RequireFromString("15.00")),
		usecase.NewOrderNumberGenerator(store, "ORD"),
		usecase.NewPromotionUseCase(store),
		points,
		usecase.PointsPolicy{EarnRate: decimal.RequireFromString("0.1")},
		logger,
	)
	lifecycle := usecase.NewLifecycleUseCase(store, points, model.TransitionPolicy{}, logger)
	resources := usecase.NewResourceUseCase(store, logger)

	user := store.AddUser(100, nil)
	return facadeFixture{
		facade:  NewEngineFacade(orders, lifecycle, resources, gateway, health),
		store:   store,
		user:    user,
		address: store.AddResource(model.ResourceAddress, user, true),
		card:    store.AddResource(model.ResourcePaymentMethod, user, true),
		product: store.AddProduct("20.00"),
	}
}

func (f facadeFixture) request() model.OrderRequest {
	return model.OrderRequest{
		UserID:          f.user,
		AddressID:       f.address,
		PaymentMethodID: f.card,
		Items:           []model.LineRequest{{ProductID: f.product, Quantity: 2}},
	}
}

func TestEngineFacadeOrders(t *testing.T) {
	f := newFacade(testhelpers.GatewayStub{}, testhelpers.HealthFacadeStub{})
	ctx := context.Background()

	quote, err := f.facade.QuoteOrder(ctx, f.request())
	if err != nil {
		t.Fatalf("quote returned error: %v", err)
	}
	if !quote.TotalAmount.Equal(decimal.RequireFromString("55")) {
		t.Fatalf("unexpected quote total %s", quote.TotalAmount)
	}
	if f.store.OrderCount() != 0 {
		t.Fatal("quote must not persist an order")
	}

	order, err := f.facade.PlaceOrder(ctx, f.request())
	if err != nil {
		t.Fatalf("place returned error: %v", err)
	}

	got, err := f.facade.GetOrder(ctx, f.user, order.ID)
	if err != nil || got.Number != order.Number {
		t.Fatalf("unexpected order %v err=%v", got, err)
	}
	if _, err := f.facade.GetOrder(ctx, uuid.New(), order.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}
	if _, err := f.facade.GetOrder(ctx, f.user, uuid.New()); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for missing order, got %v", err)
	}

	listed, err := f.facade.Orders(ctx, f.user, model.OrderFilter{}, 1, 10)
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected one order, got %v err=%v", listed, err)
	}

	history, err := f.facade.OrderHistory(ctx, f.user, order.ID)
	if err != nil || len(history) != 1 {
		t.Fatalf("expected creation entry, got %v err=%v", history, err)
	}
	if _, err := f.facade.OrderHistory(ctx, uuid.New(), order.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for foreign history, got %v", err)
	}

	if _, err := f.facade.TransitionStatus(ctx, order.ID, model.OrderStatusConfirmed, ""); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected unpaid order to stay pending, got %v", err)
	}
	if err := f.facade.ApplyPaymentResult(ctx, order.ID, model.PaymentStatusCaptured); err != nil {
		t.Fatalf("apply returned error: %v", err)
	}
	preparing, err := f.facade.TransitionStatus(ctx, order.ID, model.OrderStatusPreparing, "")
	if err != nil || preparing.Status != model.OrderStatusPreparing {
		t.Fatalf("unexpected transition result %v err=%v", preparing, err)
	}

	cancelled, err := f.facade.CancelOrder(ctx, f.user, order.ID, "changed my mind")
	if err != nil || cancelled.Status != model.OrderStatusCancelled {
		t.Fatalf("unexpected cancel result %v err=%v", cancelled, err)
	}

	again, err := f.facade.Reorder(ctx, model.ReorderRequest{UserID: f.user, SourceOrderID: order.ID})
	if err != nil || again.Status != model.OrderStatusPending || len(again.Items) != 1 {
		t.Fatalf("unexpected reorder result %v err=%v", again, err)
	}
	if _, err := f.facade.Reorder(ctx, model.ReorderRequest{UserID: uuid.New(), SourceOrderID: order.ID}); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for foreign reorder, got %v", err)
	}

	pending, err := f.facade.Orders(ctx, f.user, model.OrderFilter{Status: model.OrderStatusPending}, 1, 10)
	if err != nil || len(pending) != 1 || pending[0].ID != again.ID {
		t.Fatalf("expected only the reorder to be pending, got %v err=%v", pending, err)
	}
}

func TestEngineFacadeResources(t *testing.T) {
	f := newFacade(testhelpers.GatewayStub{}, testhelpers.HealthFacadeStub{})
	ctx := context.Background()

	address := f.store.AddResource(model.ResourceAddress, f.user, false)
	if err := f.facade.SetDefaultAddress(ctx, f.user, address); err != nil {
		t.Fatalf("set default address: %v", err)
	}
	if defaults := f.store.Defaults(model.ResourceAddress, f.user); len(defaults) != 1 || defaults[0] != address {
		t.Fatalf("unexpected default addresses %v", defaults)
	}

	card := f.store.AddResource(model.ResourcePaymentMethod, f.user, false)
	if err := f.facade.SetDefaultPaymentMethod(ctx, f.user, card); err != nil {
		t.Fatalf("set default payment method: %v", err)
	}
	if defaults := f.store.Defaults(model.ResourcePaymentMethod, f.user); len(defaults) != 1 || defaults[0] != card {
		t.Fatalf("unexpected default payment methods %v", defaults)
	}

	if err := f.facade.SetDefaultAddress(ctx, f.user, card); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected payment method id to be unknown as address, got %v", err)
	}
}

func TestEngineFacadePayments(t *testing.T) {
	f := newFacade(testhelpers.GatewayStub{Result: model.PaymentStatusCaptured}, testhelpers.HealthFacadeStub{})
	ctx := context.Background()

	order, err := f.facade.PlaceOrder(ctx, f.request())
	if err != nil {
		t.Fatalf("place returned error: %v", err)
	}

	batch, err := f.facade.OrdersForPayment(ctx, 10)
	if err != nil || len(batch) != 1 {
		t.Fatalf("expected batch of one, got %v err=%v", batch, err)
	}
	result, err := f.facade.DebitPayment(ctx, batch[0])
	if err != nil {
		t.Fatalf("debit returned error: %v", err)
	}
	if err := f.facade.ApplyPaymentResult(ctx, batch[0].ID, result); err != nil {
		t.Fatalf("apply returned error: %v", err)
	}

	stored, _ := f.store.Order(order.ID)
	if stored.Status != model.OrderStatusConfirmed || stored.PaymentStatus != model.PaymentStatusCaptured {
		t.Fatalf("expected confirmed and captured, got %s/%s", stored.Status, stored.PaymentStatus)
	}
}

func TestEngineFacadeHealthCheck(t *testing.T) {
	f := newFacade(testhelpers.GatewayStub{}, testhelpers.HealthFacadeStub{})
	if err := f.facade.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}

	down := errors.New("down")
	f = newFacade(testhelpers.GatewayStub{}, testhelpers.HealthFacadeStub{Err: down})
	if err := f.facade.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

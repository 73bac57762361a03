package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/orderengine/internal/domain/model"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	PlaceFn      func(context.Context, model.OrderRequest) (*model.Order, error)
	QuoteFn      func(context.Context, model.OrderRequest) (*model.Order, error)
	OrdersFn     func(context.Context, uuid.UUID, model.OrderFilter, int, int) ([]model.Order, error)
	ReorderFn    func(context.Context, model.ReorderRequest) (*model.Order, error)
	GetFn        func(context.Context, uuid.UUID, uuid.UUID) (*model.Order, error)
	HistoryFn    func(context.Context, uuid.UUID, uuid.UUID) ([]model.StatusHistoryEntry, error)
	CancelFn     func(context.Context, uuid.UUID, uuid.UUID, string) (*model.Order, error)
	TransitionFn func(context.Context, uuid.UUID, model.OrderStatus, string) (*model.Order, error)
}

// PlaceOrder delegates to provided function or echoes the request as a pending order.
func (s OrderFacadeStub) PlaceOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, req)
	}
	return &model.Order{ID: uuid.New(), Number: "ORD19700101000001", UserID: req.UserID, Status: model.OrderStatusPending}, nil
}

// QuoteOrder delegates to provided function or returns an empty quote.
func (s OrderFacadeStub) QuoteOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error) {
	if s.QuoteFn != nil {
		return s.QuoteFn(ctx, req)
	}
	return &model.Order{UserID: req.UserID}, nil
}

// Orders returns predefined orders for given user.
func (s OrderFacadeStub) Orders(ctx context.Context, userID uuid.UUID, filter model.OrderFilter, page, limit int) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID, filter, page, limit)
	}
	return []model.Order{{ID: uuid.New(), Number: "ORD19700101000001", UserID: userID, Status: model.OrderStatusPending}}, nil
}

// Reorder delegates to provided function or returns a new pending order.
func (s OrderFacadeStub) Reorder(ctx context.Context, req model.ReorderRequest) (*model.Order, error) {
	if s.ReorderFn != nil {
		return s.ReorderFn(ctx, req)
	}
	return &model.Order{ID: uuid.New(), Number: "ORD19700101000002", UserID: req.UserID, Status: model.OrderStatusPending}, nil
}

// GetOrder returns configured order or a pending one owned by userID.
func (s OrderFacadeStub) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, userID, orderID)
	}
	return &model.Order{ID: orderID, UserID: userID, Status: model.OrderStatusPending}, nil
}

// OrderHistory returns configured history or a single creation entry.
func (s OrderFacadeStub) OrderHistory(ctx context.Context, userID, orderID uuid.UUID) ([]model.StatusHistoryEntry, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, userID, orderID)
	}
	return []model.StatusHistoryEntry{{ID: uuid.New(), OrderID: orderID, Status: model.OrderStatusPending, Note: "Order created", CreatedAt: time.Unix(0, 0)}}, nil
}

// CancelOrder delegates to provided function or returns a cancelled order.
func (s OrderFacadeStub) CancelOrder(ctx context.Context, userID, orderID uuid.UUID, reason string) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, userID, orderID, reason)
	}
	return &model.Order{ID: orderID, UserID: userID, Status: model.OrderStatusCancelled}, nil
}

// TransitionStatus delegates to provided function or returns the order in status.
func (s OrderFacadeStub) TransitionStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, note string) (*model.Order, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, orderID, status, note)
	}
	return &model.Order{ID: orderID, Status: status}, nil
}

// ResourceFacadeStub simulates default resource selection.
type ResourceFacadeStub struct {
	AddressFn       func(context.Context, uuid.UUID, uuid.UUID) error
	PaymentMethodFn func(context.Context, uuid.UUID, uuid.UUID) error
}

// SetDefaultAddress executes configured handler.
func (s ResourceFacadeStub) SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if s.AddressFn != nil {
		return s.AddressFn(ctx, userID, addressID)
	}
	return nil
}

// SetDefaultPaymentMethod executes configured handler.
func (s ResourceFacadeStub) SetDefaultPaymentMethod(ctx context.Context, userID, paymentMethodID uuid.UUID) error {
	if s.PaymentMethodFn != nil {
		return s.PaymentMethodFn(ctx, userID, paymentMethodID)
	}
	return nil
}

// HealthFacadeStub reports configured health.
type HealthFacadeStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthFacadeStub) HealthCheck(context.Context) error {
	return s.Err
}

// EngineFacadeStub aggregates facade dependencies for HTTP layer tests.
type EngineFacadeStub struct {
	OrderFacadeStub
	ResourceFacadeStub
	HealthFacadeStub
}

// PaymentResultCall stores information about ApplyPaymentResult invocations.
type PaymentResultCall struct {
	OrderID uuid.UUID
	Result  model.PaymentStatus
}

// PaymentFacadeStub mimics worker interactions with the engine facade.
type PaymentFacadeStub struct {
	Orders          [][]model.Order
	OrdersFn        func(context.Context, int) ([]model.Order, error)
	DebitFn         func(context.Context, model.Order) (model.PaymentStatus, error)
	ApplyFn         func(context.Context, uuid.UUID, model.PaymentStatus) error
	Results         []PaymentResultCall
	Debits          int32
	mu              sync.Mutex
	ordersCallCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *PaymentFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *PaymentFacadeStub) Unlock() { s.mu.Unlock() }

// Polls reports how many times the worker asked for a batch.
func (s *PaymentFacadeStub) Polls() int32 { return atomic.LoadInt32(&s.ordersCallCount) }

// OrdersForPayment returns batches from configured queue.
func (s *PaymentFacadeStub) OrdersForPayment(ctx context.Context, limit int) ([]model.Order, error) {
	call := atomic.AddInt32(&s.ordersCallCount, 1)
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, limit)
	}
	if int(call) <= len(s.Orders) {
		return s.Orders[call-1], nil
	}
	return nil, nil
}

// DebitPayment returns configured result, capturing by default.
func (s *PaymentFacadeStub) DebitPayment(ctx context.Context, order model.Order) (model.PaymentStatus, error) {
	atomic.AddInt32(&s.Debits, 1)
	if s.DebitFn != nil {
		return s.DebitFn(ctx, order)
	}
	return model.PaymentStatusCaptured, nil
}

// ApplyPaymentResult records applied results.
func (s *PaymentFacadeStub) ApplyPaymentResult(ctx context.Context, orderID uuid.UUID, result model.PaymentStatus) error {
	if s.ApplyFn != nil {
		return s.ApplyFn(ctx, orderID, result)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Results = append(s.Results, PaymentResultCall{OrderID: orderID, Result: result})
	return nil
}

// GatewayStub debits orders with a fixed outcome.
type GatewayStub struct {
	Result model.PaymentStatus
	Err    error
}

// Debit returns the configured outcome.
func (s GatewayStub) Debit(context.Context, model.Order) (model.PaymentStatus, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if s.Result == "" {
		return model.PaymentStatusCaptured, nil
	}
	return s.Result, nil
}

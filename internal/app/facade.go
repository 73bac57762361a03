package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/polkiloo/orderengine/internal/adapter/payment"
	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
	"github.com/polkiloo/orderengine/internal/usecase"
)

// HealthChecker reports storage availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EngineFacade is the single entry point of the HTTP layer and the payment worker.
type EngineFacade struct {
	orders    *usecase.OrderUseCase
	lifecycle *usecase.LifecycleUseCase
	resources *usecase.ResourceUseCase
	gateway   payment.Gateway
	health    HealthChecker
}

func NewEngineFacade(
	orders *usecase.OrderUseCase,
	lifecycle *usecase.LifecycleUseCase,
	resources *usecase.ResourceUseCase,
	gateway payment.Gateway,
	health HealthChecker,
) *EngineFacade {
	return &EngineFacade{orders: orders, lifecycle: lifecycle, resources: resources, gateway: gateway, health: health}
}

func (f *EngineFacade) PlaceOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error) {
	return f.orders.Place(ctx, req)
}

func (f *EngineFacade) QuoteOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error) {
	return f.orders.Quote(ctx, req)
}

func (f *EngineFacade) Orders(ctx context.Context, userID uuid.UUID, filter model.OrderFilter, page, limit int) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID, filter, page, limit)
}

// Reorder copies items of one of the caller's orders into a new order.
func (f *EngineFacade) Reorder(ctx context.Context, req model.ReorderRequest) (*model.Order, error) {
	return f.orders.Reorder(ctx, req)
}

// GetOrder hides orders of other users behind ErrNotFound.
func (f *EngineFacade) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := f.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %s", domainErrors.ErrNotFound, orderID)
	}
	return order, nil
}

func (f *EngineFacade) OrderHistory(ctx context.Context, userID, orderID uuid.UUID) ([]model.StatusHistoryEntry, error) {
	if _, err := f.GetOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return f.orders.History(ctx, orderID)
}

func (f *EngineFacade) CancelOrder(ctx context.Context, userID, orderID uuid.UUID, reason string) (*model.Order, error) {
	return f.lifecycle.Cancel(ctx, userID, orderID, reason)
}

func (f *EngineFacade) TransitionStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, note string) (*model.Order, error) {
	return f.lifecycle.Transition(ctx, orderID, status, note)
}

func (f *EngineFacade) SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return f.resources.SetDefault(ctx, userID, addressID, model.ResourceAddress)
}

func (f *EngineFacade) SetDefaultPaymentMethod(ctx context.Context, userID, paymentMethodID uuid.UUID) error {
	return f.resources.SetDefault(ctx, userID, paymentMethodID, model.ResourcePaymentMethod)
}

func (f *EngineFacade) OrdersForPayment(ctx context.Context, limit int) ([]model.Order, error) {
	return f.lifecycle.PaymentBatch(ctx, limit)
}

func (f *EngineFacade) DebitPayment(ctx context.Context, order model.Order) (model.PaymentStatus, error) {
	return f.gateway.Debit(ctx, order)
}

func (f *EngineFacade) ApplyPaymentResult(ctx context.Context, orderID uuid.UUID, result model.PaymentStatus) error {
	return f.lifecycle.ApplyPaymentResult(ctx, orderID, result)
}

func (f *EngineFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/orderengine/internal/domain/model"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error)
	QuoteOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error)
	Orders(ctx context.Context, userID uuid.UUID, filter model.OrderFilter, page, limit int) ([]model.Order, error)
	Reorder(ctx context.Context, req model.ReorderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)
	OrderHistory(ctx context.Context, userID, orderID uuid.UUID) ([]model.StatusHistoryEntry, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID, reason string) (*model.Order, error)
	TransitionStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, note string) (*model.Order, error)
}

// ResourceFacade selects default addresses and payment methods.
type ResourceFacade interface {
	SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefaultPaymentMethod(ctx context.Context, userID, paymentMethodID uuid.UUID) error
}

// HealthFacade reports readiness.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// EngineFacade aggregates the full set of operations used across handlers.
type EngineFacade interface {
	OrderFacade
	ResourceFacade
	HealthFacade
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/orderengine/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter model.OrderFilter, limit, offset int) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, at time.Time) error
	MarkPointsCredited(ctx context.Context, id uuid.UUID, at time.Time) error
	// SelectBatchForPayment claims pending orders awaiting an external debit.
	SelectBatchForPayment(ctx context.Context, limit int) ([]model.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error
}

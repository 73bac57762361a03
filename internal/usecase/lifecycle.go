package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
	"github.com/polkiloo/orderengine/internal/domain/repository"
)

const (
	notePaymentCaptured = "Payment captured"
	notePaymentDeclined = "Payment declined"
	noteOrderCancelled  = "Order cancelled"
)

// LifecycleUseCase moves orders through their statuses and records every step.
type LifecycleUseCase struct {
	tx     repository.Transactor
	points *PointsLedger
	policy model.TransitionPolicy
	logger *slog.Logger
	now    func() time.Time
}

// NewLifecycleUseCase constructs LifecycleUseCase.
func NewLifecycleUseCase(tx repository.Transactor, points *PointsLedger, policy model.TransitionPolicy, logger *slog.Logger) *LifecycleUseCase {
	return &LifecycleUseCase{tx: tx, points: points, policy: policy, logger: logger, now: time.Now}
}

// Transition moves orderID to status. Rejected transitions change nothing.
func (u *LifecycleUseCase) Transition(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, note string) (*model.Order, error) {
	now := u.now().UTC()
	var result *model.Order
	err := u.tx.Atomically(ctx, func(ctx context.Context, store repository.Store) error {
		order, err := store.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := u.apply(ctx, store, order, status, note, now); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel cancels an order on behalf of its owner.
func (u *LifecycleUseCase) Cancel(ctx context.Context, userID, orderID uuid.UUID, reason string) (*model.Order, error) {
	note := noteOrderCancelled
	if reason = strings.TrimSpace(reason); reason != "" {
		note += ": " + reason
	}

	now := u.now().UTC()
	var result *model.Order
	err := u.tx.Atomically(ctx, func(ctx context.Context, store repository.Store) error {
		order, err := store.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return fmt.Errorf("%w: order %s", domainErrors.ErrNotFound, orderID)
		}
		if err := u.apply(ctx, store, order, model.OrderStatusCancelled, note, now); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PaymentBatch claims up to limit orders whose payment has not been settled.
func (u *LifecycleUseCase) PaymentBatch(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := u.tx.Atomically(ctx, func(ctx context.Context, store repository.Store) error {
		batch, err := store.Orders().SelectBatchForPayment(ctx, limit)
		if err != nil {
			return err
		}
		orders = batch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ApplyPaymentResult records a settled payment and confirms or cancels the
// order accordingly. Results for already settled payments are ignored.
// Orders past PENDING always carry a captured payment, so a late result can
// only meet a PENDING or CANCELLED order.
func (u *LifecycleUseCase) ApplyPaymentResult(ctx context.Context, orderID uuid.UUID, result model.PaymentStatus) error {
	if result != model.PaymentStatusCaptured && result != model.PaymentStatusDeclined {
		return fmt.Errorf("%w: payment result %q", domainErrors.ErrValidation, result)
	}

	now := u.now().UTC()
	return u.tx.Atomically(ctx, func(ctx context.Context, store repository.Store) error {
		orders := store.Orders()
		order, err := orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.PaymentStatus == model.PaymentStatusCaptured || order.PaymentStatus == model.PaymentStatusDeclined {
			return nil
		}
		if err := orders.UpdatePaymentStatus(ctx, orderID, result); err != nil {
			return err
		}
		order.PaymentStatus = result

		if order.Status != model.OrderStatusPending {
			if result == model.PaymentStatusCaptured && order.Status == model.OrderStatusCancelled {
				u.logger.Warn("payment captured for cancelled order",
					slog.String("order", order.Number),
					slog.String("amount", order.TotalAmount.StringFixed(2)),
				)
			}
			return nil
		}

		if result == model.PaymentStatusCaptured {
			return u.apply(ctx, store, order, model.OrderStatusConfirmed, notePaymentCaptured, now)
		}
		return u.apply(ctx, store, order, model.OrderStatusCancelled, notePaymentDeclined, now)
	})
}

// apply performs a transition on a locked order: status, history, then points.
func (u *LifecycleUseCase) apply(ctx context.Context, store repository.Store, order *model.Order, status model.OrderStatus, note string, now time.Time) error {
	if err := u.policy.Check(order.Status, status); err != nil {
		return err
	}
	// Only a captured payment or a cancellation moves an order out of PENDING.
	if order.Status == model.OrderStatusPending && status != model.OrderStatusCancelled &&
		order.PaymentStatus != model.PaymentStatusCaptured {
		return fmt.Errorf("%w: payment of %s is %s", domainErrors.ErrInvalidTransition, order.Number, order.PaymentStatus)
	}
	from := order.Status

	if err := store.Orders().UpdateStatus(ctx, order.ID, status, now); err != nil {
		return err
	}
	order.Status = status
	order.UpdatedAt = now
	if status == model.OrderStatusDelivered {
		order.DeliveredAt = &now
	}

	if err := store.History().Append(ctx, &model.StatusHistoryEntry{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Status:    status,
		Note:      note,
		CreatedAt: now,
	}); err != nil {
		return err
	}

	switch status {
	case model.OrderStatusDelivered:
		if err := u.points.Credit(ctx, store, order, now); err != nil {
			return err
		}
	case model.OrderStatusCancelled:
		if err := u.points.Reverse(ctx, store, order); err != nil {
			return err
		}
	}

	u.logger.Info("order status changed",
		slog.String("order", order.Number),
		slog.String("from", string(from)),
		slog.String("to", string(status)),
	)
	return nil
}

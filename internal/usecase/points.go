package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
	"github.com/polkiloo/orderengine/internal/domain/repository"
)

// PointsPolicy converts an order total into earned loyalty points.
type PointsPolicy struct {
	EarnRate decimal.Decimal
}

// Earned returns floor(total * rate), never negative.
func (p PointsPolicy) Earned(total decimal.Decimal) int64 {
	if !total.IsPositive() || !p.EarnRate.IsPositive() {
		return 0
	}
	return total.Mul(p.EarnRate).Floor().IntPart()
}

// PointsLedger applies balance deltas inside the caller's transaction.
type PointsLedger struct {
	logger *slog.Logger
}

// NewPointsLedger constructs PointsLedger.
func NewPointsLedger(logger *slog.Logger) *PointsLedger {
	return &PointsLedger{logger: logger}
}

// Reserve debits points from a user row that the caller has already locked.
func (l *PointsLedger) Reserve(ctx context.Context, store repository.Store, user *model.User, points int64, now time.Time) error {
	if points <= 0 {
		return nil
	}
	if user.PointsExpired(now) {
		return fmt.Errorf("%w: points expired on %s", domainErrors.ErrInsufficientPoints, user.PointsExpiryDate.UTC().Format(time.DateOnly))
	}
	if points > user.PointsBalance {
		return fmt.Errorf("%w: requested %d, available %d", domainErrors.ErrInsufficientPoints, points, user.PointsBalance)
	}
	balance, err := store.Users().AdjustPoints(ctx, user.ID, -points)
	if err != nil {
		return err
	}
	user.PointsBalance = balance
	return nil
}

// Credit adds the points earned by a delivered order once.
func (l *PointsLedger) Credit(ctx context.Context, store repository.Store, order *model.Order, now time.Time) error {
	if order.PointsEarned <= 0 || order.PointsCreditedAt != nil {
		return nil
	}
	if _, err := store.Users().AdjustPoints(ctx, order.UserID, order.PointsEarned); err != nil {
		return err
	}
	if err := store.Orders().MarkPointsCredited(ctx, order.ID, now); err != nil {
		return err
	}
	order.PointsCreditedAt = &now
	l.logger.Info("points credited",
		slog.String("order", order.Number),
		slog.Int64("points", order.PointsEarned),
	)
	return nil
}

// Reverse restores points spent on order and takes back points it credited.
func (l *PointsLedger) Reverse(ctx context.Context, store repository.Store, order *model.Order) error {
	delta := order.PointsUsed
	if order.PointsCreditedAt != nil {
		delta -= order.PointsEarned
	}
	if delta == 0 {
		return nil
	}
	if _, err := store.Users().AdjustPoints(ctx, order.UserID, delta); err != nil {
		return err
	}
	l.logger.Info("points reversed",
		slog.String("order", order.Number),
		slog.Int64("delta", delta),
	)
	return nil
}

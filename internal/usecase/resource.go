package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
	"github.com/polkiloo/orderengine/internal/domain/repository"
)

// ResourceUseCase keeps exactly one default address and payment method per user.
type ResourceUseCase struct {
	tx     repository.Transactor
	logger *slog.Logger
}

// NewResourceUseCase constructs ResourceUseCase.
func NewResourceUseCase(tx repository.Transactor, logger *slog.Logger) *ResourceUseCase {
	return &ResourceUseCase{tx: tx, logger: logger}
}

// SetDefault makes resourceID the only default of its kind for userID.
// Concurrent calls for one user serialize on the user row.
func (u *ResourceUseCase) SetDefault(ctx context.Context, userID, resourceID uuid.UUID, kind model.ResourceKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown resource kind %q", domainErrors.ErrValidation, kind)
	}
	return u.tx.Atomically(ctx, func(ctx context.Context, store repository.Store) error {
		if _, err := store.Users().GetForUpdate(ctx, userID); err != nil {
			return err
		}
		resources := store.Resources()
		res, err := resources.Get(ctx, kind, resourceID)
		if err != nil {
			return err
		}
		if res.UserID != userID {
			return fmt.Errorf("%w: %s %s", domainErrors.ErrNotFound, kind, resourceID)
		}

		cleared, err := resources.ClearDefaults(ctx, kind, userID, resourceID)
		if err != nil {
			return err
		}
		if res.IsDefault {
			if cleared > 0 {
				u.logger.Warn("repaired duplicate defaults",
					slog.String("user", userID.String()),
					slog.String("kind", string(kind)),
					slog.Int64("cleared", cleared),
				)
			}
			return nil
		}
		return resources.MarkDefault(ctx, kind, resourceID)
	})
}

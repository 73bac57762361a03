package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/orderengine/internal/domain/model"
)

// PromotionRepository reads promotions and records their usage.
type PromotionRepository interface {
	GetByCode(ctx context.Context, code string) (*model.Promotion, error)
	GetByCodeForUpdate(ctx context.Context, code string) (*model.Promotion, error)
	// IncrementUsage bumps usage_count unless the limit is already reached,
	// in which case it returns ErrPromotionInvalid.
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}

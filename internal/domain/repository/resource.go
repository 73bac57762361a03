package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/orderengine/internal/domain/model"
)

// ResourceRepository manages the default flag of addresses and payment methods.
type ResourceRepository interface {
	Get(ctx context.Context, kind model.ResourceKind, id uuid.UUID) (*model.Resource, error)
	// ClearDefaults unsets the default flag on every resource of the user except keepID.
	ClearDefaults(ctx context.Context, kind model.ResourceKind, userID, keepID uuid.UUID) (int64, error)
	MarkDefault(ctx context.Context, kind model.ResourceKind, id uuid.UUID) error
}

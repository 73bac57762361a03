package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/orderengine/internal/domain/model"
)

// UserRepository exposes the loyalty state of users.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetForUpdate locks the user row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error)
	// AdjustPoints applies delta and returns the new balance. It fails with
	// ErrInsufficientPoints instead of letting the balance go negative.
	AdjustPoints(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
}

package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/orderengine/internal/domain/model"
)

// HistoryRepository is the append-only status log.
type HistoryRepository interface {
	Append(ctx context.Context, entry *model.StatusHistoryEntry) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.StatusHistoryEntry, error)
}

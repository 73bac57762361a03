package model

import (
	"time"

	"github.com/google/uuid"
)

// StatusHistoryEntry records one status an order entered. Entries are append-only.
type StatusHistoryEntry struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Status    OrderStatus
	Note      string
	CreatedAt time.Time
}

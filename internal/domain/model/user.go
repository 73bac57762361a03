package model

import (
	"time"

	"github.com/google/uuid"
)

// User carries the loyalty state of a customer. Identity and profile data live elsewhere.
type User struct {
	ID               uuid.UUID
	PointsBalance    int64
	PointsExpiryDate *time.Time
}

// PointsExpired reports whether the balance can no longer be redeemed at now.
func (u User) PointsExpired(now time.Time) bool {
	return u.PointsExpiryDate != nil && !now.Before(*u.PointsExpiryDate)
}

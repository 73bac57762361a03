package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
)

type userRepository struct {
	q querier
}

const userColumns = `id, points_balance, points_expiry_date`

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`, id)
}

func (r *userRepository) get(ctx context.Context, query string, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.q.QueryRow(ctx, query, id).Scan(&u.ID, &u.PointsBalance, &u.PointsExpiryDate)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *userRepository) AdjustPoints(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	const query = `UPDATE users SET points_balance = points_balance + $2
                   WHERE id=$1 AND points_balance + $2 >= 0
                   RETURNING points_balance`
	var balance int64
	err := r.q.QueryRow(ctx, query, id, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the user is gone or the guard rejected the update.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return 0, getErr
			}
			return 0, fmt.Errorf("%w: balance cannot absorb %d", domainErrors.ErrInsufficientPoints, delta)
		}
		return 0, err
	}
	return balance, nil
}

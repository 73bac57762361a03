package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type catalogRepository struct {
	q querier
}

func (r *catalogRepository) Prices(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	const query = `SELECT id, price FROM products WHERE id = ANY($1) AND is_available`
	rows, err := r.q.Query(ctx, query, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[uuid.UUID]decimal.Decimal, len(productIDs))
	for rows.Next() {
		var (
			id    uuid.UUID
			price decimal.Decimal
		)
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return prices, nil
}

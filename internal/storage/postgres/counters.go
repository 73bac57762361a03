package postgres

import "context"

type counterRepository struct {
	q querier
}

// Next runs as a single autocommit statement so the row lock is held only briefly.
func (r *counterRepository) Next(ctx context.Context, name string) (int64, error) {
	const query = `INSERT INTO counters (name, value) VALUES ($1, 1)
                   ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
                   RETURNING value`
	var value int64
	if err := r.q.QueryRow(ctx, query, name).Scan(&value); err != nil {
		return 0, translateError(err)
	}
	return value, nil
}

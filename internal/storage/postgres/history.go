package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/orderengine/internal/domain/model"
)

type historyRepository struct {
	q querier
}

func (r *historyRepository) Append(ctx context.Context, entry *model.StatusHistoryEntry) error {
	const query = `INSERT INTO order_status_history (id, order_id, status, note, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, entry.ID, entry.OrderID, entry.Status, entry.Note, entry.CreatedAt)
	return err
}

func (r *historyRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.StatusHistoryEntry, error) {
	const query = `SELECT id, order_id, status, note, created_at
                   FROM order_status_history WHERE order_id=$1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.StatusHistoryEntry
	for rows.Next() {
		var e model.StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

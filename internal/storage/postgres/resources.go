package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
)

type resourceRepository struct {
	q querier
}

func resourceTable(kind model.ResourceKind) (string, error) {
	switch kind {
	case model.ResourceAddress:
		return "addresses", nil
	case model.ResourcePaymentMethod:
		return "payment_methods", nil
	}
	return "", fmt.Errorf("%w: unknown resource kind %q", domainErrors.ErrValidation, kind)
}

func (r *resourceRepository) Get(ctx context.Context, kind model.ResourceKind, id uuid.UUID) (*model.Resource, error) {
	table, err := resourceTable(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, user_id, is_default FROM ` + table + ` WHERE id=$1`
	res := model.Resource{Kind: kind}
	if err := r.q.QueryRow(ctx, query, id).Scan(&res.ID, &res.UserID, &res.IsDefault); err != nil {
		return nil, notFound(err, table)
	}
	return &res, nil
}

func (r *resourceRepository) ClearDefaults(ctx context.Context, kind model.ResourceKind, userID, keepID uuid.UUID) (int64, error) {
	table, err := resourceTable(kind)
	if err != nil {
		return 0, err
	}
	query := `UPDATE ` + table + ` SET is_default=FALSE WHERE user_id=$1 AND id<>$2 AND is_default`
	tag, err := r.q.Exec(ctx, query, userID, keepID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *resourceRepository) MarkDefault(ctx context.Context, kind model.ResourceKind, id uuid.UUID) error {
	table, err := resourceTable(kind)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `UPDATE `+table+` SET is_default=TRUE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domainErrors.ErrNotFound, table)
	}
	return nil
}

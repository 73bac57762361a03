package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
)

type promotionRepository struct {
	q querier
}

const promotionColumns = `id, code, discount_type, discount_value, minimum_order_amount, maximum_discount_amount,
                          usage_limit, usage_count, start_date, end_date, is_active`

func (r *promotionRepository) GetByCode(ctx context.Context, code string) (*model.Promotion, error) {
	return r.get(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE code=$1`, code)
}

func (r *promotionRepository) GetByCodeForUpdate(ctx context.Context, code string) (*model.Promotion, error) {
	return r.get(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE code=$1 FOR UPDATE`, code)
}

func (r *promotionRepository) get(ctx context.Context, query, code string) (*model.Promotion, error) {
	var (
		p           model.Promotion
		maxDiscount decimal.NullDecimal
	)
	err := r.q.QueryRow(ctx, query, code).Scan(
		&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue, &p.MinimumOrderAmount, &maxDiscount,
		&p.UsageLimit, &p.UsageCount, &p.StartDate, &p.EndDate, &p.IsActive,
	)
	if err != nil {
		return nil, notFound(err, "promotion")
	}
	if maxDiscount.Valid {
		p.MaximumDiscountAmount = &maxDiscount.Decimal
	}
	return &p, nil
}

func (r *promotionRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE promotions SET usage_count = usage_count + 1
                   WHERE id=$1 AND (usage_limit IS NULL OR usage_count < usage_limit)`
	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: usage limit reached", domainErrors.ErrPromotionInvalid)
	}
	return nil
}

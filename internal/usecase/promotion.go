package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
	"github.com/polkiloo/orderengine/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// EvaluatePromotion checks p against subtotal at now and returns the discount
// it grants. Checks run in a fixed order so the first failing rule is reported.
func EvaluatePromotion(p *model.Promotion, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if !p.IsActive {
		return decimal.Zero, fmt.Errorf("%w: %s is inactive", domainErrors.ErrPromotionInvalid, p.Code)
	}
	if !p.InWindow(now) {
		return decimal.Zero, fmt.Errorf("%w: %s is not valid at %s", domainErrors.ErrPromotionInvalid, p.Code, now.UTC().Format(time.RFC3339))
	}
	if subtotal.LessThan(p.MinimumOrderAmount) {
		return decimal.Zero, fmt.Errorf("%w: %s requires a minimum order of %s", domainErrors.ErrPromotionInvalid, p.Code, p.MinimumOrderAmount.StringFixed(2))
	}
	if p.Exhausted() {
		return decimal.Zero, fmt.Errorf("%w: %s usage limit reached", domainErrors.ErrPromotionInvalid, p.Code)
	}

	var discount decimal.Decimal
	switch p.DiscountType {
	case model.DiscountPercentage:
		if !p.DiscountValue.IsPositive() || p.DiscountValue.GreaterThan(hundred) {
			return decimal.Zero, fmt.Errorf("%w: %s has percentage %s", domainErrors.ErrPromotionInvalid, p.Code, p.DiscountValue)
		}
		discount = subtotal.Mul(p.DiscountValue).Div(hundred).Round(2)
		if p.MaximumDiscountAmount != nil && discount.GreaterThan(*p.MaximumDiscountAmount) {
			discount = *p.MaximumDiscountAmount
		}
	case model.DiscountFixedAmount:
		discount = decimal.Min(p.DiscountValue, subtotal)
	default:
		return decimal.Zero, fmt.Errorf("%w: %s has unknown discount type %q", domainErrors.ErrPromotionInvalid, p.Code, p.DiscountType)
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount, nil
}

// PromotionUseCase validates promotion codes and records their redemption.
type PromotionUseCase struct {
	promotions repository.PromotionRepository
}

// NewPromotionUseCase constructs PromotionUseCase over the read path.
func NewPromotionUseCase(store repository.Store) *PromotionUseCase {
	return &PromotionUseCase{promotions: store.Promotions()}
}

// Preview evaluates code without consuming a use.
func (u *PromotionUseCase) Preview(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*model.Promotion, decimal.Decimal, error) {
	p, err := u.promotions.GetByCode(ctx, code)
	if err != nil {
		return nil, decimal.Zero, unknownPromotion(err, code)
	}
	discount, err := EvaluatePromotion(p, subtotal, now)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return p, discount, nil
}

// ValidateAndReserve locks the promotion row in store's transaction,
// evaluates it and consumes one use.
func (u *PromotionUseCase) ValidateAndReserve(ctx context.Context, store repository.Store, code string, subtotal decimal.Decimal, now time.Time) (*model.Promotion, decimal.Decimal, error) {
	promotions := store.Promotions()
	p, err := promotions.GetByCodeForUpdate(ctx, code)
	if err != nil {
		return nil, decimal.Zero, unknownPromotion(err, code)
	}
	discount, err := EvaluatePromotion(p, subtotal, now)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if err := promotions.IncrementUsage(ctx, p.ID); err != nil {
		return nil, decimal.Zero, err
	}
	p.UsageCount++
	return p, discount, nil
}

// unknownPromotion reports a missing code as both invalid and not found.
func unknownPromotion(err error, code string) error {
	if errors.Is(err, domainErrors.ErrNotFound) {
		return fmt.Errorf("%w: %w: code %q", domainErrors.ErrPromotionInvalid, domainErrors.ErrNotFound, code)
	}
	return err
}

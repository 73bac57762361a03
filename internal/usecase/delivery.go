package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryFeeResolver prices delivery to an address.
type DeliveryFeeResolver interface {
	DeliveryFee(ctx context.Context, addressID uuid.UUID) (decimal.Decimal, error)
}

// FlatDeliveryFee charges the same fee for every address.
type FlatDeliveryFee decimal.Decimal

func (f FlatDeliveryFee) DeliveryFee(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return decimal.Decimal(f), nil
}

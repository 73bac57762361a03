package usecase

import (
	"fmt"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
)

const maxItemQuantity = 10000

func validatePlaceOrder(cmd model.OrderRequest) error {
	switch {
	case cmd.UserID == uuid.Nil:
		return fmt.Errorf("%w: user is required", domainErrors.ErrValidation)
	case cmd.AddressID == uuid.Nil:
		return fmt.Errorf("%w: address is required", domainErrors.ErrValidation)
	case cmd.PaymentMethodID == uuid.Nil:
		return fmt.Errorf("%w: payment method is required", domainErrors.ErrValidation)
	case len(cmd.Items) == 0:
		return fmt.Errorf("%w: order has no items", domainErrors.ErrValidation)
	case cmd.PointsToUse < 0:
		return fmt.Errorf("%w: points to use must not be negative", domainErrors.ErrValidation)
	}
	for i, item := range cmd.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("%w: item %d has no product", domainErrors.ErrValidation, i)
		}
		if item.Quantity <= 0 || item.Quantity > maxItemQuantity {
			return fmt.Errorf("%w: item %d has quantity %d", domainErrors.ErrValidation, i, item.Quantity)
		}
	}
	return nil
}

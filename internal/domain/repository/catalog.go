package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogRepository resolves current unit prices of available products.
// Unknown or unavailable products are absent from the result.
type CatalogRepository interface {
	Prices(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

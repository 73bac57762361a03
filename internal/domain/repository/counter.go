package repository

import "context"

// CounterRepository hands out monotonically increasing values per named sequence.
type CounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

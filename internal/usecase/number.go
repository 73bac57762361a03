package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/polkiloo/orderengine/internal/domain/repository"
)

// OrderNumberGenerator issues <prefix><YYYYMMDD><sequence> identifiers. The
// sequence restarts every UTC day and is backed by a durable counter row.
type OrderNumberGenerator struct {
	counters repository.CounterRepository
	prefix   string
}

// NewOrderNumberGenerator constructs OrderNumberGenerator.
func NewOrderNumberGenerator(counters repository.CounterRepository, prefix string) *OrderNumberGenerator {
	return &OrderNumberGenerator{counters: counters, prefix: prefix}
}

// Next allocates the next number for now. Allocated numbers are never reused,
// so a failed placement leaves a gap.
func (g *OrderNumberGenerator) Next(ctx context.Context, now time.Time) (string, error) {
	day := now.UTC().Format("20060102")
	seq, err := g.counters.Next(ctx, "order_number:"+day)
	if err != nil {
		return "", fmt.Errorf("allocate order number: %w", err)
	}
	return fmt.Sprintf("%s%s%06d", g.prefix, day, seq), nil
}

package repository

import "context"

// Store describes access to the transactional repositories.
type Store interface {
	Users() UserRepository
	Resources() ResourceRepository
	Promotions() PromotionRepository
	Orders() OrderRepository
	History() HistoryRepository
}

// Transactor runs fn with a Store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise. fn may be
// invoked more than once when the transaction loses a serialization race.
type Transactor interface {
	Atomically(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/repository"
)

const (
	defaultMaxAttempts = 3
	retryBackoff       = 10 * time.Millisecond
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool        pgxPool
	logger      *slog.Logger
	maxAttempts int
}

// store binds repositories to a pool or a transaction.
type store struct {
	q querier
}

func (s store) Users() repository.UserRepository           { return &userRepository{q: s.q} }
func (s store) Resources() repository.ResourceRepository   { return &resourceRepository{q: s.q} }
func (s store) Promotions() repository.PromotionRepository { return &promotionRepository{q: s.q} }
func (s store) Orders() repository.OrderRepository         { return &orderRepository{q: s.q} }
func (s store) History() repository.HistoryRepository      { return &historyRepository{q: s.q} }

// New creates storage with schema initialization. maxAttempts bounds how many
// times a transaction is replayed after a serialization failure.
func New(ctx context.Context, dsn string, maxAttempts int, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	storage := &Storage{pool: pool, logger: logger, maxAttempts: maxAttempts}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for non-transactional repository access.
func (s *Storage) Users() repository.UserRepository {
	return store{q: s.pool}.Users()
}

func (s *Storage) Resources() repository.ResourceRepository {
	return store{q: s.pool}.Resources()
}

func (s *Storage) Promotions() repository.PromotionRepository {
	return store{q: s.pool}.Promotions()
}

func (s *Storage) Orders() repository.OrderRepository {
	return store{q: s.pool}.Orders()
}

func (s *Storage) History() repository.HistoryRepository {
	return store{q: s.pool}.History()
}

func (s *Storage) Counters() repository.CounterRepository {
	return &counterRepository{q: s.pool}
}

func (s *Storage) Catalog() repository.CatalogRepository {
	return &catalogRepository{q: s.pool}
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// Atomically runs fn in a transaction, replaying it when PostgreSQL reports a
// serialization failure, a deadlock or a race on a default-resource index.
func (s *Storage) Atomically(ctx context.Context, fn func(context.Context, repository.Store) error) error {
	attempts := s.maxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = s.WithinTransaction(ctx, func(tx pgx.Tx) error {
			return fn(ctx, store{q: tx})
		})
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return translateError(err)
		}
		s.logger.Warn("transaction conflict",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return fmt.Errorf("%w: %v", domainErrors.ErrConcurrencyConflict, err)
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	case codeUniqueViolation:
		return pgErr.ConstraintName == indexAddressDefault || pgErr.ConstraintName == indexPaymentMethodDefault
	}
	return false
}

// translateError maps constraint violations to domain errors.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeCheckViolation:
		switch pgErr.ConstraintName {
		case checkUserPoints:
			return fmt.Errorf("%w: %s", domainErrors.ErrInsufficientPoints, pgErr.Message)
		case checkPromotionUsage:
			return fmt.Errorf("%w: %s", domainErrors.ErrPromotionInvalid, pgErr.Message)
		}
		return fmt.Errorf("%w: %s (%s)", domainErrors.ErrInvariantViolation, pgErr.Message, pgErr.ConstraintName)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", domainErrors.ErrValidation, pgErr.Message)
	case codeUniqueViolation, codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %s", domainErrors.ErrConcurrencyConflict, pgErr.Message)
	}
	return err
}

func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domainErrors.ErrNotFound, what)
	}
	return err
}

package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/orderengine/internal/adapter/payment"
	"github.com/polkiloo/orderengine/internal/domain/model"
)

// PaymentFacade exposes the subset of application functionality required by the worker.
type PaymentFacade interface {
	OrdersForPayment(ctx context.Context, limit int) ([]model.Order, error)
	DebitPayment(ctx context.Context, order model.Order) (model.PaymentStatus, error)
	ApplyPaymentResult(ctx context.Context, orderID uuid.UUID, result model.PaymentStatus) error
}

// PaymentConfirmer debits pending orders through the gateway and confirms or
// cancels them with the outcome.
type PaymentConfirmer struct {
	facade       PaymentFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs     chan model.Order
	inflight sync.Map
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	mu       sync.Mutex
}

// NewPaymentConfirmer constructs the payment worker pool.
func NewPaymentConfirmer(facade PaymentFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *PaymentConfirmer {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &PaymentConfirmer{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background processing.
func (p *PaymentConfirmer) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *PaymentConfirmer) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PaymentConfirmer) dispatch(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

// fetchAndDispatch queues claimed orders. Orders still being debited from an
// earlier poll are skipped.
func (p *PaymentConfirmer) fetchAndDispatch(ctx context.Context) {
	orders, err := p.facade.OrdersForPayment(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch orders for payment failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		if _, busy := p.inflight.LoadOrStore(order.ID, struct{}{}); busy {
			continue
		}
		select {
		case <-ctx.Done():
			p.inflight.Delete(order.ID)
			return
		case p.jobs <- order:
		}
	}
}

func (p *PaymentConfirmer) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order := <-p.jobs:
			p.handleOrder(ctx, order)
			p.inflight.Delete(order.ID)
		}
	}
}

func (p *PaymentConfirmer) handleOrder(ctx context.Context, order model.Order) {
	result, err := p.facade.DebitPayment(ctx, order)
	if err != nil {
		var tm payment.TooManyRequestsError
		if errors.As(err, &tm) {
			p.logger.Warn("payment gateway rate limited", slog.Duration("retry_after", tm.RetryAfter))
			sleep(ctx, tm.RetryAfter)
			return
		}
		p.logger.Error("payment debit failed", slog.String("order", order.Number), slog.String("error", err.Error()))
		return
	}

	if err := p.facade.ApplyPaymentResult(ctx, order.ID, result); err != nil {
		p.logger.Error("apply payment result failed",
			slog.String("order", order.Number),
			slog.String("result", string(result)),
			slog.String("error", err.Error()),
		)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/polkiloo/orderengine/internal/adapter/payment"
	"github.com/polkiloo/orderengine/internal/app"
	"github.com/polkiloo/orderengine/internal/config"
	"github.com/polkiloo/orderengine/internal/di"
	"github.com/polkiloo/orderengine/internal/domain/model"
	"github.com/polkiloo/orderengine/internal/domain/repository"
	"github.com/polkiloo/orderengine/internal/storage/postgres"
	"github.com/polkiloo/orderengine/internal/test"
)

func TestRunKeepsConfirmingPaymentsAfterStartTimeout(t *testing.T) {
	cfg := &config.Config{
		RunAddress:            "127.0.0.1:0",
		DatabaseURI:           "postgres://stub",
		PaymentGatewayAddress: "http://localhost",
		PaymentPollInterval:   10 * time.Millisecond,
		PaymentBatchSize:      4,
		WorkerPoolSize:        1,
		PaymentRateLimit:      100,
		ShutdownTimeout:       time.Second,
		OrderNumberPrefix:     "ORD",
		DeliveryFee:           decimal.RequireFromString("15"),
		PointsEarnRate:        decimal.RequireFromString("0.1"),
		TxMaxAttempts:         1,
		LogLevel:              "error",
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := test.NewMemoryStore()
	user := store.AddUser(0, nil)
	req := model.OrderRequest{
		UserID:          user,
		AddressID:       store.AddResource(model.ResourceAddress, user, true),
		PaymentMethodID: store.AddResource(model.ResourcePaymentMethod, user, true),
		Items:           []model.LineRequest{{ProductID: store.AddProduct("10.00"), Quantity: 1}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var facade *app.EngineFacade
	fxApp := fx.New(
		fx.NopLogger,
		fx.StartTimeout(100*time.Millisecond),
		fx.Provide(func() context.Context { return ctx }),
		di.Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.Store(store)),
			fx.Replace(repository.Transactor(store)),
			fx.Replace(repository.CounterRepository(store)),
			fx.Replace(repository.CatalogRepository(store)),
			fx.Replace(payment.Gateway(test.GatewayStub{Result: model.PaymentStatusCaptured})),
		),
		fx.Populate(&facade),
	)
	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- run(ctx, fxApp) }()

	// Place the order well after the start timeout has elapsed.
	time.Sleep(300 * time.Millisecond)
	order, err := facade.PlaceOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("place returned error: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		stored, _ := store.Order(order.ID)
		if stored.Status == model.OrderStatusConfirmed && stored.PaymentStatus == model.PaymentStatusCaptured {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("order not confirmed after start timeout, got %s/%s", stored.Status, stored.PaymentStatus)
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}

func TestRunReportsStartFailure(t *testing.T) {
	boom := errors.New("boom")
	fxApp := fx.New(
		fx.NopLogger,
		fx.Invoke(func(lc fx.Lifecycle) {
			lc.Append(fx.Hook{OnStart: func(context.Context) error { return boom }})
		}),
	)

	err := run(context.Background(), fxApp)
	if err == nil || !strings.HasPrefix(err.Error(), "start:") || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected start error wrapping boom, got %v", err)
	}
}

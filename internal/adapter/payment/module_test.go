package payment

import (
	"io"
	"log/slog"
	"testing"

	"github.com/polkiloo/orderengine/internal/config"
)

func TestNewGatewayUsesConfig(t *testing.T) {
	cfg := &config.Config{PaymentGatewayAddress: "http://example.com", PaymentRateLimit: 5}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	gateway, err := newGateway(gatewayParams{Config: cfg, Logger: logger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client, ok := gateway.(*HTTPClient)
	if !ok {
		t.Fatalf("expected *HTTPClient, got %T", gateway)
	}
	if client.limiter.Burst() != 5 {
		t.Fatalf("expected burst 5, got %d", client.limiter.Burst())
	}
}

func TestNewGatewayRejectsRelativeURL(t *testing.T) {
	cfg := &config.Config{PaymentGatewayAddress: "payments.local"}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if _, err := newGateway(gatewayParams{Config: cfg, Logger: logger}); err == nil {
		t.Fatal("expected error for relative url")
	}
}

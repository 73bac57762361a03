package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/polkiloo/orderengine/internal/domain/model"
)

// ErrUnexpectedResult indicates the gateway answered with an unknown payment status.
var ErrUnexpectedResult = errors.New("unexpected payment result")

// TooManyRequestsError represents rate limiting signal from the payment gateway.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Gateway debits the payment method of an order.
type Gateway interface {
	Debit(ctx context.Context, order model.Order) (model.PaymentStatus, error)
}

// HTTPClient implements Gateway via HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

type debitRequest struct {
	IdempotencyKey  string          `json:"idempotency_key"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
}

type debitResponse struct {
	Status string `json:"status"`
}

// NewHTTPClient creates a gateway client sending at most rps requests per second.
func NewHTTPClient(baseURL string, rps float64, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse payment gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("payment gateway url must be absolute")
	}
	if rps <= 0 {
		rps = 1
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &HTTPClient{
		baseURL: parsed,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Debit charges order.TotalAmount. The order number is the idempotency key,
// so repeating a debit for the same order never charges twice.
func (c *HTTPClient) Debit(ctx context.Context, order model.Order) (model.PaymentStatus, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	payload, err := json.Marshal(debitRequest{
		IdempotencyKey:  order.Number,
		PaymentMethodID: order.PaymentMethodID,
		Amount:          order.TotalAmount,
	})
	if err != nil {
		return "", err
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/payments")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", order.Number)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		var data debitResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return "", err
		}
		switch status := model.PaymentStatus(data.Status); status {
		case model.PaymentStatusCaptured, model.PaymentStatusDeclined:
			return status, nil
		default:
			return "", fmt.Errorf("%w: %q", ErrUnexpectedResult, data.Status)
		}
	case http.StatusPaymentRequired:
		return model.PaymentStatusDeclined, nil
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", TooManyRequestsError{RetryAfter: retryAfter}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("payment request failed",
			slog.String("order", order.Number),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return "", fmt.Errorf("payment gateway error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}

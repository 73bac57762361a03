package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress            string
	DatabaseURI           string
	PaymentGatewayAddress string
	PaymentPollInterval   time.Duration
	PaymentBatchSize      int
	WorkerPoolSize        int
	PaymentRateLimit      float64
	ShutdownTimeout       time.Duration
	OrderNumberPrefix     string
	DeliveryFee           decimal.Decimal
	PointsEarnRate        decimal.Decimal
	AllowStatusSkip       bool
	TxMaxAttempts         int
	LogLevel              string
	OperatorToken         string
}

const (
	defaultRunAddress          = ":8080"
	defaultPaymentPollInterval = 3 * time.Second
	defaultPaymentBatchSize    = 32
	defaultWorkerPoolSize      = 4
	defaultPaymentRateLimit    = 20.0
	defaultShutdownTimeout     = 10 * time.Second
	defaultOrderNumberPrefix   = "ORD"
	defaultDeliveryFee         = "15.00"
	defaultPointsEarnRate      = "0.1"
	defaultTxMaxAttempts       = 3
	defaultLogLevel            = "info"
)

// Load parses configuration from an optional .env file, environment variables and flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:            getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:           getString(lookup, "DATABASE_URI", ""),
		PaymentGatewayAddress: getString(lookup, "PAYMENT_GATEWAY_ADDRESS", ""),
		PaymentPollInterval:   getDuration(lookup, "PAYMENT_POLL_INTERVAL", defaultPaymentPollInterval),
		PaymentBatchSize:      getInt(lookup, "PAYMENT_BATCH_SIZE", defaultPaymentBatchSize),
		WorkerPoolSize:        getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		PaymentRateLimit:      getFloat(lookup, "PAYMENT_RATE_LIMIT", defaultPaymentRateLimit),
		ShutdownTimeout:       getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		OrderNumberPrefix:     getString(lookup, "ORDER_NUMBER_PREFIX", defaultOrderNumberPrefix),
		AllowStatusSkip:       getBool(lookup, "ALLOW_STATUS_SKIP", false),
		TxMaxAttempts:         getInt(lookup, "TX_MAX_ATTEMPTS", defaultTxMaxAttempts),
		LogLevel:              getString(lookup, "LOG_LEVEL", defaultLogLevel),
		OperatorToken:         getString(lookup, "OPERATOR_TOKEN", ""),
	}

	fs := flag.NewFlagSet("orderengine", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.PaymentPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		deliveryFeeStr     = getString(lookup, "DELIVERY_FEE", defaultDeliveryFee)
		earnRateStr        = getString(lookup, "POINTS_EARN_RATE", defaultPointsEarnRate)
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.PaymentGatewayAddress, "p", cfg.PaymentGatewayAddress, "Payment gateway base URL")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent payment workers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between payment polls")
	fs.IntVar(&cfg.PaymentBatchSize, "poll-batch", cfg.PaymentBatchSize, "Maximum orders per payment batch")
	fs.Float64Var(&cfg.PaymentRateLimit, "payment-rps", cfg.PaymentRateLimit, "Outbound payment requests per second")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.OrderNumberPrefix, "order-prefix", cfg.OrderNumberPrefix, "Prefix of generated order numbers")
	fs.StringVar(&deliveryFeeStr, "delivery-fee", deliveryFeeStr, "Flat delivery fee")
	fs.StringVar(&earnRateStr, "earn-rate", earnRateStr, "Loyalty points earned per currency unit")
	fs.BoolVar(&cfg.AllowStatusSkip, "allow-status-skip", cfg.AllowStatusSkip, "Allow skipping intermediate order statuses")
	fs.IntVar(&cfg.TxMaxAttempts, "tx-attempts", cfg.TxMaxAttempts, "Attempts per transaction on serialization conflicts")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Minimum log level: debug, info, warn or error")
	fs.StringVar(&cfg.OperatorToken, "operator-token", cfg.OperatorToken, "Bearer token for back-office routes")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.PaymentPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.DeliveryFee, err = decimal.NewFromString(deliveryFeeStr); err != nil {
		return nil, fmt.Errorf("invalid delivery fee: %w", err)
	}
	if cfg.DeliveryFee.IsNegative() {
		return nil, fmt.Errorf("delivery fee must not be negative")
	}

	if cfg.PointsEarnRate, err = decimal.NewFromString(earnRateStr); err != nil {
		return nil, fmt.Errorf("invalid points earn rate: %w", err)
	}
	if cfg.PointsEarnRate.IsNegative() {
		return nil, fmt.Errorf("points earn rate must not be negative")
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.PaymentBatchSize <= 0 {
		cfg.PaymentBatchSize = defaultPaymentBatchSize
	}

	if cfg.PaymentPollInterval <= 0 {
		cfg.PaymentPollInterval = defaultPaymentPollInterval
	}

	if cfg.PaymentRateLimit <= 0 {
		cfg.PaymentRateLimit = defaultPaymentRateLimit
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.TxMaxAttempts <= 0 {
		cfg.TxMaxAttempts = defaultTxMaxAttempts
	}

	if cfg.OrderNumberPrefix == "" {
		cfg.OrderNumberPrefix = defaultOrderNumberPrefix
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.PaymentGatewayAddress == "" {
		return nil, fmt.Errorf("payment gateway address must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

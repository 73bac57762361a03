package config

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module loads configuration and reports the effective settings at startup.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Invoke(logEffective),
)

// logEffective never logs secrets: the database URI and the operator token.
func logEffective(cfg *Config, logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.String("run_address", cfg.RunAddress),
		slog.String("payment_gateway", cfg.PaymentGatewayAddress),
		slog.Duration("payment_poll_interval", cfg.PaymentPollInterval),
		slog.Int("payment_batch_size", cfg.PaymentBatchSize),
		slog.Int("worker_pool_size", cfg.WorkerPoolSize),
		slog.Float64("payment_rate_limit", cfg.PaymentRateLimit),
		slog.String("order_number_prefix", cfg.OrderNumberPrefix),
		slog.String("delivery_fee", cfg.DeliveryFee.StringFixed(2)),
		slog.String("points_earn_rate", cfg.PointsEarnRate.String()),
		slog.Bool("allow_status_skip", cfg.AllowStatusSkip),
		slog.Bool("operator_routes", cfg.OperatorToken != ""),
	)
}

package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orderengine/internal/config"
)

// Module exposes the payment gateway client to the fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newGateway(p gatewayParams) (Gateway, error) {
	return NewHTTPClient(p.Config.PaymentGatewayAddress, p.Config.PaymentRateLimit, p.Logger)
}

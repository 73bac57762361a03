package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orderengine/internal/config"
	"github.com/polkiloo/orderengine/internal/domain/model"
	"github.com/polkiloo/orderengine/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		newPolicies,
		newOrderNumberGenerator,
		newDeliveryFeeResolver,
		NewPromotionUseCase,
		NewPointsLedger,
		NewResourceUseCase,
		NewOrderUseCase,
		NewLifecycleUseCase,
	),
)

type policies struct {
	fx.Out

	Points     PointsPolicy
	Transition model.TransitionPolicy
}

func newPolicies(cfg *config.Config) policies {
	return policies{
		Points:     PointsPolicy{EarnRate: cfg.PointsEarnRate},
		Transition: model.TransitionPolicy{AllowSkip: cfg.AllowStatusSkip},
	}
}

func newOrderNumberGenerator(counters repository.CounterRepository, cfg *config.Config) *OrderNumberGenerator {
	return NewOrderNumberGenerator(counters, cfg.OrderNumberPrefix)
}

func newDeliveryFeeResolver(cfg *config.Config, logger *slog.Logger) DeliveryFeeResolver {
	logger.Debug("flat delivery fee", slog.String("fee", cfg.DeliveryFee.StringFixed(2)))
	return FlatDeliveryFee(cfg.DeliveryFee)
}

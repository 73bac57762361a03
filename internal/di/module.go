package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/orderengine/internal/adapter/payment"
	"github.com/polkiloo/orderengine/internal/app"
	"github.com/polkiloo/orderengine/internal/config"
	"github.com/polkiloo/orderengine/internal/logger"
	"github.com/polkiloo/orderengine/internal/server/http/router"
	"github.com/polkiloo/orderengine/internal/storage/postgres"
	"github.com/polkiloo/orderengine/internal/usecase"
)

// Module assembles the order engine. Extra options are appended last so
// tests can replace infrastructure.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		postgres.Module,
		payment.Module,
		usecase.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/orderengine/internal/app"
	"github.com/polkiloo/orderengine/internal/server/http/handlers"
)

// Module binds the engine facade to the HTTP layer and provides the gin engine.
var Module = fx.Provide(
	func(f *app.EngineFacade) handlers.EngineFacade { return f },
	Setup,
)

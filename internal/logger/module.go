package logger

import "go.uber.org/fx"

// Module provides the service logger built from configuration.
var Module = fx.Provide(New)

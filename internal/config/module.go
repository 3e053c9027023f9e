package config

import "go.uber.org/fx"

// Module loads *Config once per process for the fx graph.
var Module = fx.Options(
	fx.Provide(Load),
)

package router

import "go.uber.org/fx"

// Module provides the gin engine serving the library routes.
var Module = fx.Provide(Setup)

package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/library/internal/app"
	"github.com/polkiloo/library/internal/config"
	"github.com/polkiloo/library/internal/logger"
	"github.com/polkiloo/library/internal/pkg/auth"
	"github.com/polkiloo/library/internal/server/http/handlers"
	"github.com/polkiloo/library/internal/server/http/router"
	"github.com/polkiloo/library/internal/storage/postgres"
	"github.com/polkiloo/library/internal/usecase"
)

// Module assembles the complete library application graph. Extra options are
// applied last, so callers may replace any provided component.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		usecase.Module,
		fx.Provide(func(facade *app.LibraryFacade) handlers.LibraryFacade { return facade }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

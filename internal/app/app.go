package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/library/internal/config"
	"github.com/polkiloo/library/internal/storage/postgres"
	"github.com/polkiloo/library/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewLibraryFacade,
		newHealthChecker,
		newHTTPServer,
		newOverdueMonitor,
	),
	fx.Invoke(registerLifecycle),
)

func newHealthChecker(storage *postgres.Storage) HealthChecker {
	return storage
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *LibraryFacade
	Config *config.Config
	Logger *slog.Logger
}

func newOverdueMonitor(p workerParams) *worker.OverdueMonitor {
	return worker.NewOverdueMonitor(
		p.Facade,
		p.Config.OverdueScanInterval,
		p.Config.OverdueBatchSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Monitor    *worker.OverdueMonitor
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting library",
				slog.String("addr", p.Server.Addr),
				slog.String("return_policy", p.Config.ReturnPolicy),
			)
			p.Monitor.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Monitor.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("library stopped")
			return nil
		},
	})
}

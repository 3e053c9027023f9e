package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
)

type application interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Done() <-chan os.Signal
}

func run(ctx context.Context, app application) {
	if err := serve(ctx, app); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// serve starts the application and blocks until ctx ends or fx requests shutdown.
func serve(ctx context.Context, app application) error {
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start library: %w", err)
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	if err := app.Stop(context.Background()); err != nil {
		return fmt.Errorf("failed to stop library: %w", err)
	}
	return nil
}

var _ application = (*fx.App)(nil)

package logger

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/polkiloo/library/internal/config"
)

func TestModuleProvidesLogger(t *testing.T) {
	var resolved *slog.Logger
	app := fx.New(
		fx.NopLogger,
		fx.Supply(&config.Config{LogLevel: "warn"}),
		Module,
		fx.Populate(&resolved),
	)
	t.Cleanup(func() { _ = app.Stop(context.Background()) })
	if err := app.Err(); err != nil {
		t.Fatalf("fx app failed: %v", err)
	}
	if resolved == nil {
		t.Fatal("expected logger to be populated")
	}
	if resolved.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected info to be disabled at warn level")
	}
}

func TestEventLoggerWritesThroughSlog(t *testing.T) {
	var out strings.Builder
	eventLogger := newEventLogger(slog.New(slog.NewJSONHandler(&out, nil)))
	eventLogger.LogEvent(&fxevent.Started{})
	if !strings.Contains(out.String(), "started") {
		t.Fatalf("expected fx event in log output, got %q", out.String())
	}
}

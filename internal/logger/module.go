package logger

import (
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// Module provides the JSON slog logger and routes fx events through it.
var Module = fx.Options(
	fx.Provide(New),
	fx.WithLogger(newEventLogger),
)

func newEventLogger(logger *slog.Logger) fxevent.Logger {
	return &fxevent.SlogLogger{Logger: logger}
}

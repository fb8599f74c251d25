package app

import (
	"log/slog"
	"os"

	"service-dispatch/internal/logx"
)

// NewLogger builds the process-wide structured logger. Output is JSON on
// stdout with a fixed service attribute so multi-service log streams stay
// separable.
func NewLogger() logx.Logger {
	base := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	return logx.NewSlogAdapter(base.With(slog.String("service", "dispatch")))
}

package logctx

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

// New builds the process logger. Debug lowers the level from warn so
// request-by-request tracing stays silent by default.
func New(out io.Writer, debug bool, noColor bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// With returns a context carrying logger.
func With(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// From returns the logger carried by ctx, or a disabled logger when none was
// attached.
func From(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return zerolog.Nop()
	}
	logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger)
	if !ok {
		return zerolog.Nop()
	}
	return logger
}

// DebugEnabled reports whether the context logger emits debug events.
func DebugEnabled(ctx context.Context) bool {
	return From(ctx).GetLevel() <= zerolog.DebugLevel
}

package logutil

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

var base atomic.Pointer[zap.Logger]

func init() {
	base.Store(zap.NewNop())
}

// Init replaces the process logger. Level falls back to info on an
// unrecognized value.
func Init(level string, console bool) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	var cfg zap.Config
	if console {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return
	}
	base.Store(logger)
}

func L() *zap.Logger {
	return base.Load()
}

// WithContext attaches a request-scoped logger, typically carrying a
// request id field.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From returns the request-scoped logger when present, the process logger
// otherwise.
func From(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
			return logger
		}
	}
	return base.Load()
}

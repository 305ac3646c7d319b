package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type ctxKey struct{}

// New returns a development logger for "dev" and a JSON production logger for
// "prod". An empty format picks prod.
func New(format, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch format {
	case "dev":
		cfg = zap.NewDevelopmentConfig()
	case "", "prod":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		cfg.Level = lvl
	}

	return cfg.Build()
}

// With attaches l to ctx.
func With(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger attached to ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// Track adds fields to the logger carried by ctx.
func Track(ctx context.Context, fields ...zap.Field) context.Context {
	return With(ctx, FromContext(ctx).With(fields...))
}

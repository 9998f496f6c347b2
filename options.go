package hilt

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type Option func(*containerConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *containerConfig) {
		cfg.logger = logger
	}
}

// WithTracerProvider enables lifecycle spans. Without it spans go to a no-op
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *containerConfig) {
		cfg.tracerProvider = tp
	}
}

// WithEager makes Start construct every registered singleton in dependency
// order before running start hooks.
func WithEager() Option {
	return func(cfg *containerConfig) {
		cfg.eager = true
	}
}

// WithStartTimeout bounds the context passed to start hooks. Hooks decide how
// to honor it; the walk itself is never interrupted.
func WithStartTimeout(d time.Duration) Option {
	return func(cfg *containerConfig) {
		cfg.startTimeout = d
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(cfg *containerConfig) {
		cfg.shutdownTimeout = d
	}
}

func WithResolveObserver(observer ResolveObserver) Option {
	return func(cfg *containerConfig) {
		cfg.onResolve = append(cfg.onResolve, observer)
	}
}

func WithProvideObserver(observer ProvideObserver) Option {
	return func(cfg *containerConfig) {
		cfg.onProvide = append(cfg.onProvide, observer)
	}
}

// WithConstructObserver is called each time a singleton is recorded, with its
// position in construction order.
func WithConstructObserver(observer ConstructObserver) Option {
	return func(cfg *containerConfig) {
		cfg.onConstruct = append(cfg.onConstruct, observer)
	}
}

func WithStartObserver(observer StartObserver) Option {
	return func(cfg *containerConfig) {
		cfg.onStart = append(cfg.onStart, observer)
	}
}

func WithStopObserver(observer StopObserver) Option {
	return func(cfg *containerConfig) {
		cfg.onStop = append(cfg.onStop, observer)
	}
}

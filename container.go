package hilt

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/danpasecinic/hilt/internal/container"
	"github.com/danpasecinic/hilt/internal/lifecycle"
)

const tracerName = "github.com/danpasecinic/hilt"

type Container struct {
	internal *container.Container
	config   *containerConfig
	id       string
}

type containerConfig struct {
	logger          *slog.Logger
	tracerProvider  trace.TracerProvider
	eager           bool
	startTimeout    time.Duration
	shutdownTimeout time.Duration

	onResolve   []ResolveObserver
	onProvide   []ProvideObserver
	onConstruct []ConstructObserver
	onStart     []StartObserver
	onStop      []StopObserver
}

// New creates an empty container. Singletons are constructed lazily on first
// resolution unless WithEager is set.
func New(opts ...Option) *Container {
	cfg := &containerConfig{
		logger:         slog.Default(),
		tracerProvider: noop.NewTracerProvider(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	id := uuid.NewString()
	logger := cfg.logger.With("container", id)

	internal := container.New(
		&container.Config{
			Logger:          logger,
			Tracer:          cfg.tracerProvider.Tracer(tracerName),
			Eager:           cfg.eager,
			StartTimeout:    cfg.startTimeout,
			ShutdownTimeout: cfg.shutdownTimeout,
			OnResolve:       convert(cfg.onResolve, func(h ResolveObserver) container.ResolveObserver { return container.ResolveObserver(h) }),
			OnProvide:       convert(cfg.onProvide, func(h ProvideObserver) container.ProvideObserver { return container.ProvideObserver(h) }),
			OnConstruct:     convert(cfg.onConstruct, func(h ConstructObserver) lifecycle.RecordObserver { return lifecycle.RecordObserver(h) }),
			OnStart:         convert(cfg.onStart, func(h StartObserver) lifecycle.Observer { return lifecycle.Observer(h) }),
			OnStop:          convert(cfg.onStop, func(h StopObserver) lifecycle.Observer { return lifecycle.Observer(h) }),
		},
	)

	return &Container{
		internal: internal,
		config:   cfg,
		id:       id,
	}
}

func convert[From, To any](in []From, fn func(From) To) []To {
	if len(in) == 0 {
		return nil
	}
	out := make([]To, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

// ID identifies the container in its log records.
func (c *Container) ID() string {
	return c.id
}

func (c *Container) Validate() error {
	if err := c.internal.Validate(); err != nil {
		return errValidationFailed(err)
	}
	return nil
}

func (c *Container) Size() int {
	return c.internal.Size()
}

func (c *Container) Keys() []string {
	return c.internal.Keys()
}

// State reports NotStarted, Started or Stopped.
func (c *Container) State() State {
	return c.internal.State()
}

// Start runs the start hooks of every constructed singleton in construction
// order. The first failing hook aborts the walk and nothing is rolled back.
// Singletons constructed after Start returns are started as they are built.
func (c *Container) Start(ctx context.Context) error {
	if err := c.internal.Start(ctx); err != nil {
		c.internal.Logger().Error("start failed", "error", err)
		return wrap("", err)
	}
	return nil
}

// Stop runs stop hooks in reverse construction order. Every component is
// visited even when some hooks fail; the failures are returned together and
// can be listed with StopFailures.
func (c *Container) Stop(ctx context.Context) error {
	if err := c.internal.Stop(ctx); err != nil {
		c.internal.Logger().Error("stop failed", "error", err)
		return wrap("", err)
	}
	return nil
}

func (c *Container) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-quit:
	}

	signal.Stop(quit)

	return c.Stop(context.WithoutCancel(ctx))
}

func errValidationFailed(cause error) *Error {
	return newError(ErrCodeValidationFailed, "container validation failed", cause)
}

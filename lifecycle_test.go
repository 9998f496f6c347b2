package hilt_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/hilt"
)

type events struct {
	mu   sync.Mutex
	list []string
}

func (e *events) add(event string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.list = append(e.list, event)
}

func (e *events) hook(event string) hilt.Hook {
	return func(ctx context.Context) error {
		e.add(event)
		return nil
	}
}

func (e *events) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.list...)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type worker struct {
	name string
	ev   *events
}

func (w *worker) Start(ctx context.Context) error {
	w.ev.add("start:" + w.name)
	return nil
}

func (w *worker) Stop(ctx context.Context) error {
	w.ev.add("stop:" + w.name)
	return nil
}

func TestContainer_StartStop(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	var starts, stops atomic.Int32

	require.NoError(
		t, hilt.Provide(
			c, func(ctx context.Context, r hilt.Resolver) (*Config, error) {
				return &Config{}, nil
			},
			hilt.WithOnStart(
				func(ctx context.Context) error {
					starts.Add(1)
					return nil
				},
			),
			hilt.WithOnStop(
				func(ctx context.Context) error {
					stops.Add(1)
					return nil
				},
			),
		),
	)
	_ = hilt.MustInvoke[*Config](c)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.Equal(t, hilt.Started, c.State())
	assert.EqualValues(t, 1, starts.Load())

	require.NoError(t, c.Stop(ctx))
	assert.Equal(t, hilt.Stopped, c.State())
	assert.EqualValues(t, 1, stops.Load())
}

func TestContainer_UnconstructedNeverStarted(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	ev := &events{}
	require.NoError(
		t, hilt.Provide(
			c, func(ctx context.Context, r hilt.Resolver) (*Config, error) {
				return &Config{}, nil
			},
			hilt.WithOnStart(ev.hook("start")),
			hilt.WithOnStop(ev.hook("stop")),
		),
	)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Stop(ctx))

	assert.Empty(t, ev.snapshot())
	assert.Empty(t, c.Ledger())
}

func TestContainer_OrderFollowsConstruction(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	ev := &events{}

	require.NoError(
		t, hilt.Provide(
			c, func(ctx context.Context, r hilt.Resolver) (*Server, error) {
				db, err := hilt.InvokeCtx[*Database](ctx, c)
				if err != nil {
					return nil, err
				}
				return &Server{DB: db}, nil
			},
			hilt.WithOnStart(ev.hook("start:server")),
			hilt.WithOnStop(ev.hook("stop:server")),
		),
	)
	require.NoError(
		t, hilt.Provide(
			c, func(ctx context.Context, r hilt.Resolver) (*Database, error) {
				cfg, err := hilt.InvokeCtx[*Config](ctx, c)
				if err != nil {
					return nil, err
				}
				return &Database{Config: cfg}, nil
			},
			hilt.WithOnStart(ev.hook("start:database")),
			hilt.WithOnStop(ev.hook("stop:database")),
		),
	)
	require.NoError(
		t, hilt.ProvideValue(
			c, &Config{},
			hilt.WithOnStart(ev.hook("start:config")),
			hilt.WithOnStop(ev.hook("stop:config")),
		),
	)

	_ = hilt.MustInvoke[*Server](c)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Stop(ctx))

	assert.Equal(
		t, []string{
			"start:config", "start:database", "start:server",
			"stop:server", "stop:database", "stop:config",
		}, ev.snapshot(),
	)
}

func TestContainer_StartFailFast(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	ev := &events{}
	boom := errors.New("listen failed")

	hilt.MustProvideValue(c, &Config{}, hilt.WithOnStart(ev.hook("start:config")), hilt.WithOnStop(ev.hook("stop:config")))
	hilt.MustProvideValue(
		c, &Database{},
		hilt.WithOnStart(
			func(ctx context.Context) error {
				ev.add("start:database")
				return boom
			},
		),
	)
	hilt.MustProvideValue(c, &Server{}, hilt.WithOnStart(ev.hook("start:server")))

	_ = hilt.MustInvoke[*Config](c)
	_ = hilt.MustInvoke[*Database](c)
	_ = hilt.MustInvoke[*Server](c)

	ctx := context.Background()
	err := c.Start(ctx)
	require.Error(t, err)
	assert.True(t, hilt.IsStartupFailed(err))
	assert.ErrorIs(t, err, boom)

	var herr *hilt.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "*github.com/danpasecinic/hilt_test.Database", herr.Service)

	assert.Equal(t, []string{"start:config", "start:database"}, ev.snapshot())
	assert.Equal(t, hilt.Started, c.State(), "a failed start is not rolled back")

	err = c.Start(ctx)
	assert.True(t, hilt.IsInvalidStateTransition(err))

	require.NoError(t, c.Stop(ctx))
	assert.Contains(t, ev.snapshot(), "stop:config")
}

func TestContainer_StopCollectsFailures(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	errDB := errors.New("db close")
	errServer := errors.New("server close")

	hilt.MustProvideValue(c, &Database{}, hilt.WithOnStop(func(ctx context.Context) error { return errDB }))
	hilt.MustProvideValue(c, &Server{}, hilt.WithOnStop(func(ctx context.Context) error { return errServer }))
	_ = hilt.MustInvoke[*Database](c)
	_ = hilt.MustInvoke[*Server](c)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	err := c.Stop(ctx)
	require.Error(t, err)
	assert.True(t, hilt.IsShutdownFailed(err))
	assert.ErrorIs(t, err, errDB)
	assert.ErrorIs(t, err, errServer)
	assert.Equal(t, hilt.Stopped, c.State())

	failures := hilt.StopFailures(err)
	require.Len(t, failures, 2)
	assert.Equal(t, "*github.com/danpasecinic/hilt_test.Server", failures[0].Service)
	assert.EqualValues(t, 2, failures[0].Seq)
	assert.Equal(t, "*github.com/danpasecinic/hilt_test.Database", failures[1].Service)
	assert.EqualValues(t, 1, failures[1].Seq)
}

func TestContainer_InvalidTransitions(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	ev := &events{}
	hilt.MustProvideValue(c, &Config{}, hilt.WithOnStart(ev.hook("start")), hilt.WithOnStop(ev.hook("stop")))
	_ = hilt.MustInvoke[*Config](c)

	ctx := context.Background()

	err := c.Stop(ctx)
	require.Error(t, err)
	assert.True(t, hilt.IsInvalidStateTransition(err))
	assert.Empty(t, ev.snapshot())
	assert.Equal(t, hilt.NotStarted, c.State())

	require.NoError(t, c.Start(ctx))
	assert.True(t, hilt.IsInvalidStateTransition(c.Start(ctx)))
	assert.Equal(t, []string{"start"}, ev.snapshot())

	require.NoError(t, c.Stop(ctx))
	assert.True(t, hilt.IsInvalidStateTransition(c.Stop(ctx)))
	assert.True(t, hilt.IsInvalidStateTransition(c.Start(ctx)))
	assert.Equal(t, []string{"start", "stop"}, ev.snapshot())
}

type lifecycleAware struct {
	ev *events
}

func (l *lifecycleAware) Lifecycle() *hilt.Lifecycle {
	lc := &hilt.Lifecycle{}
	lc.OnStart(l.ev.hook("start:lifecycle"))
	lc.OnStop(l.ev.hook("stop:lifecycle"))
	return lc
}

func (l *lifecycleAware) Start(ctx context.Context) error {
	l.ev.add("start:method")
	return nil
}

func (l *lifecycleAware) Stop(ctx context.Context) error {
	l.ev.add("stop:method")
	return nil
}

func TestContainer_HookSources(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	ev := &events{}

	require.NoError(
		t, hilt.Provide(
			c, func(ctx context.Context, r hilt.Resolver) (*lifecycleAware, error) {
				return &lifecycleAware{ev: ev}, nil
			},
			hilt.WithOnStart(ev.hook("start:declared")),
			hilt.WithOnStop(ev.hook("stop:declared")),
		),
	)
	_ = hilt.MustInvoke[*lifecycleAware](c)

	ledger := c.Ledger()
	require.Len(t, ledger, 1)
	assert.Equal(t, 3, ledger[0].OnStart)
	assert.Equal(t, 3, ledger[0].OnStop)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Stop(ctx))

	assert.Equal(
		t, []string{
			"start:declared", "start:lifecycle", "start:method",
			"stop:declared", "stop:lifecycle", "stop:method",
		}, ev.snapshot(),
	)
}

func TestContainer_WithoutCapabilityHooks(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	ev := &events{}

	require.NoError(
		t, hilt.ProvideValue(
			c, &worker{name: "w", ev: ev},
			hilt.WithoutCapabilityHooks(),
			hilt.WithOnStart(ev.hook("start:declared")),
		),
	)
	_ = hilt.MustInvoke[*worker](c)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Stop(ctx))

	assert.Equal(t, []string{"start:declared"}, ev.snapshot())
}

func TestContainer_LateConstruction(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	ev := &events{}

	hilt.MustProvideValue(c, &worker{name: "early", ev: ev})
	hilt.MustProvideValue(c, &worker{name: "late", ev: ev}, hilt.WithName("late"))
	_ = hilt.MustInvoke[*worker](c)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.Equal(t, []string{"start:early"}, ev.snapshot())

	_ = hilt.MustInvokeNamed[*worker](c, "late")
	assert.Equal(t, []string{"start:early", "start:late"}, ev.snapshot(), "started before it was returned")

	_ = hilt.MustInvokeNamed[*worker](c, "late")
	require.NoError(t, c.Stop(ctx))

	assert.Equal(
		t, []string{"start:early", "start:late", "stop:late", "stop:early"}, ev.snapshot(),
	)
}

func TestContainer_LateConstructionStartFails(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	ev := &events{}
	boom := errors.New("cannot start")

	hilt.MustProvideValue(
		c, &Config{},
		hilt.WithOnStart(func(ctx context.Context) error { return boom }),
		hilt.WithOnStop(ev.hook("stop:config")),
	)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	_, err := hilt.Invoke[*Config](c)
	require.Error(t, err)
	assert.True(t, hilt.IsStartupFailed(err))
	assert.ErrorIs(t, err, boom)

	// The instance was recorded, so it is not rebuilt, later resolutions
	// report the same failure and it is still stopped.
	require.Len(t, c.Ledger(), 1)
	cfg, err := hilt.Invoke[*Config](c)
	require.Error(t, err)
	assert.True(t, hilt.IsStartupFailed(err))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, cfg)
	require.Len(t, c.Ledger(), 1)

	require.NoError(t, c.Stop(ctx))
	assert.Equal(t, []string{"stop:config"}, ev.snapshot())
}

func TestContainer_ConstructionAfterFailedStart(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	ev := &events{}
	boom := errors.New("cannot start")

	hilt.MustProvideValue(c, &worker{name: "A", ev: ev})
	hilt.MustProvideValue(c, &Config{}, hilt.WithOnStart(func(ctx context.Context) error { return boom }))
	hilt.MustProvideValue(c, &worker{name: "C", ev: ev}, hilt.WithName("C"))
	_ = hilt.MustInvoke[*worker](c)
	_ = hilt.MustInvoke[*Config](c)

	ctx := context.Background()
	err := c.Start(ctx)
	require.Error(t, err)
	assert.True(t, hilt.IsStartupFailed(err))
	assert.Equal(t, hilt.Started, c.State())

	_, err = hilt.InvokeNamed[*worker](c, "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"start:A", "start:C"}, ev.snapshot())

	require.NoError(t, c.Stop(ctx))
	assert.Equal(t, []string{"start:A", "start:C", "stop:C", "stop:A"}, ev.snapshot())
}

func TestContainer_ConstructAfterStop(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	hilt.MustProvideValue(c, &Config{})

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Stop(ctx))

	_, err := hilt.Invoke[*Config](c)
	require.Error(t, err)
	assert.True(t, hilt.IsContainerStopped(err))
	assert.Empty(t, c.Ledger())
}

func TestContainer_StartHookConstructs(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	ev := &events{}

	hilt.MustProvideValue(c, &worker{name: "spawned", ev: ev}, hilt.WithName("spawned"))
	hilt.MustProvideValue(
		c, &Config{},
		hilt.WithOnStart(
			func(ctx context.Context) error {
				ev.add("start:config")
				_, err := hilt.InvokeNamedCtx[*worker](ctx, c, "spawned")
				return err
			},
		),
	)
	_ = hilt.MustInvoke[*Config](c)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Stop(ctx))

	assert.Equal(t, []string{"start:config", "start:spawned", "stop:spawned"}, ev.snapshot())
}

type (
	eagerConfig   struct{ ev *events }
	eagerDatabase struct{ cfg *eagerConfig }
	eagerServer   struct{ db *eagerDatabase }
)

func TestContainer_Eager(t *testing.T) {
	t.Parallel()

	c := hilt.New(hilt.WithEager())
	ev := &events{}

	hilt.MustProvideFunc[*eagerServer](
		c, func(db *eagerDatabase) *eagerServer { return &eagerServer{db: db} },
		hilt.WithOnStart(ev.hook("start:server")),
	)
	hilt.MustProvideFunc[*eagerDatabase](
		c, func(cfg *eagerConfig) *eagerDatabase { return &eagerDatabase{cfg: cfg} },
		hilt.WithOnStart(ev.hook("start:database")),
	)
	hilt.MustProvideValue(c, &eagerConfig{ev: ev}, hilt.WithOnStart(ev.hook("start:config")))

	assert.Empty(t, c.Ledger())

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.Equal(t, []string{"start:config", "start:database", "start:server"}, ev.snapshot())
	assert.Len(t, c.Ledger(), 3)
	require.NoError(t, c.Stop(ctx))
}

func TestContainer_EagerSkipsTransient(t *testing.T) {
	t.Parallel()

	c := hilt.New(hilt.WithEager())
	var built atomic.Int32

	require.NoError(
		t, hilt.Provide(
			c, func(ctx context.Context, r hilt.Resolver) (*Config, error) {
				built.Add(1)
				return &Config{}, nil
			},
			hilt.WithScope(hilt.Transient),
		),
	)

	require.NoError(t, c.Start(context.Background()))
	assert.Zero(t, built.Load())
}

func TestContainer_HooksRequireSingleton(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	for _, s := range []hilt.Scope{hilt.Transient, hilt.Request} {
		err := hilt.Provide(
			c, func(ctx context.Context, r hilt.Resolver) (*Config, error) {
				return &Config{}, nil
			},
			hilt.WithScope(s),
			hilt.WithOnStart(func(ctx context.Context) error { return nil }),
		)
		assert.True(t, hilt.IsInvalidOption(err), s.String())
	}
	assert.Zero(t, c.Size())
}

func TestContainer_StartTimeout(t *testing.T) {
	t.Parallel()

	c := hilt.New(hilt.WithStartTimeout(time.Minute), hilt.WithShutdownTimeout(time.Minute))

	var startDeadline, stopDeadline bool
	hilt.MustProvideValue(
		c, &Config{},
		hilt.WithOnStart(
			func(ctx context.Context) error {
				_, startDeadline = ctx.Deadline()
				return nil
			},
		),
		hilt.WithOnStop(
			func(ctx context.Context) error {
				_, stopDeadline = ctx.Deadline()
				return nil
			},
		),
	)
	_ = hilt.MustInvoke[*Config](c)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Stop(ctx))

	assert.True(t, startDeadline)
	assert.True(t, stopDeadline)
}

func TestContainer_NoTimeoutByDefault(t *testing.T) {
	t.Parallel()

	c := hilt.New()

	hasDeadline := true
	hilt.MustProvideValue(
		c, &Config{},
		hilt.WithOnStop(
			func(ctx context.Context) error {
				_, hasDeadline = ctx.Deadline()
				return nil
			},
		),
	)
	_ = hilt.MustInvoke[*Config](c)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Stop(ctx))
	assert.False(t, hasDeadline)
}

func TestContainer_HookPanic(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	hilt.MustProvideValue(
		c, &Config{},
		hilt.WithOnStart(func(ctx context.Context) error { panic("bad hook") }),
	)
	_ = hilt.MustInvoke[*Config](c)

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.True(t, hilt.IsStartupFailed(err))
	assert.Contains(t, err.Error(), "bad hook")
}

func TestContainer_Run(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	ev := &events{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hilt.MustProvideValue(
		c, &Config{},
		hilt.WithOnStart(
			func(context.Context) error {
				ev.add("start")
				cancel()
				return nil
			},
		),
		hilt.WithOnStop(
			func(ctx context.Context) error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				ev.add("stop")
				return nil
			},
		),
	)
	_ = hilt.MustInvoke[*Config](c)

	require.NoError(t, c.Run(ctx))
	assert.Equal(t, []string{"start", "stop"}, ev.snapshot())
	assert.Equal(t, hilt.Stopped, c.State())
}

func TestContainer_ConcurrentFirstResolution(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	var built, started atomic.Int32

	require.NoError(
		t, hilt.Provide(
			c, func(ctx context.Context, r hilt.Resolver) (*Database, error) {
				built.Add(1)
				time.Sleep(5 * time.Millisecond)
				return &Database{}, nil
			},
			hilt.WithOnStart(
				func(ctx context.Context) error {
					started.Add(1)
					return nil
				},
			),
		),
	)

	const callers = 32
	results := make([]*Database, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = hilt.MustInvoke[*Database](c)
		}()
	}
	wg.Wait()

	for _, db := range results {
		assert.Same(t, results[0], db)
	}
	assert.EqualValues(t, 1, built.Load())
	assert.Len(t, c.Ledger(), 1)

	require.NoError(t, c.Start(context.Background()))
	assert.EqualValues(t, 1, started.Load())
}

func TestContainer_StartConcurrentWithConstruction(t *testing.T) {
	t.Parallel()

	for range 50 {
		c := hilt.New()
		ev := &events{}

		hilt.MustProvideValue(c, &worker{name: "A", ev: ev})
		hilt.MustProvideValue(c, &worker{name: "C", ev: ev}, hilt.WithName("C"))
		_ = hilt.MustInvoke[*worker](c)

		ctx := context.Background()
		ready := make(chan struct{})
		var wg sync.WaitGroup
		var invokeErr error

		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ready
			_, invokeErr = hilt.InvokeNamed[*worker](c, "C")
		}()

		close(ready)
		require.NoError(t, c.Start(ctx))
		wg.Wait()
		require.NoError(t, invokeErr)

		require.NoError(t, c.Stop(ctx))
		assert.Equal(t, []string{"start:A", "start:C", "stop:C", "stop:A"}, ev.snapshot())
	}
}

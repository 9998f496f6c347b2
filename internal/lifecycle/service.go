// Package lifecycle runs start hooks in ledger order and stop hooks in reverse
// ledger order, each exactly once.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/danpasecinic/hilt/internal/hooks"
	"github.com/danpasecinic/hilt/internal/ledger"
)

type Observer func(key string, duration time.Duration, err error)

type RecordObserver func(key string, seq uint64)

type Config struct {
	Logger       *slog.Logger
	Tracer       trace.Tracer
	Registry     *hooks.Registry
	StartTimeout time.Duration
	StopTimeout  time.Duration
	OnStart      []Observer
	OnStop       []Observer
	OnRecord     []RecordObserver
}

type Service struct {
	mu     sync.Mutex
	phase  phase
	ledger *ledger.Ledger

	// late tracks start hooks of components recorded after the start walk
	// finished. Stop waits for them before walking.
	late sync.WaitGroup

	registry     *hooks.Registry
	logger       *slog.Logger
	tracer       trace.Tracer
	startTimeout time.Duration
	stopTimeout  time.Duration
	onStart      []Observer
	onStop       []Observer
	onRecord     []RecordObserver
}

func New(l *ledger.Ledger, cfg Config) *Service {
	if l == nil {
		l = ledger.New()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	registry := cfg.Registry
	if registry == nil {
		registry = hooks.NewRegistry()
	}

	return &Service{
		ledger:       l,
		registry:     registry,
		logger:       logger,
		tracer:       tracer,
		startTimeout: cfg.StartTimeout,
		stopTimeout:  cfg.StopTimeout,
		onStart:      cfg.OnStart,
		onStop:       cfg.OnStop,
		onRecord:     cfg.OnRecord,
	}
}

func (s *Service) Ledger() *ledger.Ledger {
	return s.ledger
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase.state()
}

// Record resolves the instance's hooks and appends it to the ledger. It must
// be called after construction succeeds and before the instance is handed to
// any caller.
//
// Instances recorded once the start walk has ended, whether it succeeded or
// failed, have their start hooks run here, on the caller's goroutine.
// Instances recorded while the walk is in progress are picked up by the walk.
// Recording after Stop began fails with ErrStopped.
func (s *Service) Record(ctx context.Context, key string, instance any, declared hooks.Set) (*ledger.Entry, error) {
	set := s.registry.Resolve(instance, declared)

	s.mu.Lock()
	if s.phase == phaseStopping || s.phase == phaseStopped {
		s.mu.Unlock()
		return nil, fmt.Errorf("cannot record %s: %w", key, ErrStopped)
	}

	entry, err := s.ledger.Append(key, instance, set.OnStart, set.OnStop)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	late := s.phase == phaseRunning || s.phase == phaseStartFailed
	if late {
		s.late.Add(1)
	}
	s.mu.Unlock()

	s.logger.Debug("recorded construction", "service", key, "seq", entry.Seq)
	for _, observe := range s.onRecord {
		observe(key, entry.Seq)
	}

	if !late {
		return entry, nil
	}
	defer s.late.Done()

	ctx, cancel := withTimeout(ctx, s.startTimeout)
	defer cancel()

	return entry, s.startEntry(ctx, entry)
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != phaseIdle {
		from := s.phase.state()
		s.mu.Unlock()
		return &TransitionError{From: from, To: Started}
	}
	s.phase = phaseStarting
	s.mu.Unlock()

	ctx, cancel := withTimeout(ctx, s.startTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "hilt.lifecycle.start")
	defer span.End()

	began := time.Now()
	s.logger.Info("starting components", "recorded", s.ledger.Len())

	// The ledger length is re-read on every step so components constructed by
	// start hooks are started in their ledger position.
	for i := 0; ; i++ {
		s.mu.Lock()
		entry, ok := s.ledger.At(i)
		if !ok {
			s.phase = phaseRunning
			s.mu.Unlock()
			break
		}
		s.mu.Unlock()

		if err := s.startEntry(ctx, entry); err != nil {
			s.mu.Lock()
			s.phase = phaseStartFailed
			s.mu.Unlock()

			span.RecordError(err)
			span.SetStatus(codes.Error, "start hook failed")
			return err
		}
	}

	span.SetAttributes(attribute.Int("hilt.components", s.ledger.Len()))
	s.logger.Info("components started", "count", s.ledger.Len(), "duration", time.Since(began))
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	switch s.phase {
	case phaseRunning, phaseStartFailed:
	case phaseStarting:
		s.mu.Unlock()
		return &TransitionError{From: Started, To: Stopped, Reason: "start walk in progress"}
	default:
		from := s.phase.state()
		s.mu.Unlock()
		return &TransitionError{From: from, To: Stopped}
	}
	s.phase = phaseStopping
	entries := s.ledger.Entries()
	s.mu.Unlock()

	s.late.Wait()

	ctx, cancel := withTimeout(ctx, s.stopTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(
		ctx, "hilt.lifecycle.stop",
		trace.WithAttributes(attribute.Int("hilt.components", len(entries))),
	)
	defer span.End()

	began := time.Now()
	s.logger.Info("stopping components", "count", len(entries))

	var failures []*HookError
	for i := len(entries) - 1; i >= 0; i-- {
		failures = append(failures, s.stopEntry(ctx, entries[i])...)
	}

	s.mu.Lock()
	s.phase = phaseStopped
	s.mu.Unlock()

	if len(failures) > 0 {
		err := &StopError{Failures: failures}
		span.RecordError(err)
		span.SetStatus(codes.Error, "stop hooks failed")
		return err
	}

	s.logger.Info("components stopped", "count", len(entries), "duration", time.Since(began))
	return nil
}

func (s *Service) startEntry(ctx context.Context, entry *ledger.Entry) error {
	began := time.Now()

	var startErr error
	if len(entry.OnStart) > 0 {
		ctx, span := s.componentSpan(ctx, "hilt.component.start", entry)
		for i, hook := range entry.OnStart {
			s.logger.Debug("running OnStart hook", "service", entry.Key, "seq", entry.Seq, "index", i)
			if err := invoke(ctx, hook); err != nil {
				startErr = &HookError{
					Phase: PhaseStart, Component: entry.Key, Seq: entry.Seq, Index: i, Cause: err,
				}
				span.RecordError(err)
				span.SetStatus(codes.Error, "start hook failed")
				break
			}
		}
		span.End()
	}

	for _, observe := range s.onStart {
		observe(entry.Key, time.Since(began), startErr)
	}
	return startErr
}

func (s *Service) stopEntry(ctx context.Context, entry *ledger.Entry) []*HookError {
	began := time.Now()

	var failures []*HookError
	if len(entry.OnStop) > 0 {
		ctx, span := s.componentSpan(ctx, "hilt.component.stop", entry)
		for i, hook := range entry.OnStop {
			s.logger.Debug("running OnStop hook", "service", entry.Key, "seq", entry.Seq, "index", i)
			if err := invoke(ctx, hook); err != nil {
				failures = append(
					failures, &HookError{
						Phase: PhaseStop, Component: entry.Key, Seq: entry.Seq, Index: i, Cause: err,
					},
				)
				span.RecordError(err)
				span.SetStatus(codes.Error, "stop hook failed")
			}
		}
		span.End()
	}

	var observed error
	if len(failures) > 0 {
		observed = failures[0]
	}
	for _, observe := range s.onStop {
		observe(entry.Key, time.Since(began), observed)
	}
	return failures
}

func (s *Service) componentSpan(ctx context.Context, name string, entry *ledger.Entry) (context.Context, trace.Span) {
	return s.tracer.Start(
		ctx, name,
		trace.WithAttributes(
			attribute.String("hilt.service", entry.Key),
			attribute.Int64("hilt.seq", int64(entry.Seq)),
		),
	)
}

func invoke(ctx context.Context, hook hooks.Hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return hook(ctx)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

package hilt

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type HealthStatus string

const (
	HealthStatusUp      HealthStatus = "up"
	HealthStatusDown    HealthStatus = "down"
	HealthStatusUnknown HealthStatus = "unknown"
)

type HealthReport struct {
	Name    string
	Status  HealthStatus
	Error   error
	Latency time.Duration
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type ReadinessChecker interface {
	ReadinessCheck(ctx context.Context) error
}

type check struct {
	name string
	run  func(ctx context.Context) error
}

// Live runs every HealthChecker among the constructed singletons
// concurrently. The first failure cancels the remaining checks.
func (c *Container) Live(ctx context.Context) error {
	return c.firstFailure(ctx, c.checks(liveness))
}

// Ready is Live for ReadinessChecker.
func (c *Container) Ready(ctx context.Context) error {
	return c.firstFailure(ctx, c.checks(readiness))
}

// Health reports every HealthChecker, in construction order.
func (c *Container) Health(ctx context.Context) []HealthReport {
	checks := c.checks(liveness)
	reports := make([]HealthReport, len(checks))

	var wg sync.WaitGroup
	for i, chk := range checks {
		wg.Go(
			func() {
				start := time.Now()
				err := chk.run(ctx)

				reports[i] = HealthReport{Name: chk.name, Status: HealthStatusUp, Latency: time.Since(start)}
				if err != nil {
					reports[i].Status = HealthStatusDown
					reports[i].Error = err
				}
			},
		)
	}
	wg.Wait()

	return reports
}

func (c *Container) firstFailure(ctx context.Context, checks []check) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, chk := range checks {
		g.Go(
			func() error {
				if err := chk.run(gctx); err != nil {
					return errHealthCheckFailed(chk.name, err)
				}
				return nil
			},
		)
	}
	return g.Wait()
}

type probe int

const (
	liveness probe = iota
	readiness
)

// checks only looks at constructed singletons so probing never builds
// anything.
func (c *Container) checks(p probe) []check {
	var checks []check
	for _, entry := range c.internal.Ledger() {
		switch p {
		case liveness:
			if hc, ok := entry.Instance.(HealthChecker); ok {
				checks = append(checks, check{name: entry.Key, run: hc.HealthCheck})
			}
		case readiness:
			if rc, ok := entry.Instance.(ReadinessChecker); ok {
				checks = append(checks, check{name: entry.Key, run: rc.ReadinessCheck})
			}
		}
	}
	return checks
}

func errHealthCheckFailed(service string, cause error) *Error {
	return newError(ErrCodeHealthCheckFailed, "health check failed", cause).WithService(service)
}

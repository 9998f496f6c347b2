// Package hiltprom exports container activity as Prometheus metrics.
package hiltprom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danpasecinic/hilt"
)

// Metrics holds the container collectors. All metric names use the hilt_
// prefix.
type Metrics struct {
	// ResolvesTotal counts resolutions by key and status
	ResolvesTotal *prometheus.CounterVec

	// ResolveDuration tracks resolution latency, including construction
	ResolveDuration *prometheus.HistogramVec

	// ProvidersRegistered counts registered providers
	ProvidersRegistered prometheus.Counter

	// Constructed is the number of recorded singletons
	Constructed prometheus.Gauge

	// HookRunsTotal counts lifecycle hook runs by phase, key and status
	HookRunsTotal *prometheus.CounterVec

	// HookDuration tracks per-component hook latency by phase
	HookDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Panics if registration fails.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ResolvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hilt_resolves_total",
				Help: "Total resolutions by key and status",
			},
			[]string{"key", "status"},
		),
		ResolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hilt_resolve_duration_seconds",
				Help:    "Resolution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"key"},
		),
		ProvidersRegistered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hilt_providers_registered_total",
				Help: "Total providers registered",
			},
		),
		Constructed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hilt_constructed_singletons",
				Help: "Number of singletons recorded in construction order",
			},
		),
		HookRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hilt_hook_runs_total",
				Help: "Total lifecycle hook runs by phase, key and status",
			},
			[]string{"phase", "key", "status"},
		),
		HookDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hilt_hook_duration_seconds",
				Help:    "Lifecycle hook duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
	}

	reg.MustRegister(
		m.ResolvesTotal,
		m.ResolveDuration,
		m.ProvidersRegistered,
		m.Constructed,
		m.HookRunsTotal,
		m.HookDuration,
	)

	return m
}

// Options returns container options that feed m.
func (m *Metrics) Options() []hilt.Option {
	return []hilt.Option{
		hilt.WithResolveObserver(m.observeResolve),
		hilt.WithProvideObserver(m.observeProvide),
		hilt.WithConstructObserver(m.observeConstruct),
		hilt.WithStartObserver(m.observeHook("start")),
		hilt.WithStopObserver(m.observeHook("stop")),
	}
}

func (m *Metrics) observeResolve(key string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.ResolvesTotal.WithLabelValues(key, status(err)).Inc()
	m.ResolveDuration.WithLabelValues(key).Observe(d.Seconds())
}

func (m *Metrics) observeProvide(string) {
	if m == nil {
		return
	}
	m.ProvidersRegistered.Inc()
}

func (m *Metrics) observeConstruct(_ string, seq uint64) {
	if m == nil {
		return
	}
	m.Constructed.Set(float64(seq))
}

func (m *Metrics) observeHook(phase string) func(string, time.Duration, error) {
	return func(key string, d time.Duration, err error) {
		if m == nil {
			return
		}
		m.HookRunsTotal.WithLabelValues(phase, key, status(err)).Inc()
		m.HookDuration.WithLabelValues(phase).Observe(d.Seconds())
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

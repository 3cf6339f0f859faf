package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"foodflow/internal/shared"
)

// Recorder receives the metadata of every generation run.
type Recorder interface {
	RecordRun(ctx context.Context, meta shared.RunMeta) error
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordRun(context.Context, shared.RunMeta) error { return nil }

// Multi fans a run out to several recorders. Every recorder is called even
// if an earlier one fails.
type Multi []Recorder

func (m Multi) RecordRun(ctx context.Context, meta shared.RunMeta) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordRun(ctx, meta); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Collectors exposes generation runs as Prometheus metrics.
type Collectors struct {
	plans    *prometheus.CounterVec
	failures prometheus.Counter
	latency  *prometheus.HistogramVec
}

// NewCollectors creates the collectors and registers them on reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodflow_plans_generated_total",
			Help: "Weekly meal plans generated, by generation mode.",
		}, []string{"mode"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodflow_fetch_failures_total",
			Help: "Recipe fetches that failed or returned no meal.",
		}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "foodflow_generation_seconds",
			Help:    "Time spent generating a weekly plan.",
			Buckets: []float64{.001, .01, .1, .5, 1, 2.5, 5, 10, 30},
		}, []string{"mode"}),
	}
	reg.MustRegister(c.plans, c.failures, c.latency)
	return c
}

func (c *Collectors) RecordRun(_ context.Context, meta shared.RunMeta) error {
	mode := string(meta.Mode)
	c.plans.WithLabelValues(mode).Inc()
	c.failures.Add(float64(meta.Failed))
	c.latency.WithLabelValues(mode).Observe(meta.Latency.Seconds())
	return nil
}

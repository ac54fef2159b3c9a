package observability

import (
	"context"

	"github.com/aretw0/quill/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by pen lifecycle events.
type Metrics struct {
	Grabs         *prometheus.CounterVec
	StrokesSealed *prometheus.CounterVec
	Points        prometheus.Counter
	StrokePoints  prometheus.Histogram
	PublishErrors *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Grabs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quill_grabs_total",
				Help: "Total number of grab transitions",
			},
			[]string{"edge"},
		),
		StrokesSealed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quill_strokes_sealed_total",
				Help: "Total number of sealed strokes",
			},
			[]string{"reason"},
		),
		Points: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "quill_points_total",
				Help: "Total number of points appended to strokes",
			},
		),
		StrokePoints: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quill_stroke_points",
				Help:    "Number of points in each sealed stroke",
				Buckets: []float64{1, 8, 32, 64, 128, 256, 350},
			},
		),
		PublishErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quill_publish_errors_total",
				Help: "Total number of rejected scene updates",
			},
			[]string{"target"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Grabs, m.StrokesSealed, m.Points, m.StrokePoints, m.PublishErrors)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGrabStart: func(_ context.Context, _ *domain.GrabEvent) {
			m.Grabs.WithLabelValues("start").Inc()
		},
		OnGrabStop: func(_ context.Context, _ *domain.GrabEvent) {
			m.Grabs.WithLabelValues("stop").Inc()
		},
		OnStrokeSeal: func(_ context.Context, e *domain.StrokeEvent) {
			reason := "release"
			if e.Segmented {
				reason = "segment"
			}
			m.StrokesSealed.WithLabelValues(reason).Inc()
			m.StrokePoints.Observe(float64(e.Points))
		},
		OnPointAppend: func(_ context.Context, _ *domain.PointEvent) {
			m.Points.Inc()
		},
		OnPublishError: func(_ context.Context, e *domain.PublishErrorEvent) {
			m.PublishErrors.WithLabelValues(e.Target).Inc()
		},
	}
}

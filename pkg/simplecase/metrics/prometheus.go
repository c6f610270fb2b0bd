// Package metrics is the Prometheus implementation of simplecase.Metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tendant/simple-case/pkg/simplecase"
)

// Result label values
const (
	ResultOK       = "ok"
	ResultClosed   = "closed"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Metrics records case store round-trips.
type Metrics struct {
	resolutions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	entities    *prometheus.CounterVec
}

var _ simplecase.Metrics = (*Metrics)(nil)

// New registers the case metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		resolutions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplecase_resolutions_total",
				Help: "Total number of case store calls by operation and result",
			},
			[]string{"op", "result"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simplecase_resolution_duration_seconds",
				Help:    "Duration of case store calls by operation",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 100us .. ~26s
			},
			[]string{"op"},
		),
		entities: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplecase_entities_loaded_total",
				Help: "Total number of entities or ids returned by case store calls",
			},
			[]string{"op"},
		),
	}
}

// ObserveResolution records one store call.
func (m *Metrics) ObserveResolution(op string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(op, result(err)).Inc()
	if !errors.Is(err, simplecase.ErrCaseClosed) {
		m.duration.WithLabelValues(op).Observe(duration.Seconds())
	}
}

// ObserveEntities records how many entities a call returned.
func (m *Metrics) ObserveEntities(op string, count int) {
	if m == nil {
		return
	}
	m.entities.WithLabelValues(op).Add(float64(count))
}

func result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, simplecase.ErrCaseClosed):
		return ResultClosed
	case simplecase.IsNotFound(err):
		return ResultNotFound
	default:
		return ResultError
	}
}

package semantic

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts validations.  A nil *Metrics records nothing.
type Metrics struct {
	validations *prometheus.CounterVec
	errors      *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics creates the validator metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sqlsem_validations_total",
			Help: "Number of statements validated, by result.",
		}, []string{"result"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sqlsem_validation_errors_total",
			Help: "Number of failed validations, by error code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sqlsem_validation_seconds",
			Help:    "Time spent validating a statement.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	reg.MustRegister(m.validations, m.errors, m.duration)
	return m
}

func (m *Metrics) observe(start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
	if err == nil {
		m.validations.WithLabelValues("ok").Inc()
		return
	}
	m.validations.WithLabelValues("error").Inc()
	code := Internal
	var e *Error
	if errors.As(err, &e) {
		code = e.Code
	}
	m.errors.WithLabelValues(code.String()).Inc()
}

package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adlstore/adls_sdk_go/pkg/adls"
)

// operationMetrics is the Prometheus implementation of adls.Metrics.
type operationMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
}

// NewOperationMetrics creates metrics on the global registry. It returns nil
// when metrics are disabled, so the result can be passed to adls.WithMetrics
// unconditionally.
func NewOperationMetrics() adls.Metrics {
	if !IsEnabled() {
		return nil
	}
	return NewOperationMetricsWith(GetRegistry())
}

// NewOperationMetricsWith registers the collectors on reg. Collectors already
// registered there by an earlier call are shared, so every client built on
// one registry reports into the same series.
func NewOperationMetricsWith(reg prometheus.Registerer) adls.Metrics {
	return &operationMetrics{
		operationsTotal: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adls_operations_total",
				Help: "Total number of file-store operations by operation, form and status",
			},
			[]string{"operation", "form", "status"},
		)),
		operationDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "adls_operation_duration_seconds",
				Help: "Duration of file-store operations in seconds",
				Buckets: []float64{
					0.005, // 5ms
					0.025, // 25ms
					0.1,   // 100ms
					0.25,  // 250ms
					1.0,   // 1s
					2.5,   // 2.5s
					10.0,  // 10s
					30.0,  // 30s
				},
			},
			[]string{"operation", "form"},
		)),
		bytesTransferred: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adls_bytes_transferred_total",
				Help: "Total payload bytes moved by file-store operations",
			},
			[]string{"operation", "direction"}, // upload or download
		)),
	}
}

// register adds c to reg, or returns the equivalent collector reg already
// holds. A conflicting registration still panics.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

// ObserveCall implements adls.Metrics. Successful calls are labelled
// "success", failures carry the error kind.
func (m *operationMetrics) ObserveCall(op adls.Operation, form adls.Form, kind adls.ErrorKind, d time.Duration) {
	status := "success"
	if kind != adls.KindNone {
		status = kind.String()
	}
	m.operationsTotal.WithLabelValues(string(op), string(form), status).Inc()
	m.operationDuration.WithLabelValues(string(op), string(form)).Observe(d.Seconds())
}

// AddBytes implements adls.Metrics.
func (m *operationMetrics) AddBytes(op adls.Operation, direction string, n int) {
	if n <= 0 {
		return
	}
	m.bytesTransferred.WithLabelValues(string(op), direction).Add(float64(n))
}

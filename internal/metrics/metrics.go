package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of the fetch cycles
type Metrics struct {
	// Fetch metrics
	FetchTotal       *prometheus.CounterVec
	FetchDuration    *prometheus.HistogramVec
	FetchErrorsTotal *prometheus.CounterVec

	// Result metrics
	PropertiesTotal *prometheus.CounterVec
	ReferenceDate   *prometheus.GaugeVec

	// HTTP metrics
	HTTPRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "exchange"
	}
	factory := promauto.With(reg)

	return &Metrics{
		FetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_total",
				Help:      "Total number of provider fetch cycles",
			},
			[]string{"driver", "status"},
		),

		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of provider fetch cycles in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"driver"},
		),

		FetchErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_errors_total",
				Help:      "Total number of failed fetch cycles by error type",
			},
			[]string{"driver", "error_type"},
		),

		PropertiesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "properties_total",
				Help:      "Total number of rates streamed to callers",
			},
			[]string{"driver"},
		),

		ReferenceDate: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "reference_date_timestamp_seconds",
				Help:      "Reference date of the last successful fetch",
			},
			[]string{"driver"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"path", "status"},
		),
	}
}

// RecordFetch records a finished fetch cycle. A nil receiver is a no-op.
func (m *Metrics) RecordFetch(driver, status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(driver, status).Inc()
	m.FetchDuration.WithLabelValues(driver).Observe(durationSeconds)
}

func (m *Metrics) RecordFetchError(driver, errorType string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(driver, errorType).Inc()
}

// RecordProperties records the rates streamed and the date they are valid for
func (m *Metrics) RecordProperties(driver string, count int, referenceUnix int64) {
	if m == nil {
		return
	}
	m.PropertiesTotal.WithLabelValues(driver).Add(float64(count))
	m.ReferenceDate.WithLabelValues(driver).Set(float64(referenceUnix))
}

func (m *Metrics) RecordHTTPRequest(path, status string) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(path, status).Inc()
}

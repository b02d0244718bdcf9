package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the POS service exports
type Metrics struct {
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Sync metrics
	SyncRequestsCounter *prometheus.CounterVec
	SyncRecordsCounter  *prometheus.CounterVec

	// Store metrics
	StoreOperationsCounter *prometheus.CounterVec
	StoreCacheCounter      *prometheus.CounterVec
}

// NewMetrics creates the collectors with the given name prefix and registers them on reg
func NewMetrics(prefix string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		AuthAttemptsCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_attempts_total",
				Help: "Total number of authentication attempts",
			},
		),
		AuthSuccessCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_success_total",
				Help: "Total number of successful authentications",
			},
		),
		AuthErrorsCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_errors_total",
				Help: "Total number of authentication errors",
			},
		),
		DbOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		),
		SyncRequestsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_sync_requests_total",
				Help: "Total number of sync requests by direction and outcome",
			},
			[]string{"direction", "outcome"},
		),
		SyncRecordsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_sync_records_total",
				Help: "Total number of synced records by entity and result",
			},
			[]string{"entity", "result"},
		),
		StoreOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_store_operations_total",
				Help: "Total number of store operations",
			},
			[]string{"operation"},
		),
		StoreCacheCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_store_cache_total",
				Help: "Store list cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *Metrics) TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if m == nil {
			return
		}
		duration := time.Since(startTime).Seconds()
		m.DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordSync increments the counter for a finished sync request
func (m *Metrics) RecordSync(direction, outcome string) {
	if m == nil {
		return
	}
	m.SyncRequestsCounter.WithLabelValues(direction, outcome).Inc()
}

// RecordSyncRecords adds count records of entity reconciled with result
func (m *Metrics) RecordSyncRecords(entity, result string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.SyncRecordsCounter.WithLabelValues(entity, result).Add(float64(count))
}

// RecordStoreOperation increments the counter for store operations
func (m *Metrics) RecordStoreOperation(operation string) {
	if m == nil {
		return
	}
	m.StoreOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordStoreCache counts a store cache hit or miss
func (m *Metrics) RecordStoreCache(result string) {
	if m == nil {
		return
	}
	m.StoreCacheCounter.WithLabelValues(result).Inc()
}

// RecordAuth counts an authentication attempt and its outcome
func (m *Metrics) RecordAuth(success bool) {
	if m == nil {
		return
	}
	m.AuthAttemptsCounter.Inc()
	if success {
		m.AuthSuccessCounter.Inc()
	} else {
		m.AuthErrorsCounter.Inc()
	}
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the hospital module.
// Tracks request lifecycle counts and dashboard latency.
type Metrics struct {
	HospitalRegistered prometheus.Counter
	RequestCreated     *prometheus.CounterVec
	RequestFulfilled   prometheus.Counter
	DashboardDuration  prometheus.Histogram
	DashboardCacheHits prometheus.Counter
}

// New creates a new Metrics instance with all hospital module metrics
// registered.
func New() *Metrics {
	return &Metrics{
		HospitalRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_hospitals_registered_total",
			Help: "Total number of hospital profiles created",
		}),
		RequestCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_blood_requests_created_total",
			Help: "Total number of blood requests created",
		}, []string{"blood_type", "urgency"}),
		RequestFulfilled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_blood_requests_fulfilled_total",
			Help: "Total number of blood requests fulfilled",
		}),
		DashboardDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodlink_dashboard_duration_seconds",
			Help:    "Duration of dashboard aggregation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		DashboardCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_dashboard_cache_hits_total",
			Help: "Dashboard responses served from cache",
		}),
	}
}

// IncrementHospitalRegistered records a successful hospital registration.
func (m *Metrics) IncrementHospitalRegistered() {
	m.HospitalRegistered.Inc()
}

// IncrementRequestCreated records a blood request creation.
func (m *Metrics) IncrementRequestCreated(bloodType, urgency string) {
	m.RequestCreated.WithLabelValues(bloodType, urgency).Inc()
}

// IncrementRequestFulfilled records a fulfillment.
func (m *Metrics) IncrementRequestFulfilled() {
	m.RequestFulfilled.Inc()
}

// ObserveDashboard records the duration of a dashboard aggregation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveDashboard(start time.Time) {
	m.DashboardDuration.Observe(time.Since(start).Seconds())
}

// IncrementDashboardCacheHit records a cache-served dashboard.
func (m *Metrics) IncrementDashboardCacheHit() {
	m.DashboardCacheHits.Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the donor module.
// Tracks registrations, availability toggles, and search latency.
type Metrics struct {
	DonorRegistered       prometheus.Counter
	AvailabilityToggled   prometheus.Counter
	ProfileUpdated        prometheus.Counter
	ListDonorsDuration    prometheus.Histogram
	ProximitySearchDonors prometheus.Histogram
}

// New creates a new Metrics instance with all donor module metrics registered.
func New() *Metrics {
	return &Metrics{
		DonorRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_donors_registered_total",
			Help: "Total number of donor profiles created",
		}),
		AvailabilityToggled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_donor_availability_toggles_total",
			Help: "Total number of donor availability toggles",
		}),
		ProfileUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_donor_profile_updates_total",
			Help: "Total number of donor profile updates",
		}),
		ListDonorsDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodlink_list_donors_duration_seconds",
			Help:    "Duration of donor list/search operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ProximitySearchDonors: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodlink_proximity_search_result_donors",
			Help:    "Number of donors returned by proximity-filtered searches",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
	}
}

// IncrementDonorRegistered records a successful donor registration.
func (m *Metrics) IncrementDonorRegistered() {
	m.DonorRegistered.Inc()
}

// IncrementAvailabilityToggled records an availability toggle.
func (m *Metrics) IncrementAvailabilityToggled() {
	m.AvailabilityToggled.Inc()
}

// IncrementProfileUpdated records a profile update.
func (m *Metrics) IncrementProfileUpdated() {
	m.ProfileUpdated.Inc()
}

// ObserveListDonors records the duration of a donor list operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveListDonors(start time.Time) {
	m.ListDonorsDuration.Observe(time.Since(start).Seconds())
}

// ObserveProximityResults records the result size of a proximity search.
func (m *Metrics) ObserveProximityResults(count int) {
	m.ProximitySearchDonors.Observe(float64(count))
}

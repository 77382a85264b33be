package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the account module.
type Metrics struct {
	Registered   *prometheus.CounterVec
	Logins       prometheus.Counter
	FailedLogins prometheus.Counter
}

// New creates a new Metrics instance with all account module metrics
// registered.
func New() *Metrics {
	return &Metrics{
		Registered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_accounts_registered_total",
			Help: "Total number of accounts registered",
		}, []string{"role"}),
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_logins_total",
			Help: "Total number of successful logins",
		}),
		FailedLogins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_failed_logins_total",
			Help: "Total number of rejected login attempts",
		}),
	}
}

// IncrementRegistered records a successful registration.
func (m *Metrics) IncrementRegistered(role string) {
	m.Registered.WithLabelValues(role).Inc()
}

// IncrementLogin records a successful login.
func (m *Metrics) IncrementLogin() {
	m.Logins.Inc()
}

// IncrementFailedLogin records a rejected login attempt.
func (m *Metrics) IncrementFailedLogin() {
	m.FailedLogins.Inc()
}

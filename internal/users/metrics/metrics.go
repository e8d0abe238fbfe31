package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification outcomes.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Metrics provides observability for the users module.
// Tracks registrations, notification attempts and the create path duration.
type Metrics struct {
	UsersCreated   prometheus.Counter
	Notifications  *prometheus.CounterVec
	CreateDuration prometheus.Histogram
}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "signup_users_created_total",
			Help: "Total number of users registered",
		}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_notifications_total",
			Help: "Post-registration notification attempts by channel and outcome",
		}, []string{"channel", "outcome"}),
		CreateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "signup_create_user_duration_seconds",
			Help:    "Duration of user creation including the notification fan-out",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementUsersCreated records a successful registration.
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

// IncrementNotification records one notification attempt.
func (m *Metrics) IncrementNotification(channel, outcome string) {
	m.Notifications.WithLabelValues(channel, outcome).Inc()
}

// ObserveCreate records the duration of a Create call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}

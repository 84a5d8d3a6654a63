package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hirepath", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hirepath", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hirepath", Name: "webhook_events_total", Help: "Identity webhook events by type and result."},
		[]string{"type", "result"},
	)
	ApplicationsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "hirepath", Name: "applications_submitted_total", Help: "Number of job applications submitted."},
	)
	NotificationsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hirepath", Name: "notifications_written_total", Help: "Inbox notifications written by type."},
		[]string{"type"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(WebhookEvents)
	reg.MustRegister(ApplicationsSubmitted)
	reg.MustRegister(NotificationsWritten)
}

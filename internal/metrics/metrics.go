// Package metrics provides Prometheus collectors for HTTP traffic, comment
// moderation and authentication.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsroom"

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by a rate limit bucket",
		},
		[]string{"bucket"},
	)

	// Comment metrics
	CommentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comments",
			Name:      "created_total",
			Help:      "Comments created by initial moderation state",
		},
		[]string{"state"},
	)

	SpamSignals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comments",
			Name:      "spam_signals_total",
			Help:      "Spam heuristic hits on submitted comments by signal",
		},
		[]string{"signal"},
	)

	ModerationActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comments",
			Name:      "moderation_actions_total",
			Help:      "Moderator state transitions by target state",
		},
		[]string{"state"},
	)

	CommentsPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "comments_pending",
			Help:      "Comments waiting for moderation, refreshed by the stats job",
		},
	)

	UsersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "users_total",
			Help:      "Registered users, refreshed by the stats job",
		},
	)

	// Auth metrics
	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Rejected authentication attempts by error code",
		},
		[]string{"code"},
	)

	LoginsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Successful logins",
		},
	)
)

// ObserveCommentCreated records a new comment and the spam signals it hit.
func ObserveCommentCreated(state string, signals []string) {
	CommentsCreated.WithLabelValues(state).Inc()
	for _, signal := range signals {
		SpamSignals.WithLabelValues(signal).Inc()
	}
}

// ObserveModeration records a moderator moving a comment into state.
func ObserveModeration(state string) {
	ModerationActions.WithLabelValues(state).Inc()
}

// ObserveAuthFailure records a rejected credential or token.
func ObserveAuthFailure(code string) {
	AuthFailures.WithLabelValues(code).Inc()
}

// SetModerationGauges publishes the latest aggregate counts.
func SetModerationGauges(pendingComments, users int64) {
	CommentsPending.Set(float64(pendingComments))
	UsersTotal.Set(float64(users))
}

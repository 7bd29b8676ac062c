package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by method, route and status
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quest_http_requests_total",
		Help: "The total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes request latency by route
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quest_http_request_duration_seconds",
		Help:    "The request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// LoginAttemptsTotal counts login attempts by outcome
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quest_login_attempts_total",
		Help: "The total number of login attempts",
	}, []string{"status"})

	// LoanSubmissionsTotal counts loan submissions by outcome
	LoanSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quest_loan_submissions_total",
		Help: "The total number of loan application submissions",
	}, []string{"status"})

	// LoanTransitionsTotal counts loan management actions by action and outcome
	LoanTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quest_loan_transitions_total",
		Help: "The total number of loan management actions",
	}, []string{"action", "status"})

	// OverdueRepayments is the number of unpaid installments past their due date
	OverdueRepayments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quest_overdue_repayments",
		Help: "The number of unpaid repayments past due date at the last scan",
	})

	// ExpiredTokensPurgedTotal counts refresh tokens removed by the cleanup job
	ExpiredTokensPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quest_expired_refresh_tokens_purged_total",
		Help: "The total number of expired refresh tokens deleted",
	})
)

// Outcome labels
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Outcome maps an error to a status label
func Outcome(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}

// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasma_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fantasma_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fantasma_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasma_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// OIDC Protocol Metrics

	AuthorizeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasma_authorize_requests_total",
			Help: "Total number of /authorize requests",
		},
		[]string{"response_type", "outcome"}, // outcome: "consent_required", "error"
	)

	TokenIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasma_tokens_issued_total",
			Help: "Total number of tokens issued by grant type",
		},
		[]string{"grant_type", "token_type"}, // token_type: "access", "refresh", "id"
	)

	TokenGrantErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasma_token_grant_errors_total",
			Help: "Total number of /token errors by grant type and reason",
		},
		[]string{"grant_type", "error"},
	)

	RefreshTokenReuseDetectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fantasma_refresh_token_reuse_detected_total",
			Help: "Total number of refresh-token-chain revocations from reuse of a rotated token",
		},
	)

	// Proof Pipeline Metrics

	ProofJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasma_proof_jobs_total",
			Help: "Total number of proof jobs by circuit and terminal state",
		},
		[]string{"circuit_id", "state"}, // state: "verified", "failed"
	)

	ProofJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fantasma_proof_job_duration_seconds",
			Help:    "Duration from proof job enqueue to terminal state, in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"circuit_id"},
	)

	ProofJobsReclaimedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasma_proof_jobs_reclaimed_total",
			Help: "Total number of stale pending proof jobs re-enqueued or failed by the reclaimer",
		},
		[]string{"outcome"}, // "re_enqueued", "witness_lost"
	)

	ProofQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fantasma_proof_queue_depth",
			Help: "Current number of proof jobs waiting in the orchestrator queue",
		},
	)

	// Nullifier Metrics

	NullifierChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasma_nullifier_checks_total",
			Help: "Total number of nullifier uniqueness checks by domain and outcome",
		},
		[]string{"domain", "outcome"}, // outcome: "unique", "duplicate"
	)

	// Circuit Breaker Metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fantasma_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasma_circuit_breaker_requests_total",
			Help: "Total number of requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	// Admin Surface Metrics

	AdminOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasma_admin_operations_total",
			Help: "Total number of admin surface mutations by resource and action",
		},
		[]string{"resource", "action", "outcome"}, // resource: "client", "issuer"
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a rate limit rejection for an endpoint.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordAuthorizeRequest records an /authorize outcome.
func RecordAuthorizeRequest(responseType, outcome string) {
	AuthorizeRequestsTotal.WithLabelValues(responseType, outcome).Inc()
}

// RecordTokenIssued records a token issuance by grant and token type.
func RecordTokenIssued(grantType, tokenType string) {
	TokenIssuedTotal.WithLabelValues(grantType, tokenType).Inc()
}

// RecordTokenGrantError records a /token failure by grant type and reason.
func RecordTokenGrantError(grantType, errorCode string) {
	TokenGrantErrorsTotal.WithLabelValues(grantType, errorCode).Inc()
}

// RecordRefreshTokenReuse records detection of a reused, already-rotated
// refresh token, which revokes its whole chain.
func RecordRefreshTokenReuse() {
	RefreshTokenReuseDetectedTotal.Inc()
}

// RecordProofJob records a proof job reaching a terminal state.
func RecordProofJob(circuitID, state string, duration time.Duration) {
	ProofJobsTotal.WithLabelValues(circuitID, state).Inc()
	ProofJobDuration.WithLabelValues(circuitID).Observe(duration.Seconds())
}

// RecordProofJobReclaimed records the reclaimer acting on a stale job.
func RecordProofJobReclaimed(outcome string) {
	ProofJobsReclaimedTotal.WithLabelValues(outcome).Inc()
}

// SetProofQueueDepth sets the current proof orchestrator queue depth.
func SetProofQueueDepth(depth int) {
	ProofQueueDepth.Set(float64(depth))
}

// RecordNullifierCheck records a nullifier uniqueness check outcome.
func RecordNullifierCheck(domain string, unique bool) {
	outcome := "duplicate"
	if unique {
		outcome = "unique"
	}
	NullifierChecksTotal.WithLabelValues(domain, outcome).Inc()
}

// SetCircuitBreakerState sets a named circuit breaker's current state.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerRequest records a circuit-breaker-guarded call outcome.
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequestsTotal.WithLabelValues(name, result).Inc()
}

// RecordAdminOperation records an admin surface mutation.
func RecordAdminOperation(resource, action string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	AdminOperationsTotal.WithLabelValues(resource, action, outcome).Inc()
}

// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

/*
Package metrics provides Prometheus instrumentation for Fantasma's HTTP
surface, OIDC protocol flows, proof pipeline, and admin surface.

# Metrics Endpoint

Metrics are exposed at /metrics via promhttp, scraped by Prometheus on
the usual pull model:

	curl http://localhost:8443/metrics

# Available Metrics

HTTP:
  - fantasma_api_requests_total{method,endpoint,status_code}
  - fantasma_api_request_duration_seconds{method,endpoint}
  - fantasma_api_active_requests
  - fantasma_api_rate_limit_hits_total{endpoint}

OIDC protocol:
  - fantasma_authorize_requests_total{response_type,outcome}
  - fantasma_tokens_issued_total{grant_type,token_type}
  - fantasma_token_grant_errors_total{grant_type,error}
  - fantasma_refresh_token_reuse_detected_total

Proof pipeline:
  - fantasma_proof_jobs_total{circuit_id,state}
  - fantasma_proof_job_duration_seconds{circuit_id}
  - fantasma_proof_jobs_reclaimed_total{outcome}
  - fantasma_proof_queue_depth

Nullifier:
  - fantasma_nullifier_checks_total{domain,outcome}

Circuit breaker:
  - fantasma_circuit_breaker_state{name}
  - fantasma_circuit_breaker_requests_total{name,result}

Admin surface:
  - fantasma_admin_operations_total{resource,action,outcome}

# Cardinality

Endpoint labels use chi's route pattern (e.g. "/admin/clients/{client_id}"),
not the raw request path, to keep series counts bounded regardless of how
many clients or issuers exist.

See Also:

  - internal/middleware: PrometheusMetrics middleware that drives these
  - internal/proof: proof orchestrator, the source of the proof metrics
*/
package metrics

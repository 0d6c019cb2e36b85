// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

/*
Package middleware provides chi-compatible HTTP middleware: gzip
compression, per-endpoint latency tracking, and Prometheus request
instrumentation. Request ID propagation and CORS/rate-limiting live in
internal/api's ChiMiddleware instead, since those need access to chi's
routing context.

Usage:

	r.Use(middleware.Compression)
	r.Use(middleware.PrometheusMetrics)

	perf := middleware.NewPerformanceMonitor(1000)
	r.Use(perf.Middleware)

See Also:

  - internal/api: chi router assembly and request ID/CORS middleware
  - internal/metrics: Prometheus metric definitions
*/
package middleware

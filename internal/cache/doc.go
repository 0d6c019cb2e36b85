// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

/*
Package cache provides thread-safe in-memory caching with TTL support.

Fantasma's /.well-known/openid-configuration and /jwks endpoints are
read-heavy and near-static between key rotations and issuer
reconfiguration, so internal/oidc caches their serialized JSON bodies
here rather than re-encoding on every relying-party request.

# Overview

The cache provides:
  - Thread-safe concurrent access (sync.RWMutex)
  - Time-to-live (TTL) expiration for automatic cleanup
  - Simple key-value storage with any value type (interface{})
  - Lazy expiration checking (on Get operations) plus a background
    cleanup goroutine
  - Zero external dependencies (stdlib only)

# Usage Example

	c := cache.New(time.Minute)

	if body, ok := c.Get("oidc:discovery"); ok {
	    w.Write(body.([]byte))
	    return
	}

	body, _ := json.Marshal(doc)
	c.Set("oidc:discovery", body)
	w.Write(body)

# Cache Invalidation

  - TTL-based expiration (automatic, checked lazily on Get, swept
    periodically by a background goroutine)
  - Clear() or Delete(key) for manual invalidation — not currently
    needed by internal/oidc since a short TTL already bounds staleness
    across a key rotation or issuer URL change

# Thread Safety

All cache methods are thread-safe using sync.RWMutex. Multiple
goroutines can safely access the cache concurrently.

# Limitations

No maximum size limit and no LRU eviction: acceptable here since the
only caller stores a handful of fixed-key documents, not a
caller-parameterized working set.

# See Also

  - internal/oidc: discovery/JWKS document caching
*/
package cache

// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

// Package api provides HTTP handlers for the Fantasma identity provider.
//
// errors.go - Common API error definitions
//
// This file contains sentinel errors for common API error conditions.
package api

import "errors"

// Common API errors
var (
	// ErrClientNotFound indicates the requesting OAuth client is unknown.
	ErrClientNotFound = errors.New("client not found")

	// ErrRedirectURIMismatch indicates the redirect_uri does not match a registered URI.
	ErrRedirectURIMismatch = errors.New("redirect_uri does not match registered client")

	// ErrInvalidGrant indicates an authorization code or refresh token is invalid, expired, or already redeemed.
	ErrInvalidGrant = errors.New("invalid_grant")
)

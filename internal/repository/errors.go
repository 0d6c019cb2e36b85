// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup by key finds nothing.
	ErrNotFound = errors.New("repository: not found")
	// ErrAlreadyExists is returned by insert operations on a duplicate key.
	ErrAlreadyExists = errors.New("repository: already exists")
	// ErrAlreadyUsed is returned by redeem_once when a code was already
	// redeemed — the one distinguishable outcome callers must be able to
	// detect.
	ErrAlreadyUsed = errors.New("repository: already used")
	// ErrExpired is returned when a code or token is found but past its TTL.
	ErrExpired = errors.New("repository: expired")
)

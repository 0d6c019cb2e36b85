// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package main

import (
	"context"
	"time"

	"github.com/fantasma/fantasma/internal/logging"
	"github.com/fantasma/fantasma/internal/repository"
)

// gcService periodically runs BadgerDB's value-log garbage collection as a
// supervised proving-layer service. RunValueLogGC returning badger's
// ErrNoRewrite is the expected steady-state result and is not logged as a
// failure.
type gcService struct {
	store        *repository.Store
	interval     time.Duration
	discardRatio float64
}

func newGCService(store *repository.Store, interval time.Duration, discardRatio float64) *gcService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if discardRatio <= 0 {
		discardRatio = 0.5
	}
	return &gcService{store: store, interval: interval, discardRatio: discardRatio}
}

func (g *gcService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := g.store.RunGC(g.discardRatio); err != nil {
				logging.Debug().Err(err).Msg("badger value-log gc: nothing to reclaim")
			}
		}
	}
}

func (g *gcService) String() string {
	return "repository-gc"
}

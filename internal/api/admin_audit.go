// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fantasma/fantasma/internal/audit"
	"github.com/fantasma/fantasma/internal/repository"
)

// queryAudit implements the read-only audit log query surface: every
// filter dimension audit.QueryFilter exposes is accepted as a query
// parameter, with limit/offset clamped the same way every other
// paginated admin listing is.
func (h *AdminHandler) queryAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := h.paginationParams(r)

	filter := audit.QueryFilter{
		ActorID:    q.Get("actor_id"),
		ActorType:  q.Get("actor_type"),
		TargetID:   q.Get("target_id"),
		TargetType: q.Get("target_type"),
		SourceIP:   q.Get("source_ip"),
		SearchText: q.Get("search"),
		Limit:      limit,
		Offset:     offset,
	}
	if v := q.Get("type"); v != "" {
		filter.Types = []audit.EventType{audit.EventType(v)}
	}
	if v := q.Get("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartTime = &t
		}
	}
	if v := q.Get("until"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndTime = &t
		}
	}

	events, err := h.auditStore.Query(r.Context(), filter)
	if err != nil {
		WriteDatabaseError(w, r, err)
		return
	}
	total, err := h.auditStore.Count(r.Context(), filter)
	if err != nil {
		WriteDatabaseError(w, r, err)
		return
	}

	WriteSuccess(w, r, paginatedEnvelope{Data: events, Total: int(total), Limit: limit, Offset: offset})
}

func (h *AdminHandler) getAuditEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event_id")
	event, err := h.auditStore.Get(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteNotFound(w, r, "audit event not found")
			return
		}
		WriteDatabaseError(w, r, err)
		return
	}
	WriteSuccess(w, r, event)
}

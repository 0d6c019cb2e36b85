// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package oidc

import (
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fantasma/fantasma/internal/audit"
	"github.com/fantasma/fantasma/internal/cache"
	"github.com/fantasma/fantasma/internal/crypto"
	"github.com/fantasma/fantasma/internal/nullifier"
	"github.com/fantasma/fantasma/internal/proof"
	"github.com/fantasma/fantasma/internal/repository"
	"github.com/fantasma/fantasma/internal/scope"
)

// docCacheTTL bounds how long a served discovery/JWKS document may lag a
// key rotation or issuer URL change; both are rare operator actions, so a
// short TTL trades a bounded staleness window for avoiding a JSON encode
// on every request from a relying party's metadata cache warmup.
const docCacheTTL = time.Minute

// Config is the subset of the issuer and flow-timeout settings the engine
// needs, deliberately narrower than config.Config so packages can wire it
// up without importing internal/config.
type Config struct {
	IssuerURL       string
	PseudonymLength int

	ConsentTimeout  time.Duration
	AuthCodeTTL     time.Duration
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	ProofWaitTimeout time.Duration
}

// Handler implements the OIDC protocol engine's HTTP surface. It holds
// every collaborator the state machine needs and is safe for concurrent
// use by multiple in-flight requests.
type Handler struct {
	cfg Config

	store      *repository.Store
	orch       *proof.Orchestrator
	nullEngine *nullifier.Engine
	signer     *crypto.Signer
	auditLog   *audit.Logger
	docCache   *cache.Cache

	now func() time.Time

	mu      sync.Mutex
	pending map[string]*pendingAuth
}

// pendingAuth is the server-side record of an AwaitingConsent flow, keyed
// by an opaque request id handed to the consent page as a hidden field.
// It is the in-memory analogue of a callback_id keyed to (auth request,
// origin), collapsing what would otherwise be a cyclic session reference.
type pendingAuth struct {
	ID                  string
	ClientID            string
	RedirectURI         string
	Scopes              []string
	Claims              []scope.ClaimRequest
	State               string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
	CreatedAt           time.Time
	ExpiresAt           time.Time
}

// New constructs a Handler and starts its background expired-consent
// sweeper. signer and orch must be non-nil; store backs every repository
// lookup the protocol engine performs.
func New(cfg Config, store *repository.Store, orch *proof.Orchestrator, signer *crypto.Signer, auditLog *audit.Logger) *Handler {
	h := &Handler{
		cfg:        cfg,
		store:      store,
		orch:       orch,
		nullEngine: nullifier.NewEngine(store),
		signer:     signer,
		auditLog:   auditLog,
		docCache:   cache.New(docCacheTTL),
		now:        time.Now,
		pending:    make(map[string]*pendingAuth),
	}
	go h.sweepExpiredPending()
	return h
}

// Routes mounts the protocol engine's endpoints onto a fresh chi.Router,
// for internal/api to mount at the server root.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/.well-known/openid-configuration", h.handleDiscovery)
	r.Get("/jwks", h.handleJWKS)
	r.Get("/authorize", h.handleAuthorize)
	r.Post("/authorize/consent", h.handleConsent)
	r.Post("/token", h.handleToken)
	r.Get("/userinfo", h.handleUserinfo)
	r.Get("/proofs/{proof_id}", h.handleGetProof)

	return r
}

// sweepExpiredPending periodically evicts AwaitingConsent entries whose
// ConsentTimeout has elapsed, so an abandoned flow does not leak memory.
func (h *Handler) sweepExpiredPending() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := h.now()
		h.mu.Lock()
		for id, p := range h.pending {
			if now.After(p.ExpiresAt) {
				delete(h.pending, id)
			}
		}
		h.mu.Unlock()
	}
}

// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package oidc

import (
	"context"
	"encoding/base64"
	"fmt"
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fantasma/fantasma/internal/audit"
	"github.com/fantasma/fantasma/internal/nullifier"
	"github.com/fantasma/fantasma/internal/proof"
	"github.com/fantasma/fantasma/internal/pseudonym"
	"github.com/fantasma/fantasma/internal/repository"
)

// handleConsent implements POST /authorize/consent: on approve it drives
// every requested claim through the proof pipeline, enforces nullifier
// uniqueness, and mints the authorization code; on deny it redirects with
// access_denied (AwaitingConsent -> ProofsPending -> CodeIssued, or the
// access_denied error branch).
func (h *Handler) handleConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	src := audit.SourceFromRequest(r)

	if err := r.ParseForm(); err != nil {
		writeErrorPage(w, http.StatusBadRequest, "malformed consent form")
		return
	}

	reqID := r.FormValue("request_id")
	h.mu.Lock()
	p, ok := h.pending[reqID]
	if ok {
		delete(h.pending, reqID)
	}
	h.mu.Unlock()

	if !ok {
		writeErrorPage(w, http.StatusBadRequest, "authorization request expired or unknown")
		return
	}
	if h.now().After(p.ExpiresAt) {
		redirectWithError(w, r, p.RedirectURI, errAccessDenied, "consent window expired", p.State)
		return
	}

	if r.FormValue("action") != "approve" {
		h.auditLog.LogAuthorizeOutcome(ctx, src, audit.EventTypeAuthorizeDenied, p.ClientID, "user denied consent")
		redirectWithError(w, r, p.RedirectURI, errAccessDenied, "user denied the request", p.State)
		return
	}

	subject := r.FormValue("subject")
	pseudonymLen := h.cfg.PseudonymLength
	var pseudonymErr error
	if pseudonymLen > 0 {
		pseudonymErr = pseudonym.ValidateLength(subject, pseudonymLen)
	} else {
		pseudonymErr = pseudonym.Validate(subject)
	}
	if pseudonymErr != nil {
		h.auditLog.LogAuthorizeOutcome(ctx, src, audit.EventTypeAuthorizeError, p.ClientID, pseudonymErr.Error())
		redirectWithError(w, r, p.RedirectURI, errInvalidRequest, "malformed subject pseudonym", p.State)
		return
	}

	entries, failErr := h.runProofPipeline(ctx, r, p)
	if failErr != nil {
		h.auditLog.LogAuthorizeOutcome(ctx, src, audit.EventTypeAuthorizeError, p.ClientID, failErr.Error())
		redirectWithError(w, r, p.RedirectURI, errInvalidRequest, failErr.Error(), p.State)
		return
	}

	chainID := uuid.NewString()
	code, err := randomID()
	if err != nil {
		writeErrorPage(w, http.StatusInternalServerError, "failed to mint authorization code")
		return
	}

	now := h.now()
	ac := &repository.AuthCode{
		Code:                code,
		ClientID:            p.ClientID,
		RedirectURI:         p.RedirectURI,
		Scopes:              p.Scopes,
		Nonce:               p.Nonce,
		CodeChallenge:       p.CodeChallenge,
		CodeChallengeMethod: p.CodeChallengeMethod,
		Subject:             subject,
		ZKClaims:            entries,
		CreatedAt:           now,
		ExpiresAt:           now.Add(h.cfg.AuthCodeTTL),
		ChainID:             chainID,
	}
	if err := h.store.InsertAuthCode(ctx, ac); err != nil {
		h.auditLog.LogAuthorizeOutcome(ctx, src, audit.EventTypeAuthorizeError, p.ClientID, "failed to mint code")
		writeErrorPage(w, http.StatusInternalServerError, "failed to mint authorization code")
		return
	}

	h.auditLog.LogAuthorizeOutcome(ctx, src, audit.EventTypeAuthorizeApproved, p.ClientID, "")
	redirectApproved(w, r, p.RedirectURI, code, p.State)
}

// runProofPipeline submits every requested claim as a proof job, waits for
// each to reach a terminal state, and — only once every proof is Complete
// and Verified — records its nullifier. A replay on any single claim
// aborts the whole flow without an authorization code being minted: a
// second /authorize reusing the same nullifier fails replay_detected with
// no code minted.
func (h *Handler) runProofPipeline(ctx context.Context, r *http.Request, p *pendingAuth) ([]repository.ZKClaimEntry, error) {
	type submittedJob struct {
		proofID string
		claim   scopeClaim
	}

	var jobs []submittedJob
	for i, c := range p.Claims {
		witnessB64 := r.FormValue(fmt.Sprintf("witness_%d", i))
		witness, err := base64.StdEncoding.DecodeString(witnessB64)
		if err != nil {
			return nil, fmt.Errorf("malformed witness for claim %d: %w", i, err)
		}

		proofID, err := h.orch.Submit(ctx, proof.Witness{
			CircuitID:    c.CircuitID,
			PublicInputs: c.Parameters,
			Private:      witness,
		})
		if err != nil {
			return nil, fmt.Errorf("submit proof for claim %d: %w", i, err)
		}
		h.auditLog.LogProofSubmitted(ctx, proofID, c.CircuitID)
		jobs = append(jobs, submittedJob{proofID: proofID, claim: scopeClaim{kind: string(c.Kind), circuitID: c.CircuitID, parameters: c.Parameters, formIndex: i}})
	}

	const pollInterval = 200 * time.Millisecond
	attempts := int(h.cfg.ProofWaitTimeout / pollInterval)
	if attempts < 1 {
		attempts = 1
	}

	var entries []repository.ZKClaimEntry
	for _, job := range jobs {
		st, err := h.orch.Wait(ctx, job.proofID, pollInterval, attempts)
		if err != nil {
			return nil, fmt.Errorf("proof wait failed: %w", err)
		}
		if st.State != string(repository.ProofComplete) || !st.Verified {
			h.auditLog.LogProofFailed(ctx, job.proofID, job.claim.circuitID, st.Error)
			return nil, fmt.Errorf("proof for %s was not verified", job.claim.kind)
		}
		h.auditLog.LogProofVerified(ctx, job.proofID, job.claim.circuitID)

		nullifierHex := r.FormValue(fmt.Sprintf("nullifier_%d", job.claim.formIndex))
		nv, ok := new(big.Int).SetString(nullifierHex, 16)
		if !ok {
			return nil, fmt.Errorf("malformed nullifier for claim %q", job.claim.kind)
		}
		if err := h.nullEngine.Record(ctx, nv, p.ClientID, job.claim.circuitID); err != nil {
			if errors.Is(err, nullifier.ErrReplayDetected) {
				h.auditLog.LogNullifierReplay(ctx, audit.SourceFromRequest(r), p.ClientID)
				return nil, fmt.Errorf("replay_detected")
			}
			return nil, fmt.Errorf("record nullifier: %w", err)
		}
		h.auditLog.LogNullifierInserted(ctx, p.ClientID)

		proofRow, err := h.orch.Status(ctx, job.proofID)
		if err != nil {
			return nil, fmt.Errorf("load proof status: %w", err)
		}

		entries = append(entries, repository.ZKClaimEntry{
			Kind:       job.claim.kind,
			Parameters: job.claim.parameters,
			ProofID:    job.proofID,
			ProofHash:  proofRow.ProofHash,
			CircuitID:  job.claim.circuitID,
			VerifiedAt: h.now(),
		})
	}

	return entries, nil
}

// scopeClaim is a flattened view of a scope.ClaimRequest carrying the form
// index it was rendered at, used to read back the wallet-supplied witness
// and nullifier fields the consent page collected for it.
type scopeClaim struct {
	kind       string
	circuitID  string
	parameters map[string]any
	formIndex  int
}

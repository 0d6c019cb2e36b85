// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package oidc

import (
	"html/template"
	"net/http"

	"github.com/fantasma/fantasma/internal/logging"
)

// consentTemplate renders the wallet consent page: one row per requested
// zero-knowledge claim, a field for the wallet's pseudonym and the
// per-claim witness/nullifier material it supplies, and approve/deny
// submit buttons that both POST to /authorize/consent.
var consentTemplate = template.Must(template.New("consent").Parse(`<!DOCTYPE html>
<html>
<head><title>Authorize {{.ClientName}}</title></head>
<body>
<h1>{{.ClientName}} requests access</h1>
<p>The following claims will be proven without revealing your underlying data:</p>
<ul>
{{range .Claims}}<li>{{.Kind}} ({{.CircuitID}})</li>
{{end}}</ul>
<form method="POST" action="/authorize/consent">
<input type="hidden" name="request_id" value="{{.RequestID}}">
<label>Wallet pseudonym (sub): <input type="text" name="subject" required></label><br>
{{range $i, $c := .Claims}}
<fieldset>
<legend>{{$c.Kind}}</legend>
<input type="hidden" name="circuit_id_{{$i}}" value="{{$c.CircuitID}}">
<label>Witness (base64): <input type="text" name="witness_{{$i}}"></label><br>
<label>Nullifier (hex): <input type="text" name="nullifier_{{$i}}"></label>
</fieldset>
{{end}}
<button type="submit" name="action" value="approve">Approve</button>
<button type="submit" name="action" value="deny">Deny</button>
</form>
</body>
</html>`))

type consentPageData struct {
	ClientName string
	RequestID  string
	Claims     []consentClaimView
}

type consentClaimView struct {
	Kind      string
	CircuitID string
}

func renderConsentPage(w http.ResponseWriter, clientName string, p *pendingAuth) {
	data := consentPageData{
		ClientName: clientName,
		RequestID:  p.ID,
	}
	for _, c := range p.Claims {
		data.Claims = append(data.Claims, consentClaimView{Kind: string(c.Kind), CircuitID: c.CircuitID})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := consentTemplate.Execute(w, data); err != nil {
		logging.Error().Err(err).Msg("failed to render consent page")
	}
}

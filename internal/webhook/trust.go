// Package webhook implements the per-provider webhook ingestion gateway:
// trust verification, event-key computation, tenant-scope resolution, and
// dispatch into the event store and projection engine (§4.6).
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TrustMode names the per-provider trust model a request was verified
// (or rejected) under.
type TrustMode string

const (
	TrustHMACSigned      TrustMode = "hmac_signed"
	TrustReplayWindow    TrustMode = "replay_window_signed"
	TrustUnsignedOrigin  TrustMode = "unsigned_origin"
)

// VerifyResult carries the outcome of a trust check, including enough
// detail to populate the `_ingestion` payload sub-record regardless of
// whether verification succeeded.
type VerifyResult struct {
	Mode             TrustMode
	Accepted         bool
	Reason           string // empty on clean accept; else one of the §4.6 reason labels
	Synchronous      bool   // true => projection runs inline, false => scheduled async
	HTTPStatus       int    // status to return the caller when !Accepted
}

// HMACPolicy implements the HMAC-signed trust model used by email/LinkedIn
// sequencers (Smartlead, HeyReach). A configured secret requires a valid
// signature; an unconfigured secret accepts unconditionally (deployment
// choice, §4.6).
type HMACPolicy struct {
	Secret        string
	SignatureHeader string // e.g. "X-Smartlead-Signature"
}

func (p HMACPolicy) Verify(r *http.Request, rawBody []byte) VerifyResult {
	if p.Secret == "" {
		return VerifyResult{Mode: TrustHMACSigned, Accepted: true, Synchronous: true}
	}
	sig := r.Header.Get(p.SignatureHeader)
	if sig == "" {
		return VerifyResult{Mode: TrustHMACSigned, Accepted: false, Reason: "missing_signature", HTTPStatus: http.StatusUnauthorized}
	}
	expected := hmacHex(p.Secret, rawBody)
	if !constantTimeEqualHex(sig, expected) {
		return VerifyResult{Mode: TrustHMACSigned, Accepted: false, Reason: "invalid_signature", HTTPStatus: http.StatusUnauthorized}
	}
	return VerifyResult{Mode: TrustHMACSigned, Accepted: true, Synchronous: true}
}

// ReplayWindowPolicy implements the Lob-style replay-window-signed trust
// model. In enforce mode, verification failures are 401/503; in
// permissive_audit mode every failure is accepted but recorded under a
// distinct metric reason.
type ReplayWindowPolicy struct {
	Secret            string
	Mode              string // "enforce" or "permissive_audit"
	ToleranceSeconds  int
	SignatureHeader   string // e.g. "Lob-Signature"
	TimestampHeader   string // e.g. "Lob-Signature-Timestamp"
	now               func() time.Time
}

func NewReplayWindowPolicy(secret, mode string, toleranceSeconds int) *ReplayWindowPolicy {
	return &ReplayWindowPolicy{
		Secret:           secret,
		Mode:             mode,
		ToleranceSeconds: toleranceSeconds,
		SignatureHeader:  "Lob-Signature",
		TimestampHeader:  "Lob-Signature-Timestamp",
		now:              time.Now,
	}
}

func (p *ReplayWindowPolicy) Verify(r *http.Request, rawBody []byte) VerifyResult {
	enforce := p.Mode == "enforce"

	if p.Secret == "" {
		if enforce {
			return VerifyResult{Mode: TrustReplayWindow, Accepted: false, Reason: "secret_not_configured", HTTPStatus: http.StatusServiceUnavailable}
		}
		return p.auditAccept("secret_not_configured")
	}

	sig := r.Header.Get(p.SignatureHeader)
	if sig == "" {
		if enforce {
			return VerifyResult{Mode: TrustReplayWindow, Accepted: false, Reason: "missing_signature", HTTPStatus: http.StatusUnauthorized}
		}
		return p.auditAccept("missing_signature")
	}

	ts := r.Header.Get(p.TimestampHeader)
	if ts == "" {
		if enforce {
			return VerifyResult{Mode: TrustReplayWindow, Accepted: false, Reason: "missing_timestamp", HTTPStatus: http.StatusUnauthorized}
		}
		return p.auditAccept("missing_timestamp")
	}

	tsSec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		if enforce {
			return VerifyResult{Mode: TrustReplayWindow, Accepted: false, Reason: "invalid_timestamp", HTTPStatus: http.StatusUnauthorized}
		}
		return p.auditAccept("invalid_timestamp")
	}

	nowFn := p.now
	if nowFn == nil {
		nowFn = time.Now
	}
	age := nowFn().Unix() - tsSec
	if age < 0 {
		age = -age
	}
	if int(age) > p.ToleranceSeconds {
		if enforce {
			return VerifyResult{Mode: TrustReplayWindow, Accepted: false, Reason: "stale_timestamp", HTTPStatus: http.StatusUnauthorized}
		}
		return p.auditAccept("stale_timestamp")
	}

	signed := ts + "." + string(rawBody)
	expected := hmacHex(p.Secret, []byte(signed))
	if !constantTimeEqualHex(sig, expected) {
		if enforce {
			return VerifyResult{Mode: TrustReplayWindow, Accepted: false, Reason: "invalid_signature", HTTPStatus: http.StatusUnauthorized}
		}
		return p.auditAccept("invalid_signature")
	}

	return VerifyResult{Mode: TrustReplayWindow, Accepted: true, Synchronous: true}
}

func (p *ReplayWindowPolicy) auditAccept(reason string) VerifyResult {
	return VerifyResult{Mode: TrustReplayWindow, Accepted: true, Reason: reason, Synchronous: true}
}

// UnsignedOriginPolicy implements the path-token + origin-allowlist trust
// model used by providers with no request signing (EmailBison).
type UnsignedOriginPolicy struct {
	PathToken       string
	AllowedOrigins  []string
}

func (p UnsignedOriginPolicy) Verify(r *http.Request, pathToken string) VerifyResult {
	if p.PathToken == "" || subtle.ConstantTimeCompare([]byte(pathToken), []byte(p.PathToken)) != 1 {
		return VerifyResult{Mode: TrustUnsignedOrigin, Accepted: false, Reason: "path_token_mismatch", HTTPStatus: http.StatusUnauthorized}
	}
	if len(p.AllowedOrigins) > 0 {
		host := requestOriginHost(r)
		if host == "" {
			return VerifyResult{Mode: TrustUnsignedOrigin, Accepted: false, Reason: "missing_origin", HTTPStatus: http.StatusUnauthorized}
		}
		if !originAllowed(host, p.AllowedOrigins) {
			return VerifyResult{Mode: TrustUnsignedOrigin, Accepted: false, Reason: "origin_not_allowed", HTTPStatus: http.StatusUnauthorized}
		}
	}
	return VerifyResult{Mode: TrustUnsignedOrigin, Accepted: true, Synchronous: false}
}

// requestOriginHost extracts the lowercased hostname a webhook request
// claims to originate from, preferring Origin/Referer (parsed as URLs) over
// the bare X-Forwarded-Host/Host headers.
func requestOriginHost(r *http.Request) string {
	for _, candidate := range []string{r.Header.Get("Origin"), r.Header.Get("Referer")} {
		if candidate == "" {
			continue
		}
		if u, err := url.Parse(candidate); err == nil && u.Hostname() != "" {
			return strings.ToLower(u.Hostname())
		}
	}
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		host, _, err := net.SplitHostPort(first)
		if err != nil {
			host = first
		}
		return strings.ToLower(host)
	}
	if r.Host != "" {
		host, _, err := net.SplitHostPort(r.Host)
		if err != nil {
			host = r.Host
		}
		return strings.ToLower(host)
	}
	return ""
}

// originAllowed reports whether host exactly matches an allowlist entry, or
// is a subdomain of one (e.g. "app.example.com" matches "example.com").
// Substring matching is deliberately not used: it would let "evil-example.com"
// or "notexample.com" pass an allowlist entry of "example.com".
func originAllowed(host string, allowed []string) bool {
	for _, a := range allowed {
		a = strings.ToLower(a)
		if host == a || strings.HasSuffix(host, "."+a) {
			return true
		}
	}
	return false
}

func hmacHex(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func constantTimeEqualHex(a, b string) bool {
	da, errA := hex.DecodeString(a)
	db, errB := hex.DecodeString(b)
	if errA != nil || errB != nil {
		return false
	}
	return subtle.ConstantTimeCompare(da, db) == 1
}

// WebhookAuthFailed renders the {type: webhook_auth_failed, reason, ...}
// detail body used by the unsigned-origin path (§4.6).
type WebhookAuthFailed struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func NewWebhookAuthFailed(reason string) WebhookAuthFailed {
	return WebhookAuthFailed{Type: "webhook_auth_failed", Reason: reason}
}

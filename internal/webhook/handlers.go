package webhook

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers registers one ingestion route per provider, each bound to its
// own trust policy (§4.6).
type Handlers struct {
	gateway *Gateway

	smartleadPolicy  HMACPolicy
	heyreachPolicy   HMACPolicy
	lobPolicy        *ReplayWindowPolicy
	emailbisonPolicy UnsignedOriginPolicy
}

func NewHandlers(gateway *Gateway, smartleadSecret, heyreachSecret string, lobPolicy *ReplayWindowPolicy, emailbisonPathToken string, emailbisonAllowedOrigins []string) *Handlers {
	return &Handlers{
		gateway:          gateway,
		smartleadPolicy:  HMACPolicy{Secret: smartleadSecret, SignatureHeader: "X-Smartlead-Signature"},
		heyreachPolicy:   HMACPolicy{Secret: heyreachSecret, SignatureHeader: "X-Heyreach-Signature"},
		lobPolicy:        lobPolicy,
		emailbisonPolicy: UnsignedOriginPolicy{PathToken: emailbisonPathToken, AllowedOrigins: emailbisonAllowedOrigins},
	}
}

// RegisterRoutes mounts one POST route per provider under /webhooks.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/smartlead", h.handleSmartlead)
	r.Post("/webhooks/heyreach", h.handleHeyReach)
	r.Post("/webhooks/lob", h.handleLob)
	r.Post("/webhooks/emailbison/{pathToken}", h.handleEmailBison)
}

func (h *Handlers) handleSmartlead(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, h.gateway.Ingest(r.Context(), r, "smartlead", func(body []byte) VerifyResult {
		return h.smartleadPolicy.Verify(withBody(r, body), body)
	}))
}

func (h *Handlers) handleHeyReach(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, h.gateway.Ingest(r.Context(), r, "heyreach", func(body []byte) VerifyResult {
		return h.heyreachPolicy.Verify(withBody(r, body), body)
	}))
}

func (h *Handlers) handleLob(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, h.gateway.Ingest(r.Context(), r, "lob", func(body []byte) VerifyResult {
		return h.lobPolicy.Verify(withBody(r, body), body)
	}))
}

func (h *Handlers) handleEmailBison(w http.ResponseWriter, r *http.Request) {
	pathToken := chi.URLParam(r, "pathToken")
	h.writeResult(w, h.gateway.Ingest(r.Context(), r, "emailbison", func(body []byte) VerifyResult {
		return h.emailbisonPolicy.Verify(r, pathToken)
	}))
}

func (h *Handlers) writeResult(w http.ResponseWriter, res Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.HTTPStatus)
	_ = json.NewEncoder(w).Encode(res.Body)
}

// withBody returns r with its header set intact; the raw body has already
// been drained by Gateway.Ingest via io.ReadAll, so signature verification
// reads the header set off the original request object, not the body.
func withBody(r *http.Request, body []byte) *http.Request {
	r.Body = io.NopCloser(bytes.NewReader(body))
	return r
}

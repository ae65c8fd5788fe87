package service

import (
	"errors"
	"net/http"

	"github.com/ignite/outreach-gateway/internal/identity"
	"github.com/ignite/outreach-gateway/internal/pkg/httputil"
	"github.com/ignite/outreach-gateway/internal/providererr"
	"github.com/ignite/outreach-gateway/internal/repository"
)

// WriteError is the single translation point from a Domain Write Service
// error to an HTTP response (§4.12: "one httperr translation helper per
// route group, not ad hoc per handler"). It recognizes, in priority order:
// scope/identity sentinels, the provider-not-implemented shape, provider
// envelope errors, repository not-found, and falls back to 500.
func WriteError(w http.ResponseWriter, err error) {
	var notImpl *ProviderNotImplementedError
	if errors.As(err, &notImpl) {
		httputil.JSON(w, http.StatusNotImplemented, map[string]any{
			"type":       "provider_not_implemented",
			"capability": notImpl.Capability,
			"provider":   notImpl.Provider,
		})
		return
	}

	if errors.Is(err, ErrNoEntitlement) {
		httputil.JSON(w, http.StatusBadRequest, map[string]any{"type": "no_entitlement", "message": err.Error()})
		return
	}

	if errors.Is(err, identity.ErrScopeMismatch) || errors.Is(err, repository.ErrScopeMismatch) || errors.Is(err, repository.ErrNotFound) {
		httputil.JSON(w, http.StatusNotFound, map[string]any{"type": "not_found"})
		return
	}
	if errors.Is(err, identity.ErrForbidden) {
		httputil.JSON(w, http.StatusForbidden, map[string]any{"type": "forbidden"})
		return
	}
	if errors.Is(err, identity.ErrBadRequest) || errors.Is(err, identity.ErrCompanyIDRequired) {
		httputil.JSON(w, http.StatusBadRequest, map[string]any{"type": "bad_request", "message": err.Error()})
		return
	}

	var provErr *providererr.Error
	if errors.As(err, &provErr) {
		httputil.JSON(w, provErr.Category.HTTPStatus(), map[string]any{
			"type":     "provider_error",
			"provider": provErr.Provider,
			"category": string(provErr.Category),
			"message":  provErr.Message,
		})
		return
	}

	httputil.InternalError(w, err)
}

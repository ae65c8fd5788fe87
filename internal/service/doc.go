// Package service implements the Domain Write Services named in §4.11:
// user-facing mutations that authorize via identity.Resolve, resolve the
// tenant's provider entitlement, dispatch through a provider adapter under
// the providererr envelope, and upsert the local rows on success.
//
// Each sub-service follows the same five-step shape: authorize, resolve
// the entitled provider, call out, then upsert local state in that order.
package service

import "errors"

// ErrProviderNotImplemented is returned when a company's entitled provider
// for a capability has no adapter wired for the requested operation.
var ErrProviderNotImplemented = errors.New("service: provider not implemented for capability")

// ErrNoEntitlement is returned when the company has no active entitlement
// for the capability a write targets.
var ErrNoEntitlement = errors.New("service: no active entitlement for capability")

// ProviderNotImplementedError carries the 501 response shape named in
// §4.11 step 2.
type ProviderNotImplementedError struct {
	Capability string
	Provider   string
}

func (e *ProviderNotImplementedError) Error() string {
	return "service: provider not implemented: " + e.Provider + " (" + e.Capability + ")"
}

func (e *ProviderNotImplementedError) Unwrap() error { return ErrProviderNotImplemented }

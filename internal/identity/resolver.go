// Package identity resolves the (org, company) scope and role for a
// request, the first gate every domain write and admin route passes
// through (§4.4).
package identity

import (
	"errors"
	"net/http"
)

// Role is the caller's role within an organization.
type Role string

const (
	RoleSuperAdmin    Role = "super_admin"
	RoleOrgAdmin      Role = "org_admin"
	RoleCompanyAdmin  Role = "company_admin"
	RoleCompanyMember Role = "company_member"
)

// AuthContext is produced by the auth middleware upstream of every route
// handled here; the resolver never authenticates a caller itself, it only
// resolves scope from an already-trusted context.
type AuthContext struct {
	OrgID     string
	UserID    string
	Role      Role
	CompanyID *string // nil for an org-level caller
}

// ErrScopeMismatch signals the caller's company scope disagrees with the
// requested company_id — callers must render this as 404, never 403, so a
// cross-tenant probe cannot distinguish "wrong company" from "no such row"
// (§8 tenant isolation property).
var ErrScopeMismatch = errors.New("identity: scope mismatch")

// ErrForbidden signals a role that is not permitted to act at org level.
var ErrForbidden = errors.New("identity: forbidden")

// ErrBadRequest signals a self-contradictory scope request.
var ErrBadRequest = errors.New("identity: all_companies combined with company_id")

// ErrCompanyIDRequired signals an org-level caller made a request without
// company_id and without requesting all_companies — a client validation
// error, not a tenant-isolation probe, so it renders as 400/422.
var ErrCompanyIDRequired = errors.New("identity: company_id is required for org-level callers")

// Scope is the resolved effective company scope for a request.
type Scope struct {
	OrgID        string
	CompanyID    string // empty when AllCompanies is true
	AllCompanies bool
}

// Resolve computes the effective scope for a request given the caller's
// AuthContext and the company_id the request asked for (empty string if
// absent) and whether the endpoint allows all_companies=true.
//
//   - Caller has CompanyID: the request's companyID must match or be empty,
//     else ErrScopeMismatch (render 404).
//   - Caller has no CompanyID: only RoleOrgAdmin may act; a companyID is
//     required unless allCompanies is requested and the endpoint allows it.
//   - allCompanies combined with a non-empty companyID is always ErrBadRequest.
func Resolve(auth AuthContext, requestedCompanyID string, allCompanies, endpointAllowsAllCompanies bool) (Scope, error) {
	if allCompanies && requestedCompanyID != "" {
		return Scope{}, ErrBadRequest
	}

	if auth.CompanyID != nil {
		if requestedCompanyID != "" && requestedCompanyID != *auth.CompanyID {
			return Scope{}, ErrScopeMismatch
		}
		return Scope{OrgID: auth.OrgID, CompanyID: *auth.CompanyID}, nil
	}

	if auth.Role != RoleOrgAdmin {
		return Scope{}, ErrForbidden
	}
	if allCompanies {
		if !endpointAllowsAllCompanies {
			return Scope{}, ErrForbidden
		}
		return Scope{OrgID: auth.OrgID, AllCompanies: true}, nil
	}
	if requestedCompanyID == "" {
		return Scope{}, ErrCompanyIDRequired
	}
	return Scope{OrgID: auth.OrgID, CompanyID: requestedCompanyID}, nil
}

// HTTPStatus maps a resolver error onto the external status code. Scope
// mismatches render as 404 (never 403) so a cross-tenant probe cannot learn
// that the row exists under someone else's company; role violations at org
// level render as 403; malformed all_companies/company_id combinations and
// a missing company_id from an org-level caller are client errors and
// render as 400.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrScopeMismatch):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrCompanyIDRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

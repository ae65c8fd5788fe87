package identity

import (
	"errors"
	"net/http"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestResolveCompanyScopedCaller(t *testing.T) {
	auth := AuthContext{OrgID: "org-1", Role: RoleCompanyMember, CompanyID: strPtr("company-1")}

	scope, err := Resolve(auth, "", false, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if scope.OrgID != "org-1" || scope.CompanyID != "company-1" {
		t.Errorf("scope = %+v", scope)
	}
}

func TestResolveCompanyScopedCallerMismatchedCompanyID(t *testing.T) {
	auth := AuthContext{OrgID: "org-1", Role: RoleCompanyMember, CompanyID: strPtr("company-1")}
	_, err := Resolve(auth, "company-2", false, false)
	if !errors.Is(err, ErrScopeMismatch) {
		t.Errorf("err = %v, want ErrScopeMismatch", err)
	}
}

func TestResolveOrgAdminRequiresCompanyIDOrAllCompanies(t *testing.T) {
	auth := AuthContext{OrgID: "org-1", Role: RoleOrgAdmin}
	_, err := Resolve(auth, "", false, false)
	if !errors.Is(err, ErrCompanyIDRequired) {
		t.Errorf("err = %v, want ErrCompanyIDRequired", err)
	}
}

func TestResolveOrgAdminWithCompanyID(t *testing.T) {
	auth := AuthContext{OrgID: "org-1", Role: RoleOrgAdmin}
	scope, err := Resolve(auth, "company-9", false, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if scope.CompanyID != "company-9" {
		t.Errorf("scope = %+v", scope)
	}
}

func TestResolveOrgAdminAllCompaniesDisallowedByEndpoint(t *testing.T) {
	auth := AuthContext{OrgID: "org-1", Role: RoleOrgAdmin}
	_, err := Resolve(auth, "", true, false)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestResolveOrgAdminAllCompaniesAllowed(t *testing.T) {
	auth := AuthContext{OrgID: "org-1", Role: RoleOrgAdmin}
	scope, err := Resolve(auth, "", true, true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !scope.AllCompanies {
		t.Errorf("scope = %+v, want AllCompanies true", scope)
	}
}

func TestResolveNonOrgAdminCannotActAtOrgLevel(t *testing.T) {
	auth := AuthContext{OrgID: "org-1", Role: RoleCompanyMember}
	_, err := Resolve(auth, "company-1", false, false)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestResolveAllCompaniesWithCompanyIDIsBadRequest(t *testing.T) {
	auth := AuthContext{OrgID: "org-1", Role: RoleOrgAdmin}
	_, err := Resolve(auth, "company-1", true, true)
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("err = %v, want ErrBadRequest", err)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrScopeMismatch, http.StatusNotFound},
		{ErrForbidden, http.StatusForbidden},
		{ErrBadRequest, http.StatusBadRequest},
		{ErrCompanyIDRequired, http.StatusBadRequest},
		{errors.New("something else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestTrustedHeaderAuthMissingOrgIDRejects(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	TrustedHeaderAuth(okHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestTrustedHeaderAuthPopulatesContext(t *testing.T) {
	var captured AuthContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, err := FromContext(r.Context())
		if err != nil {
			t.Fatalf("FromContext: %v", err)
		}
		captured = auth
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Organization-ID", "org-1")
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("X-Role", "company_admin")
	req.Header.Set("X-Company-ID", "company-1")
	rec := httptest.NewRecorder()
	TrustedHeaderAuth(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured.OrgID != "org-1" || captured.UserID != "user-1" || captured.Role != RoleCompanyAdmin {
		t.Errorf("captured = %+v", captured)
	}
	if captured.CompanyID == nil || *captured.CompanyID != "company-1" {
		t.Errorf("CompanyID = %v, want company-1", captured.CompanyID)
	}
}

func TestTrustedHeaderAuthNoCompanyIDLeavesNil(t *testing.T) {
	var captured AuthContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Organization-ID", "org-1")
	rec := httptest.NewRecorder()
	TrustedHeaderAuth(next).ServeHTTP(rec, req)
	if captured.CompanyID != nil {
		t.Errorf("CompanyID = %v, want nil", captured.CompanyID)
	}
}

func TestSuperAdminOnlyRejectsNonSuperAdmin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithAuthContext(req.Context(), AuthContext{OrgID: "org-1", Role: RoleOrgAdmin}))
	rec := httptest.NewRecorder()
	SuperAdminOnly(okHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestSuperAdminOnlyRejectsMissingContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	SuperAdminOnly(okHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestSuperAdminOnlyAllowsSuperAdmin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithAuthContext(req.Context(), AuthContext{OrgID: "org-1", Role: RoleSuperAdmin}))
	rec := httptest.NewRecorder()
	SuperAdminOnly(okHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

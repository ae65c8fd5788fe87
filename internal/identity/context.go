package identity

import (
	"context"
	"errors"
	"net/http"
)

type authContextKey struct{}

// WithAuthContext attaches an AuthContext to a request context. The auth
// middleware (not implemented here — it is out of scope per §1 Non-goals,
// authentication itself is assumed) calls this once it has validated the
// bearer token.
func WithAuthContext(ctx context.Context, auth AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, auth)
}

// ErrMissingAuthContext is returned when a handler runs without an
// upstream auth middleware having attached an AuthContext.
var ErrMissingAuthContext = errors.New("identity: missing auth context")

// FromContext retrieves the AuthContext attached by the auth middleware.
func FromContext(ctx context.Context) (AuthContext, error) {
	auth, ok := ctx.Value(authContextKey{}).(AuthContext)
	if !ok {
		return AuthContext{}, ErrMissingAuthContext
	}
	return auth, nil
}

// ResolveRequest is the handler-facing convenience wrapper around Resolve:
// it pulls the AuthContext from r's context and the requested company_id
// from the query string.
func ResolveRequest(r *http.Request, endpointAllowsAllCompanies bool) (Scope, error) {
	auth, err := FromContext(r.Context())
	if err != nil {
		return Scope{}, err
	}
	q := r.URL.Query()
	allCompanies := q.Get("all_companies") == "true"
	return Resolve(auth, q.Get("company_id"), allCompanies, endpointAllowsAllCompanies)
}

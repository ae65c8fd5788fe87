// Package repository declares the persistence contracts for tenant-scoped
// domain rows (campaigns, leads, messages, direct-mail pieces). Concrete
// implementations live in repository/postgres (production) and
// repository/memory (unit tests).
//
// Every method that takes an orgID scopes its query by it in addition to
// any other predicate — see the tenant-isolation invariant in the data
// model: a cross-tenant lookup must behave exactly like a missing row.
package repository

import "errors"

// Sentinel errors shared by every repository in this package.
var (
	ErrNotFound      = errors.New("row not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrScopeMismatch = errors.New("row does not belong to the requested scope")
)

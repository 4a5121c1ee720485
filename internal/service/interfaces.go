package service

import "context"

// TransactionScope runs a function inside the request's transactional
// boundary, committing on nil and rolling back on error. Satisfied by
// *store.Sessions in production.
type TransactionScope interface {
	WithTransaction(ctx context.Context, fn func() error) error
}

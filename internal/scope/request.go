package scope

import (
	"context"
	"net/http"
)

// RequestKey is the scope key under which the middleware binds the incoming
// *http.Request. Lazy per-request resolvers (the principal factory) read the
// request back through this key instead of receiving it as an argument.
const RequestKey Key = "http.request"

// Request returns the *http.Request bound into the active scope.
// Returns ErrNoActiveScope when ctx has no scope, or ErrNoRequestBound when
// the scope was created outside the HTTP pipeline.
func Request(ctx context.Context) (*http.Request, error) {
	value, err := Resolve(ctx, RequestKey, func() (any, error) {
		return nil, ErrNoRequestBound
	})
	if err != nil {
		return nil, err
	}

	return value.(*http.Request), nil
}

package http

import (
	"net/http"

	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/internal/scope"
)

// withRequestScope opens the per-request dependency scope: a fresh store is
// attached to the request context with the request itself bound into it, and
// everything resolved during the request is torn down when the handler
// returns, even on panic. The database session's rollback-and-release runs
// through this teardown.
func (h *Handler) withRequestScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := scope.NewStore()

		r = r.WithContext(scope.NewContext(r.Context(), store))
		store.Bind(scope.RequestKey, r)

		defer func() {
			if err := store.Close(); err != nil {
				logger.FromRequest(r).Err(err).Msg("error closing request scope")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

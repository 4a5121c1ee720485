package http

import (
	"errors"
	"net/http"

	"github.com/mkarev/tzkeeper/internal/service"
)

// withErrorTranslation converts panics carrying taxonomy errors into their
// JSON responses. Operations normally return errors as values; the panic
// path exists so deeply nested helpers can abort a request without
// threading an error through every frame. Panics carrying anything else are
// re-raised for the outer recoverer.
func (h *Handler) withErrorTranslation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			err, ok := recovered.(error)
			if !ok {
				panic(recovered)
			}

			var validationErr *service.ValidationError
			if !errors.As(err, &validationErr) && statusFromError(err) == http.StatusInternalServerError {
				panic(recovered)
			}

			writeError(w, r, err)
		}()

		next.ServeHTTP(w, r)
	})
}

// notFound answers route misses with the taxonomy's JSON 404 instead of
// chi's plain-text default. Non-numeric {id} segments land here too.
func (h *Handler) notFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeErrorStatus(w, r, http.StatusNotFound)
	}
}

// methodNotAllowed answers known paths hit with an unregistered method.
func (h *Handler) methodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeErrorStatus(w, r, http.StatusMethodNotAllowed)
	}
}

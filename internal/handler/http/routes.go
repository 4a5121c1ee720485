package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init assembles the HTTP surface: the middleware chain, the conventional
// CRUD resources, and the auxiliary routes. Registration errors mean broken
// wiring and are reported to the caller instead of panicking.
func (h *Handler) Init() (*chi.Mux, error) {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(h.withErrorTranslation)
	router.Use(h.withRequestScope)

	router.NotFound(h.notFound())
	router.MethodNotAllowed(h.methodNotAllowed())

	rest := NewRouter(router, h.logger)

	if err := rest.Handle(http.MethodPost, "/auth", h.services.Auth.Login); err != nil {
		return nil, err
	}
	if err := rest.Resource("/users", h.services.Users); err != nil {
		return nil, err
	}
	if err := rest.Resource("/timezones", h.services.Timezones); err != nil {
		return nil, err
	}

	if h.cfg.ClientDir != "" {
		fileServer := http.StripPrefix("/client", http.FileServer(http.Dir(h.cfg.ClientDir)))
		router.Get("/client/*", fileServer.ServeHTTP)
	}

	// test-only escape hatch, disabled unless explicitly configured
	if h.cfg.EnableTestReset {
		router.Post("/restart", h.restart)
	}

	return router, nil
}

// restart wipes all application data. Only reachable when the test reset
// flag is enabled.
func (h *Handler) restart(w http.ResponseWriter, r *http.Request) {
	if err := h.storages.DB.Reset(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/models"
)

// Operation is the uniform signature shared by every service operation.
// The returned value is serialized as the 200 response body; nil means an
// empty 200. A returned error is translated through the error responder.
type Operation func(ctx context.Context, req *models.Request) (any, error)

// Capability interfaces checked by [Router.Resource]. A service opts into a
// conventional route simply by implementing the method; missing methods
// leave the corresponding route unregistered.
type (
	Lister interface {
		List(ctx context.Context, req *models.Request) (any, error)
	}
	Getter interface {
		Get(ctx context.Context, req *models.Request) (any, error)
	}
	Creator interface {
		Create(ctx context.Context, req *models.Request) (any, error)
	}
	Updater interface {
		Update(ctx context.Context, req *models.Request) (any, error)
	}
	Deleter interface {
		Delete(ctx context.Context, req *models.Request) (any, error)
	}
)

// Router registers service operations on a chi mux and adapts between the
// HTTP surface and the [Operation] signature: it builds the *models.Request
// from the matched route, invokes the operation, and renders the result or
// the error.
type Router struct {
	mux        chi.Router
	registered map[string]struct{}

	logger *logger.Logger
}

func NewRouter(mux chi.Router, logger *logger.Logger) *Router {
	return &Router{
		mux:        mux,
		registered: make(map[string]struct{}),
		logger:     logger,
	}
}

// Handle registers op under the given method and chi pattern. Registering
// the same method and pattern twice fails with [ErrDuplicateEndpoint].
func (rt *Router) Handle(method, pattern string, op Operation) error {
	endpoint := method + " " + pattern
	if _, ok := rt.registered[endpoint]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEndpoint, endpoint)
	}
	rt.registered[endpoint] = struct{}{}

	rt.mux.Method(method, pattern, rt.endpoint(op))
	rt.logger.Debug().Str("endpoint", endpoint).Msg("endpoint registered")

	return nil
}

// Resource registers the conventional CRUD routes for svc under path:
//
//	GET    path          List
//	GET    path/{id}     Get
//	POST   path          Create
//	PUT    path/{id}     Update
//	DELETE path/{id}     Delete
//
// Only the operations svc actually implements are registered. The {id}
// placeholder matches digits only, so non-numeric ids fall through to the
// router's 404 handler.
func (rt *Router) Resource(path string, svc any) error {
	itemPath := path + "/{id:[0-9]+}"
	registered := 0

	type route struct {
		method  string
		pattern string
		op      Operation
	}
	var routes []route

	if lister, ok := svc.(Lister); ok {
		routes = append(routes, route{http.MethodGet, path, lister.List})
	}
	if getter, ok := svc.(Getter); ok {
		routes = append(routes, route{http.MethodGet, itemPath, getter.Get})
	}
	if creator, ok := svc.(Creator); ok {
		routes = append(routes, route{http.MethodPost, path, creator.Create})
	}
	if updater, ok := svc.(Updater); ok {
		routes = append(routes, route{http.MethodPut, itemPath, updater.Update})
	}
	if deleter, ok := svc.(Deleter); ok {
		routes = append(routes, route{http.MethodDelete, itemPath, deleter.Delete})
	}

	for _, r := range routes {
		if err := rt.Handle(r.method, r.pattern, r.op); err != nil {
			return err
		}
		registered++
	}

	if registered == 0 {
		return fmt.Errorf("%w: %s", ErrNoOperations, path)
	}

	return nil
}

// endpoint adapts op to http.Handler: request building, invocation, and
// result rendering.
func (rt *Router) endpoint(op Operation) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := buildRequest(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		result, err := op(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeResult(w, r, result)
	})
}

// buildRequest assembles the operation request from the matched route:
// typed path arguments, the raw body, and the parsed query.
func buildRequest(r *http.Request) (*models.Request, error) {
	req := &models.Request{Query: r.URL.Query()}

	if idParam := chi.URLParam(r, "id"); idParam != "" {
		id, err := strconv.ParseInt(idParam, 10, 64)
		if err != nil {
			// digits that do not fit in int64 name no addressable
			// resource, same as a non-numeric segment
			return nil, fmt.Errorf("%w: id %q: %v", errUnroutableArgument, idParam, err)
		}
		req.Args.ID = id
	}

	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("error reading request body: %w", err)
		}
		req.Body = body
	}

	return req, nil
}

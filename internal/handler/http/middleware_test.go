package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarev/tzkeeper/internal/config"
	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/internal/scope"
	"github.com/mkarev/tzkeeper/internal/service"
	"github.com/mkarev/tzkeeper/models"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(&service.Services{}, nil, config.Server{}, logger.Nop())
}

func TestWithTraceID_GeneratesWhenAbsent(t *testing.T) {
	h := newTestHandler(t)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get(traceIDHeader)
	})

	w := httptest.NewRecorder()
	h.withTraceID(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(traceIDHeader))
}

func TestWithTraceID_PropagatesCallerID(t *testing.T) {
	h := newTestHandler(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(traceIDHeader, "caller-trace-7")

	w := httptest.NewRecorder()
	h.withTraceID(next).ServeHTTP(w, r)

	assert.Equal(t, "caller-trace-7", w.Header().Get(traceIDHeader))
}

func TestWithRequestScope_ScopeActiveInsideHandler(t *testing.T) {
	h := newTestHandler(t)

	var resolved bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := scope.Resolve(r.Context(), "probe", func() (any, error) { return 1, nil })
		resolved = err == nil

		bound, err := scope.Request(r.Context())
		assert.NoError(t, err)
		assert.Same(t, r, bound)
	})

	w := httptest.NewRecorder()
	h.withRequestScope(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, resolved)
}

// probeCloser observes scope teardown.
type probeCloser struct {
	closed *bool
}

func (p probeCloser) Close() error {
	*p.closed = true
	return nil
}

func TestWithRequestScope_ClosesResolvedInstances(t *testing.T) {
	h := newTestHandler(t)

	closed := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := scope.Resolve(r.Context(), "session", func() (any, error) {
			return probeCloser{closed: &closed}, nil
		})
		assert.NoError(t, err)
		assert.False(t, closed, "teardown must not run before the handler returns")
	})

	w := httptest.NewRecorder()
	h.withRequestScope(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, closed)
}

func TestWithRequestScope_ClosesOnPanic(t *testing.T) {
	h := newTestHandler(t)

	closed := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = scope.Resolve(r.Context(), "session", func() (any, error) {
			return probeCloser{closed: &closed}, nil
		})
		panic(http.ErrAbortHandler)
	})

	w := httptest.NewRecorder()
	assert.Panics(t, func() {
		h.withRequestScope(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.True(t, closed, "teardown must run even when the handler panics")
}

func TestWithErrorTranslation_TaxonomyPanicBecomesJSON(t *testing.T) {
	h := newTestHandler(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(error(service.ErrNotFound))
	})

	w := httptest.NewRecorder()
	h.withErrorTranslation(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Not found", response.Description)
}

func TestWithErrorTranslation_ValidationPanicBecomesJSON(t *testing.T) {
	h := newTestHandler(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(error(service.NewValidationError("city", "is missing")))
	})

	w := httptest.NewRecorder()
	h.withErrorTranslation(next).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWithErrorTranslation_ForeignPanicIsRethrown(t *testing.T) {
	h := newTestHandler(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something unrelated")
	})

	w := httptest.NewRecorder()
	assert.Panics(t, func() {
		h.withErrorTranslation(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestResponseWriter_CapturesStatusAndSize(t *testing.T) {
	w := httptest.NewRecorder()
	lw := &responseWriter{ResponseWriter: w}

	lw.WriteHeader(http.StatusCreated)
	lw.WriteHeader(http.StatusTeapot) // ignored

	n, err := lw.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusCreated, lw.status)
	assert.Equal(t, 5, lw.size)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestResponseWriter_ImplicitOKOnWrite(t *testing.T) {
	w := httptest.NewRecorder()
	lw := &responseWriter{ResponseWriter: w}

	_, err := lw.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, lw.status)
}

// Package scope implements the per-request dependency store.
//
// A Store is created by the HTTP scope middleware at the start of every
// request, carried down the call chain inside the request's context.Context,
// and discarded when the request ends. Resolving a Key through the store
// memoizes the produced instance, so "current database session" and "current
// principal" behave like per-request singletons without any global mutable
// state: two resolutions within one request return the identical instance,
// while concurrent requests never share instances.
package scope

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Key identifies a requestable per-request dependency, e.g. the current
// database session or the current principal.
type Key string

// String returns the string representation of the key.
// Implements the fmt.Stringer interface.
func (k Key) String() string {
	return string(k)
}

// ErrNoActiveScope is returned when a resolution is attempted on a context
// that has no active request scope attached. This is a programmer error:
// every resolution must happen below the scope middleware.
var ErrNoActiveScope = errors.New("no active request scope")

// ErrNoRequestBound is returned by [Request] when the active scope was
// created without binding an *http.Request, e.g. in a unit test that built
// the store by hand.
var ErrNoRequestBound = errors.New("no http request bound to scope")

// Store holds the instances resolved during one request. It must only be
// created by the scope middleware and must be closed exactly once when the
// request ends.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	closers []io.Closer
}

// entry memoizes a single resolved dependency. The sync.Once guarantees the
// factory runs at most once per key even if the handler spawns goroutines
// that race on the same key.
type entry struct {
	once  sync.Once
	value any
	err   error
}

// NewStore returns an empty per-request store.
func NewStore() *Store {
	return &Store{entries: make(map[Key]*entry)}
}

// Resolve returns the instance memoized under key, invoking factory to
// produce it on first access. A factory error is memoized as well, so a
// failed resolution is not retried within the same request.
//
// Resolved values implementing io.Closer are closed by [Store.Close] in
// reverse resolution order.
func (s *Store) Resolve(key Key, factory func() (any, error)) (any, error) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	s.mu.Unlock()

	e.once.Do(func() {
		e.value, e.err = factory()
		if e.err != nil {
			return
		}
		if closer, ok := e.value.(io.Closer); ok {
			s.mu.Lock()
			s.closers = append(s.closers, closer)
			s.mu.Unlock()
		}
	})

	return e.value, e.err
}

// Bind stores value under key as an already-resolved instance. It is used by
// the scope middleware to seed the store with request-bound objects (the
// incoming *http.Request). Binding an already-resolved key is a no-op.
func (s *Store) Bind(key Key, value any) {
	s.mu.Lock()
	if _, ok := s.entries[key]; ok {
		s.mu.Unlock()
		return
	}
	e := &entry{}
	s.entries[key] = e
	s.mu.Unlock()

	e.once.Do(func() {
		e.value = value
	})
}

// Close releases every resolved instance that implements io.Closer, in
// reverse resolution order, and reports the joined errors. The middleware
// calls it in a defer so teardown happens even when a panic unwinds the
// request.
func (s *Store) Close() error {
	s.mu.Lock()
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ctxKey is a private type for the context key holding the active store.
type ctxKey struct{}

// NewContext returns a copy of ctx carrying store as the active request scope.
func NewContext(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, store)
}

// FromContext extracts the active request scope from ctx.
func FromContext(ctx context.Context) (*Store, bool) {
	store, ok := ctx.Value(ctxKey{}).(*Store)
	return store, ok
}

// Resolve resolves key through the scope attached to ctx.
// Returns ErrNoActiveScope when ctx has no active scope.
func Resolve(ctx context.Context, key Key, factory func() (any, error)) (any, error) {
	store, ok := FromContext(ctx)
	if !ok {
		return nil, ErrNoActiveScope
	}

	return store.Resolve(key, factory)
}

// ResolveAs is a typed convenience wrapper around [Resolve].
func ResolveAs[T any](ctx context.Context, key Key, factory func() (T, error)) (T, error) {
	value, err := Resolve(ctx, key, func() (any, error) {
		return factory()
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return value.(T), nil
}

// Package http implements the HTTP transport layer of the application.
//
// It exposes the REST router with its conventional CRUD registration, the
// error taxonomy responder, and the middleware chain: panic recovery,
// request tracing, access logging, error translation, and the per-request
// dependency scope. Requests are delegated to the service layer through a
// uniform operation signature.
package http

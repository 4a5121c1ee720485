package models

import (
	"encoding/json"
	"net/url"
)

// Request carries the routing arguments and decoded request data handed to a
// resource operation. It is built once by the REST router and owned by the
// request for its duration.
type Request struct {
	// Args holds the typed values bound from path placeholders.
	Args Args

	// Body is the raw JSON request body, empty for bodyless requests.
	// Operations decode it into their own payload types.
	Body json.RawMessage

	// Query holds the parsed URL query parameters.
	Query url.Values
}

// Args holds the typed path arguments of a matched route.
type Args struct {
	// ID is the numeric resource identifier bound from the {id} placeholder.
	// Zero when the matched route has no {id} segment.
	ID int64
}

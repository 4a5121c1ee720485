package models

// TokenResponse is the body returned by a successful login.
type TokenResponse struct {
	// Token is the signed JWT credential in compact form.
	Token string `json:"token"`
}

// ErrorResponse is the uniform JSON error body returned for every
// taxonomy-level failure (401, 403, 404, unrecognized errors).
type ErrorResponse struct {
	// Description is a short human-readable summary of the failure.
	Description string `json:"description"`
}

// ValidationErrorResponse is the JSON body returned for validation failures.
// Field messages are grouped by field name and the field map is rendered in
// sorted key order by encoding/json.
type ValidationErrorResponse struct {
	Description string            `json:"description"`
	Details     ValidationDetails `json:"details"`
}

// ValidationDetails wraps the per-field message lists of a validation failure.
type ValidationDetails struct {
	// Fields maps a field name to the ordered list of messages reported
	// against it.
	Fields map[string][]string `json:"fields"`
}

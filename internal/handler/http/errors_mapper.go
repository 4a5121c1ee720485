package http

import (
	"errors"
	"net/http"

	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/internal/service"
	"github.com/mkarev/tzkeeper/internal/store"
	"github.com/mkarev/tzkeeper/internal/utils"
	"github.com/mkarev/tzkeeper/models"
)

// The client-facing error taxonomy. Every error escaping an operation maps
// onto exactly one of these responses; unrecognized errors collapse into a
// logged 500 so internals never leak to the client.
var errorStatusMap = map[error]int{
	service.ErrInvalidCredentials: http.StatusUnauthorized,
	service.ErrForbidden:          http.StatusForbidden,
	service.ErrNotFound:           http.StatusNotFound,
	errUnroutableArgument:         http.StatusNotFound,

	store.ErrAcquiringConnection:   http.StatusInternalServerError,
	store.ErrBeginningTransaction:  http.StatusInternalServerError,
	store.ErrCommittingTransaction: http.StatusInternalServerError,
	store.ErrBuildingSQLQuery:      http.StatusInternalServerError,
	store.ErrExecutingQuery:        http.StatusInternalServerError,
	store.ErrScanningRow:           http.StatusInternalServerError,
	store.ErrScanningRows:          http.StatusInternalServerError,
}

var errorDescriptionMap = map[int]string{
	http.StatusUnauthorized:        "Invalid credentials",
	http.StatusForbidden:           "Access denied",
	http.StatusNotFound:            "Not found",
	http.StatusMethodNotAllowed:    "Method not allowed",
	http.StatusInternalServerError: "Internal Server Error",
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError renders err as its taxonomy response. Validation failures get
// the field-addressed 400 body; everything else gets the uniform
// {"description": ...} body for its status.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		writeValidationError(w, r, validationErr)
		return
	}

	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		logger.FromRequest(r).Err(err).Msg("unrecognized error from operation")
	}

	writeErrorStatus(w, r, status)
}

// writeErrorStatus renders the uniform error body for status.
func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int) {
	description, ok := errorDescriptionMap[status]
	if !ok {
		description = http.StatusText(status)
	}

	if _, err := utils.WriteJSON(w, models.ErrorResponse{Description: description}, status); err != nil {
		logger.FromRequest(r).Err(err).Msg("error writing error response")
	}
}

func writeValidationError(w http.ResponseWriter, r *http.Request, verr *service.ValidationError) {
	fields := make(map[string][]string, len(verr.Fields))
	for _, f := range verr.Fields {
		fields[f.Field] = append(fields[f.Field], f.Message)
	}

	response := models.ValidationErrorResponse{
		Description: "Validation Error",
		Details:     models.ValidationDetails{Fields: fields},
	}

	if _, err := utils.WriteJSON(w, response, http.StatusBadRequest); err != nil {
		logger.FromRequest(r).Err(err).Msg("error writing validation response")
	}
}

// writeResult renders an operation's successful result: nil yields an empty
// 200, anything else is serialized as the JSON body.
func writeResult(w http.ResponseWriter, r *http.Request, result any) {
	if result == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	if _, err := utils.WriteJSON(w, result, http.StatusOK); err != nil {
		logger.FromRequest(r).Err(err).Msg("error writing response")
	}
}

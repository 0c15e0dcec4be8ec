// Package shared holds the response helpers every handler uses: JSON
// encoding and the single place where domain error codes become HTTP status
// codes.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "projecthub/pkg/domain-errors"
)

// ErrorResponse is the stable error body. Details is present only for
// validation errors and enumerates every violated field.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeValidation:   http.StatusBadRequest,
	dErrors.CodeBadRequest:   http.StatusBadRequest,
	dErrors.CodeUnauthorized: http.StatusUnauthorized,
	dErrors.CodeForbidden:    http.StatusForbidden,
	dErrors.CodeNotFound:     http.StatusNotFound,
	dErrors.CodeConflict:     http.StatusConflict,
	dErrors.CodeTimeout:      http.StatusGatewayTimeout,
	dErrors.CodeInternal:     http.StatusInternalServerError,
}

// WriteError renders a coded error. Uncoded errors become opaque 500s so
// internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	for code, s := range statusByCode {
		if dErrors.HasCode(err, code) {
			status = s
			break
		}
	}
	WriteJSON(w, status, ErrorResponse{
		Error:   dErrors.Message(err),
		Details: dErrors.Details(err),
	})
}

// WriteJSON renders any payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Package httputil provides the HTTP plumbing shared by the preview
// server's handlers.
//
// # Overview
//
//   - [RespondJSON] and [RespondText]: response writers
//   - [RespondError]: coded-error to HTTP status mapping with a JSON
//     error envelope
//   - [RequestLogger]: per-request logging middleware wired to the
//     server observability hooks
//
// # Error envelope
//
// Handlers surface domain errors from pkg/errors. RespondError maps the
// code to a status and renders
//
//	{"error": {"code": "UNKNOWN_CORNER", "message": "...", "alternatives": [...]}}
//
// Alternatives are optional and carry the valid choices alongside a
// not-found style answer.
package httputil

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pdkit/libmerge/pkg/errors"
)

// ErrorBody is the inner payload of an error response.
type ErrorBody struct {
	Code         errors.Code `json:"code"`
	Message      string      `json:"message"`
	Alternatives []string    `json:"alternatives,omitempty"`
}

// ErrorResponse is the JSON envelope for every non-2xx answer.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// StatusForCode maps a domain error code to an HTTP status. Codes with
// no mapping, including the empty code of plain errors, are a 500.
func StatusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeUnknownCorner, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupportedVariant:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidCorner, errors.ErrCodeInvalidCell,
		errors.ErrCodeInvalidPath, errors.ErrCodeInvalidFilename, errors.ErrCodeInvalidLibrary,
		errors.ErrCodeInvalidManifest:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// RespondJSON writes v as the JSON response body with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// RespondText writes a plain-text response body.
func RespondText(w http.ResponseWriter, status int, body string) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, err := io.WriteString(w, body)
	return err
}

// RespondError renders err as the JSON error envelope, with optional
// alternative choices for the client.
func RespondError(w http.ResponseWriter, err error, alternatives ...string) error {
	code := errors.GetCode(err)
	return RespondJSON(w, StatusForCode(code), ErrorResponse{Error: ErrorBody{
		Code:         code,
		Message:      errors.UserMessage(err),
		Alternatives: alternatives,
	}})
}

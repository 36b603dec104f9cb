package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/lifeboard/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeGameNotFound     = "GAME_NOT_FOUND"
	CodePlayerNotFound   = "PLAYER_NOT_FOUND"
	CodeGameExists       = "GAME_EXISTS"
	CodeGameFull         = "GAME_FULL"
	CodePasswordMismatch = "PASSWORD_MISMATCH"
	CodeColorTaken       = "COLOR_TAKEN"
	CodeInvalidColor     = "INVALID_COLOR"
	CodeUnknownEffect    = "UNKNOWN_EFFECT"
	CodeEffectKind       = "EFFECT_KIND"
	CodeInvalidIntent    = "INVALID_INTENT"
	CodeInvalidPath      = "INVALID_PATH"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// mapping ties a sentinel to its wire representation
type mapping struct {
	err     error
	status  int
	code    string
	message string
}

// Ordered so the first match wins when errors wrap one another
var mappings = []mapping{
	{model.ErrGameNotFound, http.StatusNotFound, CodeGameNotFound, "Game not found"},
	{model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound, "Player not found"},
	{model.ErrGameExists, http.StatusConflict, CodeGameExists, "Game already exists"},
	{model.ErrGameFull, http.StatusConflict, CodeGameFull, "Game is full"},
	{model.ErrPasswordMismatch, http.StatusForbidden, CodePasswordMismatch, "Password does not match"},
	{model.ErrColorTaken, http.StatusConflict, CodeColorTaken, "Color is held by another player"},
	{model.ErrInvalidColor, http.StatusBadRequest, CodeInvalidColor, "Color is not in the palette"},
	{model.ErrUnknownEffect, http.StatusBadRequest, CodeUnknownEffect, "Unknown effect"},
	{model.ErrEffectKind, http.StatusBadRequest, CodeEffectKind, "Effect does not support this adjustment"},
	{model.ErrInvalidIntent, http.StatusBadRequest, CodeInvalidIntent, "Invalid request"},
	{model.ErrInvalidPath, http.StatusBadRequest, CodeInvalidPath, "Invalid document path"},
	{model.ErrStoreUnavailable, http.StatusServiceUnavailable, CodeStoreUnavailable, "Store unavailable"},
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// StatusOf returns the HTTP status an error is reported with
func StatusOf(err error) int {
	return toHTTPError(err).status
}

// MessageOf returns the user-facing message an error is reported with
func MessageOf(err error) string {
	return toHTTPError(err).apiError.Message
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return &httpError{m.status, APIError{m.code, m.message}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// FromCode rebuilds the sentinel for a wire error so callers on the far side of
// the API can use errors.Is. Unknown codes become plain errors.
func FromCode(code, message string) error {
	for _, m := range mappings {
		if m.code == code {
			if message == "" || message == m.message {
				return m.err
			}
			return &wireError{sentinel: m.err, message: message}
		}
	}
	if message == "" {
		message = code
	}
	return errors.New(message)
}

// wireError keeps a server message while matching its sentinel
type wireError struct {
	sentinel error
	message  string
}

func (e *wireError) Error() string { return e.message }
func (e *wireError) Unwrap() error { return e.sentinel }

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

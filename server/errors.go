package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/paularlott/toon"
)

// Error codes returned in the "code" field of an error response.
const (
	// CodeFormatError means the TOON input is structurally invalid.
	CodeFormatError = "FORMAT_ERROR"

	// CodeUnsupportedStructure means the input is valid but cannot be
	// represented, e.g. a JSON array root or an array of arrays.
	CodeUnsupportedStructure = "UNSUPPORTED_STRUCTURE"

	// CodeInvalidInput covers unparseable JSON/YAML bodies, bad query
	// parameters and oversized requests.
	CodeInvalidInput = "INVALID_INPUT"

	// CodeUnauthorized means the bearer token was missing or wrong.
	CodeUnauthorized = "UNAUTHORIZED"

	// CodeInternal is used for anything unexpected.
	CodeInternal = "INTERNAL"
)

// APIError is an error with an HTTP status and a stable code. Handlers return
// it to control the error response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidInput creates a 400 INVALID_INPUT error.
func NewInvalidInput(format string, args ...any) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NewUnauthorized creates a 401 UNAUTHORIZED error.
func NewUnauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

// toAPIError maps codec errors to their response codes.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, toon.ErrFormat):
		return &APIError{Status: http.StatusUnprocessableEntity, Code: CodeFormatError, Message: err.Error()}
	case errors.Is(err, toon.ErrUnsupportedStructure):
		return &APIError{Status: http.StatusUnprocessableEntity, Code: CodeUnsupportedStructure, Message: err.Error()}
	case errors.As(err, &tooLarge):
		return &APIError{
			Status:  http.StatusRequestEntityTooLarge,
			Code:    CodeInvalidInput,
			Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
		}
	}
	return &APIError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: err.Error()}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is the UI-agnostic representation of a failed call. StatusCode 0
// means no HTTP exchange completed (network/transport failure); 408 means
// the per-attempt deadline elapsed; anything else is the HTTP status.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	// Code is the backend-supplied machine code, when the error body carried one.
	Code string `json:"code,omitempty"`
	// RawError preserves the underlying transport error for diagnostics.
	// Omitted from JSON to avoid leaking internals.
	RawError error `json:"-"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.RawError
}

func (e *APIError) IsNetwork() bool      { return e.StatusCode == 0 }
func (e *APIError) IsTimeout() bool      { return e.StatusCode == http.StatusRequestTimeout }
func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }
func (e *APIError) IsRateLimited() bool  { return e.StatusCode == http.StatusTooManyRequests }
func (e *APIError) IsServerError() bool  { return e.StatusCode >= 500 }
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 &&
		!e.IsUnauthorized() && !e.IsRateLimited() && !e.IsTimeout()
}

// defaultMessages maps statuses to fallback messages used when the error
// body carries nothing usable.
var defaultMessages = map[int]string{
	http.StatusBadRequest:          "bad request",
	http.StatusUnauthorized:        "invalid credentials",
	http.StatusForbidden:           "forbidden",
	http.StatusNotFound:            "not found",
	http.StatusConflict:            "conflict",
	http.StatusUnprocessableEntity: "validation error",
	http.StatusTooManyRequests:     "too many requests",
	http.StatusInternalServerError: "internal error",
	http.StatusBadGateway:          "service unavailable",
	http.StatusServiceUnavailable:  "service unavailable",
	http.StatusGatewayTimeout:      "timeout",
}

func defaultMessage(status int) string {
	if msg, ok := defaultMessages[status]; ok {
		return msg
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// wireError matches the error body shapes the backend emits, in priority
// order: nested error object, top-level message, top-level detail.
type wireError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// parseErrorBody classifies a non-2xx response into an APIError, preferring
// the most specific message the body offers and falling back to the
// status-indexed default table.
func parseErrorBody(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: defaultMessage(status)}
	var wire wireError
	if err := json.Unmarshal(body, &wire); err != nil {
		return apiErr
	}
	switch {
	case wire.Error != nil && wire.Error.Message != "":
		apiErr.Message = wire.Error.Message
		apiErr.Code = wire.Error.Code
	case wire.Message != "":
		apiErr.Message = wire.Message
	case wire.Detail != "":
		apiErr.Message = wire.Detail
	}
	return apiErr
}

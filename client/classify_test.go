package client

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassifyNetworkError maps status 0 to an inline "network problem"
// with the check-status remediation when supplied.
func TestClassifyNetworkError(t *testing.T) {
	check := &Action{Label: "check service status", Run: func() {}}
	ui := Classify(&APIError{StatusCode: 0, Message: "network error"},
		Actions{CheckStatus: check})

	assert.Equal(t, "network problem", ui.Title)
	assert.Equal(t, DisplayInline, ui.Display)
	require.Len(t, ui.Actions, 1)
	assert.Equal(t, "check service status", ui.Actions[0].Label)
}

// TestClassifyUnauthorized keeps the backend message and offers the
// reset-credentials remediation inline. Mirrors a failed login with a
// nested error body.
func TestClassifyUnauthorized(t *testing.T) {
	apiErr := parseErrorBody(http.StatusUnauthorized, []byte(
		`{"error":{"code":"INVALID_CREDENTIALS","message":"Invalid email or password"}}`))
	reset := &Action{Label: "reset credentials", Run: func() {}}
	ui := Classify(apiErr, Actions{ResetCredentials: reset})

	assert.Equal(t, "invalid credentials", ui.Title)
	assert.Equal(t, "Invalid email or password", ui.Message)
	assert.Equal(t, DisplayInline, ui.Display)
	require.Len(t, ui.Actions, 1)
	assert.Equal(t, "reset credentials", ui.Actions[0].Label)
}

// TestClassifyRateLimited delivers as a transient notice with a retry
// action.
func TestClassifyRateLimited(t *testing.T) {
	retry := &Action{Label: "retry", Run: func() {}}
	ui := Classify(&APIError{StatusCode: 429, Message: "too many requests"},
		Actions{Retry: retry})

	assert.Equal(t, "rate limited", ui.Title)
	assert.Equal(t, DisplayNotice, ui.Display)
	require.Len(t, ui.Actions, 1)
}

// TestClassifyServerError prefers the raw server message and falls back to
// the generic one.
func TestClassifyServerError(t *testing.T) {
	ui := Classify(&APIError{StatusCode: 503, Message: "db is down"}, Actions{})
	assert.Equal(t, "server error", ui.Title)
	assert.Equal(t, "db is down", ui.Message)
	assert.Equal(t, DisplayNotice, ui.Display)
	assert.Empty(t, ui.Actions)

	blank := Classify(&APIError{StatusCode: 500}, Actions{})
	assert.Equal(t, genericFailureMessage, blank.Message)
}

// TestClassifyDefaultClientError delivers other 4xx inline with the raw
// message.
func TestClassifyDefaultClientError(t *testing.T) {
	ui := Classify(&APIError{StatusCode: 404, Message: "not found"}, Actions{})
	assert.Equal(t, "request failed", ui.Title)
	assert.Equal(t, "not found", ui.Message)
	assert.Equal(t, DisplayInline, ui.Display)
}

// TestClassifyOmitsUnsuppliedActions never invents remediations the caller
// did not offer.
func TestClassifyOmitsUnsuppliedActions(t *testing.T) {
	assert.Empty(t, Classify(&APIError{StatusCode: 0, Message: "network error"}, Actions{}).Actions)
	assert.Empty(t, Classify(&APIError{StatusCode: 401, Message: "x"}, Actions{}).Actions)
	assert.Empty(t, Classify(&APIError{StatusCode: 429, Message: "x"}, Actions{}).Actions)
}

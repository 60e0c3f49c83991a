package client

import "net/http"

// Display selects the delivery channel for a UiError.
type Display string

const (
	// DisplayInline attaches the error to the originating form or action.
	DisplayInline Display = "inline"
	// DisplayNotice shows the error as a transient notice.
	DisplayNotice Display = "notice"
)

// Action is a caller-supplied remediation attached to a UiError.
type Action struct {
	Label string
	Run   func()
}

// Actions carries the optional remediations a caller is willing to offer.
// Classify attaches only the ones relevant to the failure at hand.
type Actions struct {
	Retry            *Action
	ResetCredentials *Action
	CheckStatus      *Action
}

// UiError is the display-ready form of a failed call. Derived, never
// persisted.
type UiError struct {
	Title   string
	Message string
	Display Display
	Actions []Action
}

const genericFailureMessage = "something went wrong, please try again"

// Classify maps a classified API failure to its UI presentation. It is a
// pure function: no network, no credential state.
//
// Rules, evaluated in order:
//   - status 0 (network): "network problem", inline, check-status action
//   - 401: "invalid credentials", inline, reset-credentials action
//   - 429: "rate limited", notice, retry action
//   - 5xx: notice with the server message when present, retry action
//   - anything else: inline, preferring the raw message over the fallback
func Classify(err *APIError, actions Actions) UiError {
	message := err.Message
	if message == "" {
		message = genericFailureMessage
	}

	switch {
	case err.StatusCode == 0:
		return UiError{
			Title:   "network problem",
			Message: message,
			Display: DisplayInline,
			Actions: appendAction(nil, actions.CheckStatus),
		}
	case err.StatusCode == http.StatusUnauthorized:
		return UiError{
			Title:   "invalid credentials",
			Message: message,
			Display: DisplayInline,
			Actions: appendAction(nil, actions.ResetCredentials),
		}
	case err.StatusCode == http.StatusTooManyRequests:
		return UiError{
			Title:   "rate limited",
			Message: message,
			Display: DisplayNotice,
			Actions: appendAction(nil, actions.Retry),
		}
	case err.StatusCode >= http.StatusInternalServerError:
		return UiError{
			Title:   "server error",
			Message: message,
			Display: DisplayNotice,
			Actions: appendAction(nil, actions.Retry),
		}
	default:
		return UiError{
			Title:   "request failed",
			Message: message,
			Display: DisplayInline,
		}
	}
}

func appendAction(list []Action, action *Action) []Action {
	if action == nil {
		return list
	}
	return append(list, *action)
}

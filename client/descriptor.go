package client

import (
	"time"
)

// RequestDescriptor describes one logical API request. A descriptor is
// immutable per attempt; each retry derives a new descriptor with a
// decremented budget.
type RequestDescriptor struct {
	Method  string
	Path    string
	Headers map[string]string
	// Body is JSON-marshaled when non-nil.
	Body any
	// Timeout bounds a single attempt. Zero means the configured default.
	Timeout time.Duration
	// Retries is the resubmission budget. Zero means the configured
	// default; pass a negative value to disable retries entirely.
	Retries  int
	SkipAuth bool
}

// retryNext derives the descriptor for the next attempt.
func (d RequestDescriptor) retryNext() RequestDescriptor {
	next := d
	next.Retries--
	return next
}

// RequestOption tweaks a single request issued through the verb helpers.
type RequestOption func(*RequestDescriptor)

// WithTimeout overrides the per-attempt timeout for this request.
func WithTimeout(timeout time.Duration) RequestOption {
	return func(d *RequestDescriptor) { d.Timeout = timeout }
}

// WithRetries overrides the retry budget for this request. A negative
// value disables retries.
func WithRetries(retries int) RequestOption {
	return func(d *RequestDescriptor) { d.Retries = retries }
}

// WithHeader sets an extra request header.
func WithHeader(key, value string) RequestOption {
	return func(d *RequestDescriptor) {
		if d.Headers == nil {
			d.Headers = map[string]string{}
		}
		d.Headers[key] = value
	}
}

// WithSkipAuth suppresses bearer credential attachment for this request.
func WithSkipAuth() RequestOption {
	return func(d *RequestDescriptor) { d.SkipAuth = true }
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/google/uuid"

	"github.com/qrshare/qrshare-go/common/config"
	"github.com/qrshare/qrshare-go/monitor"
)

// Do executes one logical request: it attaches credentials, bounds each
// attempt with a timeout, and resubmits on transient failures until the
// retry budget runs out. Terminal failures are returned as *APIError.
//
// Retry policy per attempt outcome:
//   - network failure or timeout: fixed base delay, budget permitting
//   - 401 (authenticated calls): exactly one credential refresh per logical
//     request, then resubmit; refresh failure forces logout
//   - 429: linearly growing delay, budget permitting
//   - 5xx: fixed base delay, budget permitting
//   - other non-2xx: surfaced immediately with the parsed error body
//
// Attempts within one logical request are strictly sequential.
func (c *Client) Do(ctx context.Context, d RequestDescriptor) (*Envelope, error) {
	if d.Timeout == 0 {
		d.Timeout = c.timeout
	}
	if d.Retries == 0 {
		d.Retries = c.maxRetries
	} else if d.Retries < 0 {
		d.Retries = 0
	}
	budget := d.Retries

	lg := c.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("method", d.Method),
		zap.String("path", d.Path),
	)

	refreshed := false
	for {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, errors.Wrap(err, "wait for rate limiter")
			}
		}

		start := time.Now()
		status, body, attemptErr := c.attempt(ctx, d)
		if attemptErr != nil {
			// failed attempts carry their classified status (408 or 0)
			status = attemptErr.StatusCode
		}
		monitor.ObserveRequest(d.Method, status, time.Since(start))

		if attemptErr != nil {
			// No usable HTTP exchange: transport failure or timeout.
			// Both are transient and follow the fixed-delay policy.
			if d.Retries > 0 && ctx.Err() == nil {
				lg.Warn("transient transport failure, retrying",
					zap.Int("status_code", attemptErr.StatusCode),
					zap.Int("retries_left", d.Retries-1),
					zap.Error(attemptErr.RawError),
				)
				monitor.CountRetry("transport")
				if err := c.sleep(ctx, c.baseDelay); err != nil {
					return nil, attemptErr
				}
				d = d.retryNext()
				continue
			}
			lg.Error("request failed at transport level",
				zap.Int("status_code", attemptErr.StatusCode),
				zap.Error(attemptErr.RawError),
			)
			return nil, attemptErr
		}

		switch {
		case status == http.StatusUnauthorized && !d.SkipAuth && !refreshed && d.Retries > 0:
			if err := c.refreshCredentials(ctx); err != nil {
				lg.Warn("credential refresh failed, forcing logout", zap.Error(err))
				c.forceLogout()
				return nil, parseErrorBody(status, body)
			}
			lg.Info("credentials refreshed, resubmitting request",
				zap.Int("retries_left", d.Retries-1))
			refreshed = true
			d = d.retryNext()

		case status == http.StatusTooManyRequests && d.Retries > 0:
			// Linear backoff: the delay grows with each attempt number.
			attemptNo := budget - d.Retries + 1
			delay := c.baseDelay * time.Duration(attemptNo)
			lg.Warn("rate limited, backing off",
				zap.Duration("delay", delay),
				zap.Int("retries_left", d.Retries-1),
			)
			monitor.CountRetry("rate_limited")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, parseErrorBody(status, body)
			}
			d = d.retryNext()

		case status >= http.StatusInternalServerError && d.Retries > 0:
			lg.Warn("server error, retrying",
				zap.Int("status_code", status),
				zap.Int("retries_left", d.Retries-1),
			)
			monitor.CountRetry("server_error")
			if err := c.sleep(ctx, c.baseDelay); err != nil {
				return nil, parseErrorBody(status, body)
			}
			d = d.retryNext()

		case status >= 200 && status < 300:
			env := decodeEnvelope(body)
			lg.Debug("request succeeded", zap.Int("status_code", status))
			return &env, nil

		default:
			apiErr := parseErrorBody(status, body)
			lg.Warn("request failed",
				zap.Int("status_code", status),
				zap.String("error_code", apiErr.Code),
				zap.String("error_message", apiErr.Message),
			)
			return nil, apiErr
		}
	}
}

// attempt performs a single HTTP exchange. A nil *APIError means a response
// with a status code was obtained; otherwise the attempt died at transport
// level (status 0) or hit the per-attempt deadline (status 408).
func (c *Client) attempt(ctx context.Context, d RequestDescriptor) (int, []byte, *APIError) {
	var bodyReader io.Reader
	if d.Body != nil {
		payload, err := json.Marshal(d.Body)
		if err != nil {
			return 0, nil, &APIError{StatusCode: 0, Message: "invalid request body", RawError: err}
		}
		bodyReader = bytes.NewReader(payload)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, d.Method, c.url(d.Path), bodyReader)
	if err != nil {
		return 0, nil, &APIError{StatusCode: 0, Message: "build request", RawError: err}
	}
	if d.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !d.SkipAuth {
		if token := c.store.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, v := range d.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxResponseBodyBytes))
	if err != nil {
		return 0, nil, classifyTransportError(err)
	}
	return resp.StatusCode, body, nil
}

// classifyTransportError separates deadline expiry (408) from everything
// else that prevented an HTTP exchange (0).
func classifyTransportError(err error) *APIError {
	var ue *url.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ue) && ue.Timeout()) {
		return &APIError{
			StatusCode: http.StatusRequestTimeout,
			Message:    "request timed out",
			RawError:   err,
		}
	}
	return &APIError{StatusCode: 0, Message: "network error", RawError: err}
}

// sleep waits for the backoff delay unless the context ends first.
func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "backoff interrupted")
	case <-timer.C:
		return nil
	}
}

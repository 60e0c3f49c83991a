package client

import (
	"context"
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/qrshare/qrshare-go/credential"
	"github.com/qrshare/qrshare-go/monitor"
)

// refreshRequest is the unauthenticated refresh-endpoint payload.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// refreshCredentials runs one credential refresh cycle. Concurrent requests
// that observe a 401 at the same time are coordinated through a
// singleflight group: at most one refresh call is outstanding at a time and
// every waiter shares its outcome.
func (c *Client) refreshCredentials(ctx context.Context) error {
	_, err, shared := c.refreshGroup.Do("refresh", func() (any, error) {
		return nil, c.doRefresh(ctx)
	})
	if shared {
		c.logger.Debug("joined in-flight credential refresh")
	}
	return err
}

func (c *Client) doRefresh(ctx context.Context) error {
	pair, ok := c.store.Tokens()
	if !ok || pair.RefreshToken == "" {
		// No refresh token on hand: fail without a network call.
		monitor.CountRefresh("no_token")
		return errors.New("no refresh token available")
	}

	status, body, attemptErr := c.attempt(ctx, RequestDescriptor{
		Method:   http.MethodPost,
		Path:     refreshPath,
		Body:     refreshRequest{RefreshToken: pair.RefreshToken},
		Timeout:  c.timeout,
		SkipAuth: true,
	})
	if attemptErr != nil {
		monitor.CountRefresh("failure")
		return errors.Wrap(attemptErr, "call refresh endpoint")
	}
	if status < 200 || status >= 300 {
		monitor.CountRefresh("failure")
		return errors.Wrapf(parseErrorBody(status, body), "refresh rejected")
	}

	env := decodeEnvelope(body)
	fresh, err := DataAs[credential.Pair](&env)
	if err != nil {
		monitor.CountRefresh("failure")
		return errors.Wrap(err, "decode refreshed credentials")
	}
	if fresh.AccessToken == "" || fresh.RefreshToken == "" {
		monitor.CountRefresh("failure")
		return errors.New("refresh response missing tokens")
	}

	if err := c.store.SetTokens(fresh); err != nil {
		monitor.CountRefresh("failure")
		return errors.Wrap(err, "store refreshed credentials")
	}
	monitor.CountRefresh("success")
	return nil
}

// forceLogout clears the credential store and notifies the caller's
// environment so it can route to the sign-in entry point.
func (c *Client) forceLogout() {
	if err := c.store.Logout(); err != nil {
		c.logger.Error("clear credential store on forced logout", zap.Error(err))
	}
	monitor.CountForcedLogout()
	if c.onForcedLogout != nil {
		c.onForcedLogout()
	}
}

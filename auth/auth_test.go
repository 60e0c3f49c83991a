package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrshare/qrshare-go/client"
	"github.com/qrshare/qrshare-go/credential"
)

func newService(t *testing.T, r *gin.Engine) (*Service, *credential.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	store := credential.NewMemoryStore()
	api := client.New(store,
		client.WithBaseURL(srv.URL),
		client.WithBaseDelay(5*time.Millisecond),
	)
	return NewService(api), store
}

// TestLoginStoresCredentialsAndProfile covers the happy sign-in path.
func TestLoginStoresCredentialsAndProfile(t *testing.T) {
	r := gin.New()
	r.POST("/api/v1/auth/login", func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		assert.Equal(t, "ada@example.com", req.Email)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"user": gin.H{"id": 7, "email": "ada@example.com", "displayName": "Ada"},
			"tokens": gin.H{
				"accessToken":  "access-1",
				"refreshToken": "refresh-1",
				"tokenType":    "Bearer",
				"expiresIn":    3600,
			},
		}})
	})
	svc, store := newService(t, r)

	user, err := svc.Login(context.Background(), "ada@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.DisplayName)
	assert.True(t, store.IsAuthenticated())
	pair, ok := store.Tokens()
	require.True(t, ok)
	assert.Equal(t, "access-1", pair.AccessToken)
}

// TestLoginRejectionSurfacesBackendMessage reproduces a 401 with a nested
// error body: the surfaced error carries the backend message and
// classifies as an inline credentials failure.
func TestLoginRejectionSurfacesBackendMessage(t *testing.T) {
	r := gin.New()
	r.POST("/api/v1/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"code": "INVALID_CREDENTIALS", "message": "Invalid email or password"},
		})
	})
	svc, store := newService(t, r)

	_, err := svc.Login(context.Background(), "ada@example.com", "wrong")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	assert.False(t, store.IsAuthenticated())

	ui := client.Classify(apiErr, client.Actions{})
	assert.Equal(t, "Invalid email or password", ui.Message)
	assert.Equal(t, client.DisplayInline, ui.Display)
}

// TestLoginValidatesBeforeNetwork rejects malformed input without touching
// the backend.
func TestLoginValidatesBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	r := gin.New()
	r.POST("/api/v1/auth/login", func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
	})
	svc, _ := newService(t, r)

	_, err := svc.Login(context.Background(), "not-an-email", "x")
	assert.Error(t, err)
	_, err = svc.Login(context.Background(), "ada@example.com", "")
	assert.Error(t, err)
	assert.EqualValues(t, 0, calls.Load())
}

// TestLogoutClearsStoreDespiteRevokeFailure keeps the local clear
// unconditional.
func TestLogoutClearsStoreDespiteRevokeFailure(t *testing.T) {
	r := gin.New()
	r.POST("/api/v1/auth/logout", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "session unknown"})
	})
	svc, store := newService(t, r)
	require.NoError(t, store.Login(credential.Pair{AccessToken: "a", RefreshToken: "r"}, credential.User{Id: 1}))

	err := svc.Logout(context.Background())
	assert.Error(t, err)
	assert.False(t, store.IsAuthenticated())
}

// TestMeDecodesProfile fetches the authenticated profile.
func TestMeDecodesProfile(t *testing.T) {
	r := gin.New()
	r.GET("/api/v1/auth/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"id": 7, "email": "ada@example.com", "displayName": "Ada",
		}})
	})
	svc, store := newService(t, r)
	require.NoError(t, store.Login(credential.Pair{AccessToken: "a", RefreshToken: "r"}, credential.User{}))

	user, err := svc.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, user.Id)
	assert.Equal(t, "Ada", user.DisplayName)
}

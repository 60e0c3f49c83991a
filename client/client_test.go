package client

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qrshare/qrshare-go/credential"
)

// newTestServer spins up a gin engine behind httptest. Routes must be
// registered under the versioned prefix the client prepends.
func newTestServer(t *testing.T, register func(r *gin.Engine)) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// newHTTPServer serves an already-assembled gin engine.
func newHTTPServer(t *testing.T, r *gin.Engine) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// newTestClient builds a client against the test server with an in-memory
// credential store and delays small enough for fast tests.
func newTestClient(t *testing.T, baseURL string, opts ...Option) (*Client, *credential.MemoryStore) {
	t.Helper()
	store := credential.NewMemoryStore()
	base := []Option{
		WithBaseURL(baseURL),
		WithBaseDelay(10 * time.Millisecond),
		WithDefaultTimeout(2 * time.Second),
	}
	return New(store, append(base, opts...)...), store
}

// seedTokens stores a credential pair so authenticated requests carry a
// bearer header.
func seedTokens(t *testing.T, store *credential.MemoryStore, access, refresh string) {
	t.Helper()
	err := store.Login(credential.Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    3600,
	}, credential.User{Id: 7, Email: "ada@example.com", DisplayName: "Ada"})
	if err != nil {
		t.Fatalf("seed tokens: %v", err)
	}
}

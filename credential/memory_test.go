package credential

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPair(access string) Pair {
	return Pair{
		AccessToken:  access,
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		ExpiresIn:    3600,
	}
}

func testUser() User {
	return User{Id: 7, Email: "ada@example.com", DisplayName: "Ada"}
}

// signedToken builds an unsigned-but-well-formed JWT with the given expiry.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	encode := func(v any) string {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(raw)
	}
	header := encode(map[string]string{"alg": "HS256", "typ": "JWT"})
	claims := encode(map[string]any{"sub": "7", "exp": exp.Unix()})
	return header + "." + claims + "." + base64.RawURLEncoding.EncodeToString([]byte("sig"))
}

// TestMemoryStoreLoginAndLogout covers the create/destroy lifecycle of the
// credential pair and profile.
func TestMemoryStoreLoginAndLogout(t *testing.T) {
	s := NewMemoryStore()
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.AccessToken())

	require.NoError(t, s.Login(testPair("access-1"), testUser()))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "access-1", s.AccessToken())

	user, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", user.Email)

	require.NoError(t, s.Logout())
	assert.False(t, s.IsAuthenticated())
	_, ok = s.Tokens()
	assert.False(t, ok)
	_, ok = s.User()
	assert.False(t, ok)
}

// TestMemoryStoreSetTokensKeepsProfile enforces the invariant that refresh
// replaces only the pair.
func TestMemoryStoreSetTokensKeepsProfile(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Login(testPair("access-1"), testUser()))

	require.NoError(t, s.SetTokens(testPair("access-2")))
	assert.Equal(t, "access-2", s.AccessToken())

	user, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, testUser(), user)
}

// TestMemoryStoreUserSnapshotIsReadOnly ensures mutating the returned
// profile does not leak back into the store.
func TestMemoryStoreUserSnapshotIsReadOnly(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Login(testPair("access-1"), testUser()))

	snapshot, ok := s.User()
	require.True(t, ok)
	snapshot.Email = "mallory@example.com"

	fresh, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", fresh.Email)
}

// TestMemoryStoreExpiredTokenNotAuthenticated checks the best-effort exp
// claim inspection.
func TestMemoryStoreExpiredTokenNotAuthenticated(t *testing.T) {
	s := NewMemoryStore()
	expired := signedToken(t, time.Now().Add(-time.Hour))
	require.NoError(t, s.Login(testPair(expired), testUser()))
	assert.False(t, s.IsAuthenticated())

	valid := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, s.SetTokens(testPair(valid)))
	assert.True(t, s.IsAuthenticated())
}

// TestOpaqueTokenTreatedAsValid ensures non-JWT tokens do not lock the
// user out locally; the backend stays authoritative.
func TestOpaqueTokenTreatedAsValid(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Login(testPair("opaque-token"), testUser()))
	assert.True(t, s.IsAuthenticated())
}

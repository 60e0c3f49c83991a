// Package credential holds the client's credential state: the access/refresh
// token pair and the authenticated user's profile. The pair is replaced
// wholesale on refresh and destroyed on logout; the profile is written only
// by Login.
package credential

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// Pair is the access/refresh token tuple issued by the backend.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// User is the authenticated user's profile as returned by the backend.
type User struct {
	Id          int    `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Store is the single shared credential state injected into the API client.
//
// Contract:
//   - Login is the only operation that stores the user profile; SetTokens
//     (used by the refresh cycle) replaces the token pair only.
//   - Logout clears both tokens and profile.
//   - User returns a read-only snapshot; mutating it never affects the store.
type Store interface {
	AccessToken() string
	Tokens() (Pair, bool)
	SetTokens(pair Pair) error
	Login(pair Pair, user User) error
	Logout() error
	IsAuthenticated() bool
	User() (User, bool)
}

// accessTokenExpired inspects the token's exp claim without verifying the
// signature. Tokens that do not parse as JWTs or carry no exp claim are
// treated as unexpired; the backend remains the authority and will answer
// 401 for anything actually invalid.
func accessTokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return time.Now().After(time.Unix(int64(exp), 0))
}

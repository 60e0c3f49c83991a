package credential

import (
	"sync"

	"github.com/Laisky/errors/v2"
	"github.com/jinzhu/copier"
)

// MemoryStore keeps credentials in process memory. Used by tests and by
// callers that must not persist tokens to disk.
type MemoryStore struct {
	mu      sync.RWMutex
	pair    Pair
	user    User
	hasPair bool
	hasUser bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.AccessToken
}

func (s *MemoryStore) Tokens() (Pair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair, s.hasPair
}

func (s *MemoryStore) SetTokens(pair Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	s.hasPair = true
	return nil
}

func (s *MemoryStore) Login(pair Pair, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	s.user = user
	s.hasPair = true
	s.hasUser = true
	return nil
}

func (s *MemoryStore) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	s.user = User{}
	s.hasPair = false
	s.hasUser = false
	return nil
}

func (s *MemoryStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasPair && s.pair.AccessToken != "" && !accessTokenExpired(s.pair.AccessToken)
}

// User returns a snapshot copy of the stored profile.
func (s *MemoryStore) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasUser {
		return User{}, false
	}
	var snapshot User
	if err := copier.Copy(&snapshot, &s.user); err != nil {
		// copier only fails on invalid arguments, which cannot happen here
		panic(errors.Wrap(err, "copy user snapshot"))
	}
	return snapshot, true
}

package credential

import (
	"encoding/json"
	"sync"

	"github.com/Laisky/errors/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// recordId is the primary key of the single credential row.
const recordId = 1

// credentialRecord is the persisted shape of the credential state.
type credentialRecord struct {
	Id           int    `gorm:"primaryKey"`
	AccessToken  string `gorm:"type:text"`
	RefreshToken string `gorm:"type:text"`
	TokenType    string
	ExpiresIn    int64  `gorm:"bigint"`
	UserJSON     string `gorm:"type:text"`
	UpdatedAt    int64  `gorm:"bigint;autoUpdateTime:milli"`
}

// SQLiteStore is the durable Store backed by a client-local sqlite file.
// A process-level mutex serializes writers; sqlite itself serializes across
// processes.
type SQLiteStore struct {
	mu sync.Mutex
	db *gorm.DB
}

// OpenSQLiteStore opens (creating if necessary) the credential database at
// the given path. Use ":memory:" for a throwaway store.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open credential db %q", path)
	}
	if err := db.AutoMigrate(&credentialRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrate credential db")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) load() (credentialRecord, bool, error) {
	var rec credentialRecord
	err := s.db.First(&rec, recordId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return credentialRecord{}, false, nil
	}
	if err != nil {
		return credentialRecord{}, false, errors.Wrap(err, "load credential record")
	}
	return rec, true, nil
}

func (s *SQLiteStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok, err := s.load()
	if err != nil || !ok {
		return ""
	}
	return rec.AccessToken
}

// Tokens reports any stored pair, keyed on row presence so that a pair
// holding only a refresh token still feeds the refresh cycle.
func (s *SQLiteStore) Tokens() (Pair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok, err := s.load()
	if err != nil || !ok {
		return Pair{}, false
	}
	return Pair{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		TokenType:    rec.TokenType,
		ExpiresIn:    rec.ExpiresIn,
	}, true
}

// SetTokens replaces the token pair and leaves the stored profile untouched.
func (s *SQLiteStore) SetTokens(pair Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, _, err := s.load()
	if err != nil {
		return err
	}
	rec.Id = recordId
	rec.AccessToken = pair.AccessToken
	rec.RefreshToken = pair.RefreshToken
	rec.TokenType = pair.TokenType
	rec.ExpiresIn = pair.ExpiresIn
	if err := s.db.Save(&rec).Error; err != nil {
		return errors.Wrap(err, "save token pair")
	}
	return nil
}

func (s *SQLiteStore) Login(pair Pair, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userJSON, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "marshal user profile")
	}
	rec := credentialRecord{
		Id:           recordId,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		UserJSON:     string(userJSON),
	}
	if err := s.db.Save(&rec).Error; err != nil {
		return errors.Wrap(err, "save login record")
	}
	return nil
}

func (s *SQLiteStore) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.Delete(&credentialRecord{}, recordId).Error
	if err != nil {
		return errors.Wrap(err, "clear credential record")
	}
	return nil
}

func (s *SQLiteStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok, err := s.load()
	if err != nil || !ok || rec.AccessToken == "" {
		return false
	}
	return !accessTokenExpired(rec.AccessToken)
}

func (s *SQLiteStore) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok, err := s.load()
	if err != nil || !ok || rec.UserJSON == "" {
		return User{}, false
	}
	var user User
	if err := json.Unmarshal([]byte(rec.UserJSON), &user); err != nil {
		return User{}, false
	}
	return user, true
}

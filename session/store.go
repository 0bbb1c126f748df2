package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

// ErrTokenNotFound means the token is unknown, expired, or revoked.
var ErrTokenNotFound = errors.New("token not found")

// Token is one issued bearer credential bound to a user.
type Token struct {
	UserID    string `json:"uid"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp,omitempty"` // 0 = no expiry
}

// Store holds opaque bearer tokens. Implementations must be safe for
// concurrent use and support bulk revocation per user (password reset,
// user deletion).
type Store interface {
	Create(ctx context.Context, token, userID string) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// NewToken returns a fresh opaque bearer token.
func NewToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failure is not recoverable
	}
	return hex.EncodeToString(buf)
}

// MemoryStore keeps tokens in-process. Used in tests and in deployments
// without Redis; counters are still shared across request handlers because
// there is a single instance per process.
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	tokens map[string]Token
	byUser map[string]map[string]struct{}
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:    ttl,
		tokens: make(map[string]Token),
		byUser: make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) Create(_ context.Context, token, userID string) error {
	now := time.Now()
	t := Token{UserID: userID, IssuedAt: now.Unix()}
	if s.ttl > 0 {
		t.ExpiresAt = now.Add(s.ttl).Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = t
	if s.byUser[userID] == nil {
		s.byUser[userID] = make(map[string]struct{})
	}
	s.byUser[userID][token] = struct{}{}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	if t.ExpiresAt > 0 && time.Now().Unix() >= t.ExpiresAt {
		s.dropLocked(token, t.UserID)
		return nil, ErrTokenNotFound
	}
	return &t, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[token]; ok {
		s.dropLocked(token, t.UserID)
	}
	return nil
}

func (s *MemoryStore) RevokeAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token := range s.byUser[userID] {
		delete(s.tokens, token)
	}
	delete(s.byUser, userID)
	return nil
}

func (s *MemoryStore) dropLocked(token, userID string) {
	delete(s.tokens, token)
	if set := s.byUser[userID]; set != nil {
		delete(set, token)
		if len(set) == 0 {
			delete(s.byUser, userID)
		}
	}
}

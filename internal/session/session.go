// Package session issues bearer tokens for logged-in users and keeps them in
// a JSON state file, so sessions survive a process restart.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/mkowalczyk/triplog/internal/domain"
)

// Store maps opaque tokens to user emails.
type Store struct {
	path string

	mu     sync.Mutex
	tokens map[string]string
}

// NewStore loads any previously persisted sessions from path. A missing or
// unreadable state file starts the store empty rather than failing startup.
func NewStore(path string) *Store {
	s := &Store{path: path, tokens: make(map[string]string)}
	if data, err := os.ReadFile(path); err == nil {
		var tokens map[string]string
		if json.Unmarshal(data, &tokens) == nil && tokens != nil {
			s.tokens = tokens
		}
	}
	return s
}

// Login issues a fresh token for email.
func (s *Store) Login(email string) string {
	token := uuid.NewString()

	s.mu.Lock()
	s.tokens[token] = email
	s.persistLocked()
	s.mu.Unlock()

	return token
}

// Resolve returns the email a token was issued to.
func (s *Store) Resolve(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.tokens[token]
	if !ok {
		return "", fmt.Errorf("session: unknown token: %w", domain.ErrUnauthorized)
	}
	return email, nil
}

// Logout invalidates a token. Unknown tokens are a no-op.
func (s *Store) Logout(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.persistLocked()
	s.mu.Unlock()
}

// LogoutAll invalidates every token issued to email, for password changes.
func (s *Store) LogoutAll(email string) {
	s.mu.Lock()
	for token, e := range s.tokens {
		if e == email {
			delete(s.tokens, token)
		}
	}
	s.persistLocked()
	s.mu.Unlock()
}

// persistLocked writes the state file. Persistence is best effort: a failed
// write leaves sessions valid in memory for the life of the process.
func (s *Store) persistLocked() {
	data, err := json.Marshal(s.tokens)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(s.path, data, 0o600)
}

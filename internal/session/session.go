// Package session manages the persisted signed-in session: the user record
// and the bearer token, stored under separate storage keys.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nexus-ai/nexus/internal/store"
)

// Storage keys. The user record and the credential are persisted separately.
const (
	userKey  = "user"
	tokenKey = "token"
)

// User is the signed-in visitor's account record as returned by the backend.
type User struct {
	ID         int    `json:"id"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
	BusinessID int    `json:"business_id"`
	Tokens     int    `json:"tokens,omitempty"`
}

// Session holds the current user and credential.
// Invariant: AuthToken is present iff User is present.
type Session struct {
	User      *User
	AuthToken string
}

// SignedIn reports whether a user is present.
func (s *Session) SignedIn() bool {
	return s != nil && s.User != nil
}

// Load restores a session from storage. A missing user or token yields an
// empty (signed-out) session, never an error: a half-persisted session is
// treated as absent so the token<->user invariant holds.
func Load(st store.Store) (*Session, error) {
	userData, userErr := st.Get(userKey)
	tokenData, tokenErr := st.Get(tokenKey)

	if errors.Is(userErr, store.ErrNotFound) || errors.Is(tokenErr, store.ErrNotFound) {
		return &Session{}, nil
	}
	if userErr != nil {
		return nil, fmt.Errorf("load user: %w", userErr)
	}
	if tokenErr != nil {
		return nil, fmt.Errorf("load token: %w", tokenErr)
	}

	var u User
	if err := json.Unmarshal(userData, &u); err != nil {
		return nil, fmt.Errorf("parse user: %w", err)
	}

	return &Session{User: &u, AuthToken: string(tokenData)}, nil
}

// Save persists the session after a successful login.
// Rejects sessions that violate the token<->user invariant.
func Save(st store.Store, s *Session) error {
	if s == nil || s.User == nil || s.AuthToken == "" {
		return errors.New("session: user and token are both required")
	}

	data, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := st.Set(userKey, data); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if err := st.Set(tokenKey, []byte(s.AuthToken)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear destroys the persisted session (logout).
func Clear(st store.Store) error {
	if err := st.Delete(userKey); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	if err := st.Delete(tokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

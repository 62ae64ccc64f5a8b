// Package session persists the dashboard's login state between runs.
package session

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/intellidetect/dashboard/pkg/domain"
)

// Keys held by a Store. Both are written at login and cleared together.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is the persisted client-side session state.
type Store interface {
	// Get returns the value stored under key and whether the key exists.
	Get(key string) (string, bool)
	// Set overwrites the value stored under key.
	Set(key, value string) error
	// Clear removes the given keys. Missing keys are ignored.
	Clear(keys ...string) error
}

// Token returns the stored bearer token.
func Token(s Store) (string, bool) {
	return s.Get(KeyToken)
}

// LoggedIn reports whether a token key exists. The token itself is not inspected.
func LoggedIn(s Store) bool {
	_, ok := s.Get(KeyToken)
	return ok
}

// SaveLogin stores the token and, when known, the user profile. Without a
// profile any previously cached one is dropped, so the two keys never describe
// different accounts.
func SaveLogin(s Store, token string, u *domain.User) error {
	if err := s.Set(KeyToken, token); err != nil {
		return fmt.Errorf("session.SaveLogin: %w", err)
	}
	if u == nil {
		if err := s.Clear(KeyUser); err != nil {
			return fmt.Errorf("session.SaveLogin: %w", err)
		}
		return nil
	}
	if err := SaveUser(s, u); err != nil {
		return fmt.Errorf("session.SaveLogin: %w", err)
	}
	return nil
}

// SaveUser replaces the cached user profile.
func SaveUser(s Store, u *domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return s.Set(KeyUser, string(data))
}

// CachedUser returns the cached user profile, or nil when none is stored or it
// cannot be decoded.
func CachedUser(s Store) *domain.User {
	raw, ok := s.Get(KeyUser)
	if !ok || raw == "" {
		return nil
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return &u
}

// Logout removes the token and the cached profile.
func Logout(s Store) error {
	if err := s.Clear(KeyToken, KeyUser); err != nil {
		return fmt.Errorf("session.Logout: %w", err)
	}
	return nil
}

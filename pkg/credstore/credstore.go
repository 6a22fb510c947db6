// Package credstore persists the credentials issued to a movevote client:
// the access token, the refresh token and a denormalized user record. The
// three values live under fixed keys in a pluggable key-value backend and
// are independently lifecycled, matching what a browser client keeps in
// session storage.
package credstore

import (
	"context"
	"encoding/json"
	"errors"
)

// Fixed logical keys. These are part of the on-disk contract, renaming one
// orphans previously stored values.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
)

// UserRecord is the identity snapshot kept for display purposes. It is
// denormalized from the login response and never authoritative.
type UserRecord struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// complete reports whether every required field is present.
func (u UserRecord) complete() bool {
	return u.UserID != "" && u.Email != "" && u.Username != ""
}

// Backend is the key-value persistence a Store writes through. Get reports
// (value, found, error); a missing key is not an error.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Store holds client credentials in a Backend. A Store constructed with
// Detached has no backend: every write and remove succeeds silently and
// every read reports absent. That mode is decided at construction, callers
// never probe for storage availability at call sites.
type Store struct {
	backend Backend
}

// New returns a Store persisting through the given backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Detached returns a Store with no persistence. Useful for execution
// contexts without a writable storage location.
func Detached() *Store {
	return &Store{}
}

// Persistent reports whether the store has a backend.
func (s *Store) Persistent() bool { return s.backend != nil }

// Close releases the underlying backend, if any.
func (s *Store) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// SetAccessToken stores the access token.
func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	return s.set(ctx, keyAccessToken, token)
}

// AccessToken returns the stored access token, or "" when absent.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, keyAccessToken)
}

// RemoveAccessToken deletes the stored access token.
func (s *Store) RemoveAccessToken(ctx context.Context) error {
	return s.delete(ctx, keyAccessToken)
}

// SetRefreshToken stores the refresh token.
func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.set(ctx, keyRefreshToken, token)
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, keyRefreshToken)
}

// RemoveRefreshToken deletes the stored refresh token.
func (s *Store) RemoveRefreshToken(ctx context.Context) error {
	return s.delete(ctx, keyRefreshToken)
}

// SetUser stores the user record as JSON.
func (s *Store) SetUser(ctx context.Context, user UserRecord) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.set(ctx, keyUser, string(raw))
}

// User returns the stored user record, or nil when absent. A stored value
// that fails to deserialize, or deserializes with a missing field, is
// treated as absent and the entry is deleted so the corruption does not
// survive the read.
func (s *Store) User(ctx context.Context) (*UserRecord, error) {
	raw, err := s.get(ctx, keyUser)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var user UserRecord
	if err := json.Unmarshal([]byte(raw), &user); err != nil || !user.complete() {
		_ = s.delete(ctx, keyUser)
		return nil, nil
	}

	return &user, nil
}

// RemoveUser deletes the stored user record.
func (s *Store) RemoveUser(ctx context.Context) error {
	return s.delete(ctx, keyUser)
}

// ClearAll removes the access token, refresh token and user record. Each
// delete is attempted even if an earlier one fails.
func (s *Store) ClearAll(ctx context.Context) error {
	return errors.Join(
		s.delete(ctx, keyAccessToken),
		s.delete(ctx, keyRefreshToken),
		s.delete(ctx, keyUser),
	)
}

func (s *Store) set(ctx context.Context, key, value string) error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Set(ctx, key, value)
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	if s.backend == nil {
		return "", nil
	}

	value, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return value, nil
}

func (s *Store) delete(ctx context.Context, key string) error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Delete(ctx, key)
}

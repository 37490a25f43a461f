// Package session keeps the signed-in Session in memory and mirrors it to
// durable key/value storage so a restart preserves the login.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"signup/internal/adapters/storage/kv"
	domain "signup/internal/domain/session"
)

// Store owns the current Session. It is not safe for concurrent use; the
// controller's dispatcher is its only caller.
type Store struct {
	kv      kv.Store
	current domain.Session
}

// NewStore creates a Store backed by durable storage. The in-memory session
// starts empty until Restore or Establish is called.
func NewStore(backing kv.Store) *Store {
	return &Store{kv: backing}
}

// Current returns the in-memory session.
func (s *Store) Current() domain.Session {
	return s.current
}

// Restore loads the session from durable storage. Any missing or blank key
// yields the empty session; only a failing backing store is an error.
// PRE: none
// POST: Current() equals the returned session
func (s *Store) Restore(ctx context.Context) (domain.Session, error) {
	values := make(map[string]string, len(domain.Keys))
	for _, key := range domain.Keys {
		v, err := s.kv.Get(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			s.current = domain.Session{}
			return domain.Session{}, fmt.Errorf("read %s: %w", key, err)
		}
		values[key] = v
	}

	s.current = domain.FromValues(values)
	if s.current.IsEmpty() && len(values) > 0 {
		slog.Debug("session_event", "event", "partial_session_ignored", "keys", len(values))
	}
	return s.current, nil
}

// Establish sets the session and writes all three durable keys.
// PRE: token, email and role come from a successful login
// POST: Current() is the new session and durable storage holds it
func (s *Store) Establish(ctx context.Context, token, email, role string) (domain.Session, error) {
	sess, err := domain.New(token, email, role)
	if err != nil {
		return domain.Session{}, err
	}
	for key, value := range sess.Values() {
		if err := s.kv.Set(ctx, key, value); err != nil {
			return domain.Session{}, fmt.Errorf("write %s: %w", key, err)
		}
	}
	s.current = sess
	slog.Info("session_event", "event", "established", "email", email, "role", role)
	return sess, nil
}

// Clear empties the in-memory session and removes all durable keys. The
// in-memory session is cleared even when a durable delete fails.
// PRE: none
// POST: Current() is empty
func (s *Store) Clear(ctx context.Context) error {
	s.current = domain.Session{}
	var errs []error
	for _, key := range domain.Keys {
		if err := s.kv.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	slog.Info("session_event", "event", "cleared")
	return errors.Join(errs...)
}

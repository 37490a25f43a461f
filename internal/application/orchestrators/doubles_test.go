package orchestrators

import (
	"context"
	"errors"
	"fmt"

	emailAdapter "signup/internal/adapters/email"
	"signup/internal/domain/account"
	"signup/internal/domain/activity"
	"signup/internal/domain/outbox"
)

// --- in-memory test doubles ---

type memAccountStore struct {
	accounts map[string]account.Account // keyed by email
	saves    int
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: make(map[string]account.Account)}
}

func (s *memAccountStore) Save(_ context.Context, a account.Account) error {
	s.accounts[a.Email] = a
	s.saves++
	return nil
}

func (s *memAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := s.accounts[email]
	if !ok {
		return account.Account{}, fmt.Errorf("account not found: %s", email)
	}
	return a, nil
}

type memActivityStore struct {
	activities []activity.Activity
	mutations  int
}

func (s *memActivityStore) find(name string) (*activity.Activity, error) {
	for i := range s.activities {
		if s.activities[i].Name == name {
			return &s.activities[i], nil
		}
	}
	return nil, activity.ErrActivityNotFound
}

func (s *memActivityStore) AddParticipant(_ context.Context, name, email string) (activity.Activity, error) {
	a, err := s.find(name)
	if err != nil {
		return activity.Activity{}, err
	}
	if err := a.AddParticipant(email); err != nil {
		return activity.Activity{}, err
	}
	s.mutations++
	return *a, nil
}

func (s *memActivityStore) RemoveParticipant(_ context.Context, name, email string) (activity.Activity, error) {
	a, err := s.find(name)
	if err != nil {
		return activity.Activity{}, err
	}
	if err := a.RemoveParticipant(email); err != nil {
		return activity.Activity{}, err
	}
	s.mutations++
	return *a, nil
}

func (s *memActivityStore) Save(_ context.Context, a activity.Activity) error {
	if existing, err := s.find(a.Name); err == nil {
		*existing = a
		return nil
	}
	s.activities = append(s.activities, a)
	return nil
}

func (s *memActivityStore) Count(context.Context) (int, error) {
	return len(s.activities), nil
}

type recordingSender struct {
	sent []emailAdapter.SendRequest
	err  error
}

func (s *recordingSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	if s.err != nil {
		return emailAdapter.SendResult{}, s.err
	}
	s.sent = append(s.sent, req)
	return emailAdapter.SendResult{MessageID: "m1"}, nil
}

var errSendFailed = errors.New("provider down")

type memOutboxStore struct {
	order   []string
	entries map[string]outbox.Entry
	saveErr error
}

func newMemOutboxStore() *memOutboxStore {
	return &memOutboxStore{entries: make(map[string]outbox.Entry)}
}

func (s *memOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if _, ok := s.entries[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	s.entries[e.ID] = e
	return nil
}

func (s *memOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return outbox.Entry{}, fmt.Errorf("entry %s not found", id)
	}
	return e, nil
}

func (s *memOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, id := range s.order {
		e := s.entries[id]
		if (e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

package outbox_test

import (
	"errors"
	"testing"
	"time"

	"signup/internal/domain/outbox"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entry   outbox.Entry
		wantErr error
	}{
		{"valid", outbox.New("1", outbox.KindSignUpEmail, "{}", t0), nil},
		{"no kind", outbox.Entry{Payload: "{}", CreatedAt: t0}, outbox.ErrEmptyKind},
		{"no payload", outbox.Entry{Kind: outbox.KindSignUpEmail, CreatedAt: t0}, outbox.ErrEmptyPayload},
		{"no created_at", outbox.Entry{Kind: outbox.KindSignUpEmail, Payload: "{}"}, outbox.ErrNoCreatedAt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.entry.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	e := outbox.Entry{Kind: outbox.KindSignUpEmail, Payload: "{}", CreatedAt: t0}
	if err := e.Validate(); err != nil || e.MaxAttempts != outbox.DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, %v; want default", e.MaxAttempts, err)
	}
}

func TestEntry_Lifecycle(t *testing.T) {
	e := outbox.New("1", outbox.KindSignUpEmail, "{}", t0)
	e.MaxAttempts = 2

	e.MarkAttempt(t0)
	e.MarkFailed(errors.New("smtp down"))
	if e.Status != outbox.StatusRetrying || !e.CanRetry() || e.IsTerminal() {
		t.Fatalf("after first failure: %+v", e)
	}

	e.MarkAttempt(t0.Add(time.Minute))
	e.MarkFailed(errors.New("smtp down"))
	if e.Status != outbox.StatusFailed || e.CanRetry() || !e.IsTerminal() {
		t.Fatalf("after last failure: %+v", e)
	}
	if e.ErrorMessage != "smtp down" {
		t.Errorf("ErrorMessage = %q", e.ErrorMessage)
	}

	ok := outbox.New("2", outbox.KindSignUpEmail, "{}", t0)
	ok.MarkAttempt(t0)
	ok.MarkSuccess("msg-1")
	if ok.Status != outbox.StatusDone || ok.ExternalID != "msg-1" || !ok.IsTerminal() {
		t.Errorf("after success: %+v", ok)
	}
}

func TestEntry_NextRetryDelay(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{10, time.Minute},
		{64, time.Minute},
	}
	for _, tt := range tests {
		e := outbox.Entry{Attempts: tt.attempts}
		if got := e.NextRetryDelay(time.Second, time.Minute); got != tt.want {
			t.Errorf("attempts=%d: delay = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}

func TestEntry_Due(t *testing.T) {
	e := outbox.New("1", outbox.KindSignUpEmail, "{}", t0)
	if !e.Due(t0, time.Second, time.Minute) {
		t.Error("a fresh entry is due immediately")
	}

	e.MarkAttempt(t0)
	e.MarkFailed(errors.New("x"))
	if e.Due(t0.Add(time.Second), time.Second, time.Minute) {
		t.Error("retry after 1s, want backoff of 2s")
	}
	if !e.Due(t0.Add(2*time.Second), time.Second, time.Minute) {
		t.Error("retry after 2s should be due")
	}

	e.MarkSuccess("")
	if e.Due(t0.Add(time.Hour), time.Second, time.Minute) {
		t.Error("done entries are never due")
	}
}

package orchestrators

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	emailAdapter "signup/internal/adapters/email"
	"signup/internal/domain/activity"
	"signup/internal/domain/outbox"
)

func TestExecuteQueueSignUpEmail(t *testing.T) {
	store := newMemOutboxStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	deps := QueueSignUpEmailDeps{OutboxStore: store, From: "from@x.com", ReplyTo: "reply@x.com", Now: func() time.Time { return now }}
	a := activity.Activity{Name: "Art_Club <b>", Description: "Paint", Schedule: "Thursdays"}

	entry, err := ExecuteQueueSignUpEmail(context.Background(), NotifySignUpInput{Activity: a, Email: "s@x.com"}, deps)
	if err != nil {
		t.Fatalf("ExecuteQueueSignUpEmail: %v", err)
	}
	if entry.Kind != outbox.KindSignUpEmail || entry.Status != outbox.StatusPending || !entry.CreatedAt.Equal(now) {
		t.Errorf("entry = %+v", entry)
	}
	if len(store.entries) != 1 {
		t.Fatalf("stored %d entries, want 1", len(store.entries))
	}

	var req emailAdapter.SendRequest
	if err := json.Unmarshal([]byte(store.entries[entry.ID].Payload), &req); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if req.To[0] != "s@x.com" || req.From != "from@x.com" || req.ReplyTo != "reply@x.com" {
		t.Errorf("request = %+v", req)
	}
	if !strings.Contains(req.Subject, "Art_Club <b>") {
		t.Errorf("subject = %q", req.Subject)
	}
	if strings.Contains(req.HTML, "<b>") || !strings.Contains(req.HTML, "<strong>") || !strings.Contains(req.HTML, "Thursdays") {
		t.Errorf("html = %s", req.HTML)
	}
}

func TestSignUpNotifier_SwallowsFailures(t *testing.T) {
	store := newMemOutboxStore()
	store.saveErr = errSendFailed
	notify := SignUpNotifier(QueueSignUpEmailDeps{OutboxStore: store})

	notify(context.Background(), activity.Activity{Name: "Chess Club"}, "s@x.com")

	if len(store.entries) != 0 {
		t.Errorf("entries = %d, want 0", len(store.entries))
	}
}

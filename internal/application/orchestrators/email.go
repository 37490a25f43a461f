package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	emailAdapter "signup/internal/adapters/email"
	"signup/internal/domain/activity"
	"signup/internal/domain/outbox"
)

// NotifySignUpInput carries input for the sign-up confirmation email.
type NotifySignUpInput struct {
	Activity activity.Activity
	Email    string
}

// OutboxStoreForQueue defines the store interface needed to queue an email.
type OutboxStoreForQueue interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// QueueSignUpEmailDeps holds dependencies for QueueSignUpEmail.
type QueueSignUpEmailDeps struct {
	OutboxStore OutboxStoreForQueue
	From        string
	ReplyTo     string
	Now         func() time.Time
}

// ExecuteQueueSignUpEmail stores a confirmation email for the participant.
// The outbox processor delivers it.
// PRE: input.Email is the participant that was just added
// POST: One pending outbox entry saved, or an error
func ExecuteQueueSignUpEmail(ctx context.Context, input NotifySignUpInput, deps QueueSignUpEmailDeps) (outbox.Entry, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	req, err := signUpEmail(input, deps.From, deps.ReplyTo)
	if err != nil {
		return outbox.Entry{}, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return outbox.Entry{}, fmt.Errorf("encode email: %w", err)
	}

	entry := outbox.New(uuid.New().String(), outbox.KindSignUpEmail, string(payload), now())
	if err := entry.Validate(); err != nil {
		return outbox.Entry{}, err
	}
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		return outbox.Entry{}, fmt.Errorf("queue email: %w", err)
	}
	slog.Info("email_event", "event", "confirmation_queued", "entry_id", entry.ID, "activity", input.Activity.Name, "email", input.Email)
	return entry, nil
}

// SignUpNotifier adapts ExecuteQueueSignUpEmail for SignUpParticipantDeps.Notify.
// Failures are logged and never fail the sign-up.
func SignUpNotifier(deps QueueSignUpEmailDeps) func(ctx context.Context, a activity.Activity, email string) {
	return func(ctx context.Context, a activity.Activity, email string) {
		if _, err := ExecuteQueueSignUpEmail(ctx, NotifySignUpInput{Activity: a, Email: email}, deps); err != nil {
			slog.Warn("email_event", "event", "confirmation_failed", "activity", a.Name, "email", email, "error", err)
		}
	}
}

func signUpEmail(input NotifySignUpInput, from, replyTo string) (emailAdapter.SendRequest, error) {
	html, err := emailAdapter.RenderMarkdown(signUpBody(input.Activity))
	if err != nil {
		return emailAdapter.SendRequest{}, err
	}
	return emailAdapter.SendRequest{
		To:      []string{input.Email},
		From:    from,
		Subject: fmt.Sprintf("You're signed up for %s", input.Activity.Name),
		HTML:    html,
		ReplyTo: replyTo,
	}, nil
}

func signUpBody(a activity.Activity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are signed up for **%s**.\n\n", escapeMarkdown(a.Name))
	if a.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(a.Description))
	}
	if a.Schedule != "" {
		fmt.Fprintf(&b, "Schedule: %s\n\n", escapeMarkdown(a.Schedule))
	}
	b.WriteString("To withdraw, ask a teacher or unregister yourself from the activities page.")
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;", "#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

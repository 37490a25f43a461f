package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"signup/internal/domain/account"
	"signup/internal/domain/activity"
)

// ActivityStoreForSignUp defines the store interface needed by SignUpParticipant.
type ActivityStoreForSignUp interface {
	AddParticipant(ctx context.Context, name, email string) (activity.Activity, error)
}

// SignUpParticipantInput carries input for the sign-up orchestrator.
type SignUpParticipantInput struct {
	ActorEmail   string
	ActorRole    string
	ActivityName string
	Email        string
}

// SignUpParticipantDeps holds dependencies for SignUpParticipant.
type SignUpParticipantDeps struct {
	ActivityStore ActivityStoreForSignUp
	// Notify is called after a successful sign-up. Optional.
	Notify func(ctx context.Context, a activity.Activity, email string)
}

// ErrSignUpForbidden is returned when a student signs up someone else.
var ErrSignUpForbidden = errors.New("students can only sign up themselves")

// ExecuteSignUpParticipant adds a participant to an activity.
// PRE: the actor has been authenticated
// POST: Returns the confirmation message; on error nothing is stored
// INVARIANT: participants never exceed max participants
func ExecuteSignUpParticipant(ctx context.Context, input SignUpParticipantInput, deps SignUpParticipantDeps) (string, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return "", activity.ErrEmptyParticipant
	}
	if !account.CanManageParticipant(input.ActorRole, input.ActorEmail, email) {
		slog.Info("roster_event", "event", "signup_denied", "actor", input.ActorEmail, "email", email)
		return "", ErrSignUpForbidden
	}

	updated, err := deps.ActivityStore.AddParticipant(ctx, input.ActivityName, email)
	if err != nil {
		return "", err
	}

	slog.Info("roster_event", "event", "signed_up", "activity", input.ActivityName, "email", email,
		"actor", input.ActorEmail, "spots_left", updated.SpotsLeft())
	if deps.Notify != nil {
		deps.Notify(ctx, updated, email)
	}
	return fmt.Sprintf("Signed up %s for %s", email, input.ActivityName), nil
}

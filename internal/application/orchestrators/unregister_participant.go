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

// ActivityStoreForUnregister defines the store interface needed by UnregisterParticipant.
type ActivityStoreForUnregister interface {
	RemoveParticipant(ctx context.Context, name, email string) (activity.Activity, error)
}

// UnregisterParticipantInput carries input for the unregister orchestrator.
type UnregisterParticipantInput struct {
	ActorEmail   string
	ActorRole    string
	ActivityName string
	Email        string
}

// UnregisterParticipantDeps holds dependencies for UnregisterParticipant.
type UnregisterParticipantDeps struct {
	ActivityStore ActivityStoreForUnregister
}

// ErrUnregisterForbidden is returned when a student removes someone else.
var ErrUnregisterForbidden = errors.New("students can only unregister themselves")

// ExecuteUnregisterParticipant removes a participant from an activity.
// PRE: the actor has been authenticated
// POST: Returns the confirmation message; on error nothing changes
func ExecuteUnregisterParticipant(ctx context.Context, input UnregisterParticipantInput, deps UnregisterParticipantDeps) (string, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return "", activity.ErrEmptyParticipant
	}
	if !account.CanManageParticipant(input.ActorRole, input.ActorEmail, email) {
		slog.Info("roster_event", "event", "unregister_denied", "actor", input.ActorEmail, "email", email)
		return "", ErrUnregisterForbidden
	}

	if _, err := deps.ActivityStore.RemoveParticipant(ctx, input.ActivityName, email); err != nil {
		return "", err
	}

	slog.Info("roster_event", "event", "unregistered", "activity", input.ActivityName, "email", email, "actor", input.ActorEmail)
	return fmt.Sprintf("Unregistered %s from %s", email, input.ActivityName), nil
}

package orchestrators

import (
	"context"
	"errors"
	"testing"

	"signup/internal/domain/account"
	"signup/internal/domain/activity"
)

func TestExecuteUnregisterParticipant(t *testing.T) {
	tests := []struct {
		name    string
		input   UnregisterParticipantInput
		want    string
		wantErr error
	}{
		{"teacher removes anyone", UnregisterParticipantInput{ActorEmail: "t@x.com", ActorRole: account.RoleTeacher, ActivityName: "Chess Club", Email: "a@x.com"}, "Unregistered a@x.com from Chess Club", nil},
		{"student removes self", UnregisterParticipantInput{ActorEmail: "b@x.com", ActorRole: account.RoleStudent, ActivityName: "Chess Club", Email: "b@x.com"}, "Unregistered b@x.com from Chess Club", nil},
		{"student removes another", UnregisterParticipantInput{ActorEmail: "b@x.com", ActorRole: account.RoleStudent, ActivityName: "Chess Club", Email: "a@x.com"}, "", ErrUnregisterForbidden},
		{"not signed up", UnregisterParticipantInput{ActorEmail: "t@x.com", ActorRole: account.RoleTeacher, ActivityName: "Chess Club", Email: "z@x.com"}, "", activity.ErrNotSignedUp},
		{"unknown activity", UnregisterParticipantInput{ActorEmail: "t@x.com", ActorRole: account.RoleTeacher, ActivityName: "Nope", Email: "a@x.com"}, "", activity.ErrActivityNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := chessStore(5, "a@x.com", "b@x.com")
			got, err := ExecuteUnregisterParticipant(context.Background(), tt.input, UnregisterParticipantDeps{ActivityStore: store})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
			if tt.wantErr != nil && store.mutations != 0 {
				t.Error("failed unregister changed the store")
			}
		})
	}
}

package orchestrators

import (
	"context"
	"errors"
	"testing"

	"signup/internal/domain/account"
)

func TestExecuteLogin(t *testing.T) {
	store := newMemAccountStore()
	acct := account.Account{ID: "a1", Email: "teacher@mergington.edu", Role: account.RoleTeacher}
	if err := acct.SetPassword("password"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	store.accounts[acct.Email] = acct
	deps := LoginDeps{AccountStore: store}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "teacher@mergington.edu", "password", nil},
		{"surrounding space", "  teacher@mergington.edu ", "password", nil},
		{"wrong password", "teacher@mergington.edu", "nope", ErrInvalidCredentials},
		{"unknown email", "ghost@mergington.edu", "password", ErrInvalidCredentials},
		{"empty password", "teacher@mergington.edu", "", ErrInvalidCredentials},
		{"empty email", "", "password", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExecuteLogin(context.Background(), LoginInput{Email: tt.email, Password: tt.password}, deps)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (got.Email != "teacher@mergington.edu" || got.Role != account.RoleTeacher || got.AccountID != "a1") {
				t.Errorf("result = %+v", got)
			}
		})
	}
}

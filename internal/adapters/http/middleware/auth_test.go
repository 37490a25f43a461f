package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"signup/internal/adapters/auth"
	"signup/internal/domain/account"
)

type stubAccounts map[string]account.Account

func (s stubAccounts) GetByEmail(_ context.Context, email string) (account.Account, error) {
	if a, ok := s[email]; ok {
		return a, nil
	}
	return account.Account{}, errors.New("not found")
}

func newBearerHandler(t *testing.T) (http.Handler, *auth.Tokens) {
	t.Helper()
	tokens, err := auth.NewTokens("secret", time.Minute)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	accounts := stubAccounts{
		"teacher@mergington.edu": {ID: "t1", Email: "teacher@mergington.edu", Role: account.RoleTeacher},
		"admin@mergington.edu":   {ID: "a1", Email: "admin@mergington.edu", Role: account.RoleAdmin},
	}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetIdentity(r.Context())
		if !ok {
			t.Error("identity missing from context")
		}
		WriteJSON(w, http.StatusOK, map[string]string{"email": id.Email, "role": id.Role})
	})
	return Chain(inner, Bearer(tokens, accounts)), tokens
}

func TestBearer(t *testing.T) {
	handler, tokens := newBearerHandler(t)
	valid, _ := tokens.Issue("teacher@mergington.edu", account.RoleTeacher)
	unknown, _ := tokens.Issue("ghost@mergington.edu", account.RoleTeacher)
	other, _ := auth.NewTokens("other-secret", time.Minute)
	forged, _ := other.Issue("teacher@mergington.edu", account.RoleAdmin)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusForbidden, DetailNotAuthenticated},
		{"wrong scheme", "Basic abc", http.StatusForbidden, DetailNotAuthenticated},
		{"empty token", "Bearer ", http.StatusForbidden, DetailNotAuthenticated},
		{"garbage", "Bearer nope", http.StatusUnauthorized, DetailBadCredentials},
		{"wrong secret", "Bearer " + forged, http.StatusUnauthorized, DetailBadCredentials},
		{"unknown user", "Bearer " + unknown, http.StatusUnauthorized, DetailUserNotFound},
		{"valid", "Bearer " + valid, http.StatusOK, "teacher@mergington.edu"},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, "teacher@mergington.edu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/activities/x/signup", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rr.Body.String(), tt.wantBody)
			}
			if tt.wantStatus == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("missing WWW-Authenticate challenge")
			}
		})
	}
}

// TestBearer_RoleFromAccount verifies the stored role wins over the token claim.
func TestBearer_RoleFromAccount(t *testing.T) {
	handler, tokens := newBearerHandler(t)
	tok, _ := tokens.Issue("teacher@mergington.edu", account.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !strings.Contains(rr.Body.String(), `"role":"teacher"`) {
		t.Errorf("body = %q, want stored role", rr.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := RequireRole(account.RoleAdmin)(ok)

	tests := []struct {
		name string
		ctx  context.Context
		want int
	}{
		{"anonymous", context.Background(), http.StatusForbidden},
		{"teacher", context.WithValue(context.Background(), identityContextKey, Identity{Role: account.RoleTeacher}), http.StatusForbidden},
		{"admin", context.WithValue(context.Background(), identityContextKey, Identity{Role: account.RoleAdmin}), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/debug/perf", nil).WithContext(tt.ctx)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

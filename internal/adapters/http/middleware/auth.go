package middleware

import (
	"context"
	"net/http"
	"strings"

	"signup/internal/adapters/auth"
	"signup/internal/domain/account"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the authenticated caller.
type Identity struct {
	AccountID string
	Email     string
	Role      string
}

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AccountLookup resolves the account named by a token.
type AccountLookup interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
}

// Auth error details.
const (
	DetailNotAuthenticated = "Not authenticated"
	DetailBadCredentials   = "Could not validate credentials"
	DetailUserNotFound     = "User not found"
	DetailForbidden        = "Not enough permissions"
)

// Bearer returns middleware that requires a valid bearer token for an
// existing account and puts its Identity in the request context. The role
// comes from the stored account, not the token.
func Bearer(tokens TokenParser, accounts AccountLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				WriteDetail(w, http.StatusForbidden, DetailNotAuthenticated)
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteDetail(w, http.StatusUnauthorized, DetailBadCredentials)
				return
			}
			acct, err := accounts.GetByEmail(r.Context(), claims.Subject)
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteDetail(w, http.StatusUnauthorized, DetailUserNotFound)
				return
			}

			id := Identity{AccountID: acct.ID, Email: acct.Email, Role: acct.Role}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityContextKey, id)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireRole returns middleware that blocks callers without one of roles.
// It must run after Bearer.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r.Context())
			if !ok {
				WriteDetail(w, http.StatusForbidden, DetailNotAuthenticated)
				return
			}
			if !roleSet[id.Role] {
				WriteDetail(w, http.StatusForbidden, DetailForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity returns the authenticated caller, if any.
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

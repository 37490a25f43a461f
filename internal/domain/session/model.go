package session

import (
	"errors"
	"strings"

	"signup/internal/domain/account"
)

// Durable storage keys. All three must be present for a session to be restorable.
const (
	KeyToken = "authToken"
	KeyEmail = "userEmail"
	KeyRole  = "userRole"
)

// Keys lists the durable keys in write order.
var Keys = []string{KeyToken, KeyEmail, KeyRole}

// ErrPartialSession is returned by Validate when only some fields are set.
var ErrPartialSession = errors.New("session must have token, email and role together")

// Session is the signed-in user's credential and identity as held by the client.
// The zero value is the logged-out session.
type Session struct {
	Token string
	Email string
	Role  string
}

// New builds a Session, rejecting partial or unknown-role input.
// PRE: token, email and role come from a successful login response
// POST: Returns a populated Session or an error
func New(token, email, role string) (Session, error) {
	s := Session{Token: token, Email: email, Role: role}
	if s.IsEmpty() {
		return Session{}, ErrPartialSession
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}

// IsEmpty reports whether no user is signed in.
// INVARIANT: Session fields are not mutated
func (s Session) IsEmpty() bool {
	return s.Token == "" && s.Email == "" && s.Role == ""
}

// LoggedIn reports whether all three fields are present.
// INVARIANT: Session fields are not mutated
func (s Session) LoggedIn() bool {
	return s.Token != "" && s.Email != "" && s.Role != ""
}

// Validate enforces the all-or-nothing invariant and a known role.
// PRE: none
// POST: Returns nil for an empty or complete session
func (s Session) Validate() error {
	if s.IsEmpty() {
		return nil
	}
	if !s.LoggedIn() {
		return ErrPartialSession
	}
	if !account.IsValidRole(s.Role) {
		return account.ErrInvalidRole
	}
	return nil
}

// IsStudent reports whether the signed-in user is a student.
func (s Session) IsStudent() bool {
	return s.Role == account.RoleStudent
}

// CanDelete reports whether the signed-in user may remove the participant
// with the given email: teachers and admins may remove anyone, students only
// themselves.
// INVARIANT: Session fields are not mutated
func (s Session) CanDelete(participantEmail string) bool {
	if !s.LoggedIn() {
		return false
	}
	return account.CanManageParticipant(s.Role, s.Email, participantEmail)
}

// FromValues builds a Session from durable key/value pairs. Missing or blank
// values and unknown roles yield the empty session rather than an error.
func FromValues(values map[string]string) Session {
	s := Session{
		Token: strings.TrimSpace(values[KeyToken]),
		Email: strings.TrimSpace(values[KeyEmail]),
		Role:  strings.TrimSpace(values[KeyRole]),
	}
	if !s.LoggedIn() || s.Validate() != nil {
		return Session{}
	}
	return s
}

// Values returns the durable key/value pairs for s.
func (s Session) Values() map[string]string {
	return map[string]string{
		KeyToken: s.Token,
		KeyEmail: s.Email,
		KeyRole:  s.Role,
	}
}

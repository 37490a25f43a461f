package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
)

// Role constants
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleStudent, RoleTeacher, RoleAdmin}

// passwordCost is the bcrypt work factor for stored password hashes.
const passwordCost = 12

// Domain errors
var (
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrEmptyEmail    = errors.New("email cannot be empty")
	ErrEmailTooLong  = errors.New("email cannot exceed 254 characters")
	ErrInvalidRole   = errors.New("role must be one of: student, teacher, admin")
	ErrEmptyPassword = errors.New("password cannot be empty")
	ErrWrongPassword = errors.New("incorrect password")
)

// Account holds state for a user who can sign in to the activities service.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if err := ValidateEmail(a.Email); err != nil {
		return err
	}
	if !IsValidRole(a.Role) {
		return ErrInvalidRole
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is non-empty
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), passwordCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsStaff returns true for teachers and admins.
// INVARIANT: Account fields are not mutated
func (a *Account) IsStaff() bool {
	return IsStaffRole(a.Role)
}

// CanManageParticipant reports whether this account may sign up or unregister
// the given participant email.
// INVARIANT: Account fields are not mutated
func (a *Account) CanManageParticipant(participantEmail string) bool {
	return CanManageParticipant(a.Role, a.Email, participantEmail)
}

// CanManageParticipant is the role rule shared by the server and the client
// roster: teachers and admins manage anyone, students only themselves.
func CanManageParticipant(role, actorEmail, participantEmail string) bool {
	switch role {
	case RoleTeacher, RoleAdmin:
		return true
	case RoleStudent:
		return actorEmail != "" && actorEmail == participantEmail
	default:
		return false
	}
}

// IsStaffRole returns true for the teacher and admin roles.
func IsStaffRole(role string) bool {
	return role == RoleTeacher || role == RoleAdmin
}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ValidateEmail applies the minimal email shape check used for accounts and
// participants.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmptyEmail
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

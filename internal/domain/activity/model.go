package activity

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyName         = errors.New("activity name cannot be empty")
	ErrNegativeCapacity  = errors.New("max participants cannot be negative")
	ErrOverCapacity      = errors.New("participants exceed max participants")
	ErrAlreadySignedUp   = errors.New("participant is already signed up")
	ErrNotSignedUp       = errors.New("participant is not signed up for this activity")
	ErrActivityFull      = errors.New("activity is full")
	ErrActivityNotFound  = errors.New("activity not found")
	ErrEmptyParticipant  = errors.New("participant email cannot be empty")
	ErrDuplicateActivity = errors.New("activity names must be unique")
)

// Activity is an extracurricular activity and its ordered participant list.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// Validate checks if the Activity has valid data.
// PRE: Activity struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.MaxParticipants < 0 {
		return ErrNegativeCapacity
	}
	if len(a.Participants) > a.MaxParticipants {
		return ErrOverCapacity
	}
	return nil
}

// SpotsLeft returns MaxParticipants minus the participant count. It is zero
// at full capacity and negative when the roster is over capacity.
// INVARIANT: Activity fields are not mutated
func (a *Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// HasParticipant reports whether email is on the participant list.
// INVARIANT: Activity fields are not mutated
func (a *Activity) HasParticipant(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// AddParticipant appends email to the participant list.
// PRE: email is non-empty
// POST: email is the last participant, or an error is returned and nothing changes
func (a *Activity) AddParticipant(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmptyParticipant
	}
	if a.HasParticipant(email) {
		return ErrAlreadySignedUp
	}
	if len(a.Participants) >= a.MaxParticipants {
		return ErrActivityFull
	}
	a.Participants = append(a.Participants, email)
	return nil
}

// RemoveParticipant deletes email from the participant list, keeping order.
// PRE: email is non-empty
// POST: email is no longer a participant, or ErrNotSignedUp is returned
func (a *Activity) RemoveParticipant(email string) error {
	for i, p := range a.Participants {
		if p == email {
			a.Participants = append(a.Participants[:i:i], a.Participants[i+1:]...)
			return nil
		}
	}
	return ErrNotSignedUp
}

// Find returns the activity with the given name from an ordered collection.
func Find(activities []Activity, name string) (Activity, bool) {
	for _, a := range activities {
		if a.Name == name {
			return a, true
		}
	}
	return Activity{}, false
}

// ValidateCollection checks every activity and the uniqueness of names.
func ValidateCollection(activities []Activity) error {
	seen := make(map[string]bool, len(activities))
	for i := range activities {
		if err := activities[i].Validate(); err != nil {
			return err
		}
		if seen[activities[i].Name] {
			return ErrDuplicateActivity
		}
		seen[activities[i].Name] = true
	}
	return nil
}

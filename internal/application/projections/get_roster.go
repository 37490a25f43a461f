package projections

import (
	"signup/internal/domain/activity"
	"signup/internal/domain/session"
)

// RosterParticipant is one participant line of an activity card.
type RosterParticipant struct {
	Email     string
	Deletable bool
	// Control is the 1-based number of this entry's delete control, or 0 when
	// the current user may not remove it.
	Control int
}

// RosterCard is the render-ready view of a single activity.
type RosterCard struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	SpotsLeft       int
	Participants    []RosterParticipant
	Empty           bool
}

// RosterControl addresses a rendered delete control.
type RosterControl struct {
	Activity string
	Email    string
}

// Roster is the render-ready view of every activity for the current user.
type Roster struct {
	Cards []RosterCard
	// Names lists activity names in display order for the sign-up selector.
	Names []string
	// Controls maps control number n to Controls[n-1].
	Controls []RosterControl
}

// QueryGetRoster derives the roster view from a fetched activity snapshot and
// the current session.
// PRE: activities is the latest server snapshot in display order
// POST: Returns one card per activity; delete controls are numbered in render order
// INVARIANT: activities is not modified
func QueryGetRoster(activities []activity.Activity, current session.Session) Roster {
	roster := Roster{
		Cards: make([]RosterCard, 0, len(activities)),
		Names: make([]string, 0, len(activities)),
	}

	for _, a := range activities {
		card := RosterCard{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			SpotsLeft:       a.SpotsLeft(),
			Participants:    make([]RosterParticipant, 0, len(a.Participants)),
			Empty:           len(a.Participants) == 0,
		}
		for _, email := range a.Participants {
			p := RosterParticipant{Email: email, Deletable: current.CanDelete(email)}
			if p.Deletable {
				roster.Controls = append(roster.Controls, RosterControl{Activity: a.Name, Email: email})
				p.Control = len(roster.Controls)
			}
			card.Participants = append(card.Participants, p)
		}
		roster.Cards = append(roster.Cards, card)
		roster.Names = append(roster.Names, a.Name)
	}
	return roster
}

// Control returns the delete control numbered n.
func (r Roster) Control(n int) (RosterControl, bool) {
	if n < 1 || n > len(r.Controls) {
		return RosterControl{}, false
	}
	return r.Controls[n-1], true
}

// ResolveActivity maps a selector value to an activity name. The value may be
// an exact name or the 1-based position in Names.
func (r Roster) ResolveActivity(value string) (string, bool) {
	for _, name := range r.Names {
		if name == value {
			return name, true
		}
	}
	n := 0
	for _, c := range value {
		if c < '0' || c > '9' {
			return "", false
		}
		n = n*10 + int(c-'0')
		if n > len(r.Names) {
			return "", false
		}
	}
	if n < 1 {
		return "", false
	}
	return r.Names[n-1], true
}

package api

import (
	"encoding/json"
	"fmt"
	"io"

	"signup/internal/domain/activity"
)

type activityJSON struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// decodeActivities reads the name-keyed activity object while keeping the
// server's key order, which a Go map would lose.
func decodeActivities(r io.Reader) ([]activity.Activity, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	activities := []activity.Activity{}
	seen := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected activity name, got %v", tok)
		}

		var body activityJSON
		if err := dec.Decode(&body); err != nil {
			return nil, fmt.Errorf("activity %q: %w", name, err)
		}
		participants := body.Participants
		if participants == nil {
			participants = []string{}
		}
		a := activity.Activity{
			Name:            name,
			Description:     body.Description,
			Schedule:        body.Schedule,
			MaxParticipants: body.MaxParticipants,
			Participants:    participants,
		}

		// Duplicate keys: the last one wins, as with a JSON object lookup.
		if i, dup := seen[name]; dup {
			activities[i] = a
			continue
		}
		seen[name] = len(activities)
		activities = append(activities, a)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return activities, nil
}

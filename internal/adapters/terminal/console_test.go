package terminal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"signup/internal/application/controller"
	"signup/internal/application/projections"
	"signup/internal/domain/activity"
	"signup/internal/domain/session"
)

func mainView(viewer session.Session) controller.View {
	activities := []activity.Activity{
		{Name: "Chess Club", Description: "Chess", Schedule: "Fridays", MaxParticipants: 10, Participants: []string{"a@x.com", "b@x.com"}},
		{Name: "GitHub Skills", Description: "Git", Schedule: "Tuesdays", MaxParticipants: 15, Participants: []string{}},
	}
	return controller.View{
		Screen:       controller.ScreenMain,
		User:         viewer,
		Roster:       projections.QueryGetRoster(activities, viewer),
		RosterLoaded: true,
	}
}

func TestConsole_RenderMain(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, language.English)

	v := mainView(session.Session{Token: "t", Email: "b@x.com", Role: "student"})
	v.Form = controller.SignupForm{Email: "b@x.com", ReadOnly: true}
	v.Message = controller.Message{Text: "Signed up b@x.com for Chess Club", Tone: controller.ToneSuccess, Visible: true}
	c.Render(v)

	out := buf.String()
	for _, want := range []string{
		"Logged in as b@x.com (student)",
		" 1. Chess Club",
		"Availability: 8 spots left",
		"- a@x.com\n",
		"- b@x.com  [1] remove",
		" 2. GitHub Skills",
		"No participants yet",
		"Student email: b@x.com",
		"[ok] Signed up b@x.com for Chess Club",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsole_RenderRosterFailure(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, language.English)

	v := mainView(session.Session{Token: "t", Email: "t@x.com", Role: "teacher"})
	v.Roster = projections.Roster{}
	v.RosterError = controller.MsgRosterFailed
	c.Render(v)

	if !strings.Contains(buf.String(), "Failed to load activities. Please try again later.") {
		t.Errorf("output:\n%s", buf.String())
	}
}

func TestConsole_RenderLogin(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, language.English)
	c.Render(controller.View{
		Screen:       controller.ScreenLogin,
		LoginEmail:   "x@x.com",
		LoginMessage: controller.Message{Text: "Incorrect email or password", Tone: controller.ToneError, Visible: true},
	})

	out := buf.String()
	for _, want := range []string{"-- Login --", "Email: x@x.com", "[error] Incorrect email or password", "login <email>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Available Activities") {
		t.Error("login screen shows the roster")
	}
}

// TestConsole_ServerTextVerbatim prints server text containing verbs unchanged.
func TestConsole_ServerTextVerbatim(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, language.English)
	v := mainView(session.Session{Token: "t", Email: "t@x.com", Role: "teacher"})
	v.Message = controller.Message{Text: "Signed up a@x.com for 100% Fun", Tone: controller.ToneSuccess, Visible: true}
	c.Render(v)

	if !strings.Contains(buf.String(), "Signed up a@x.com for 100% Fun") {
		t.Errorf("output:\n%s", buf.String())
	}
}

// TestConsole_LoginTextVerbatim keeps formatting verbs in login status text.
func TestConsole_LoginTextVerbatim(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, language.English)
	c.Render(controller.View{
		Screen:       controller.ScreenLogin,
		LoginEmail:   "50%off@x.com",
		LoginMessage: controller.Message{Text: "Locked: %d attempts %s", Tone: controller.ToneError, Visible: true},
	})

	out := buf.String()
	for _, want := range []string{"Email: 50%off@x.com", "[error] Locked: %d attempts %s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "%!") {
		t.Errorf("output has a formatting error:\n%s", out)
	}
}

func TestConsole_RenderError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{controller.ErrNotLoggedIn, "Please log in first."},
		{controller.ErrUnknownControl, "There is no remove control with that number."},
		{&InputError{Command: "dance"}, `Unknown command "dance"`},
		{&InputError{Command: "login", Usage: "login <email>"}, "Usage: login <email>"},
		{errors.New("boom"), "Error: boom"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		NewConsole(&buf, language.English).RenderError(tt.err)
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("RenderError(%v) = %q, want %q", tt.err, buf.String(), tt.want)
		}
	}
}

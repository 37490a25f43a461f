// Package terminal is the line-oriented user interface of the sign-up client.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"signup/internal/application/controller"
)

// statusKeys maps fixed controller copy to catalog keys. Other status text
// comes from the server and is printed as is.
var statusKeys = map[string]string{
	controller.MsgLoginSuccess:      "msg.login_success",
	controller.MsgLoginFailed:       "msg.login_failed",
	controller.MsgLoginNetwork:      "msg.login_network",
	controller.MsgRequestFailed:     "msg.request_failed",
	controller.MsgSignupNetwork:     "msg.signup_network",
	controller.MsgUnregisterNetwork: "msg.unregister_network",
	controller.MsgRosterFailed:      "roster.failed",
}

var errorKeys = []struct {
	err error
	key string
}{
	{controller.ErrNotLoggedIn, "error.not_logged_in"},
	{controller.ErrAlreadyLoggedIn, "error.already_logged_in"},
	{controller.ErrMissingLogin, "error.missing_login"},
	{controller.ErrNoActivity, "error.no_activity"},
	{controller.ErrMissingEmail, "error.missing_email"},
	{controller.ErrUnknownControl, "error.unknown_control"},
}

// Console writes screens and prompts. It is safe for concurrent use: the
// dispatcher renders while the input loop prompts.
type Console struct {
	mu sync.Mutex
	w  io.Writer
	p  *message.Printer
}

// NewConsole creates a Console printing in the given language.
func NewConsole(w io.Writer, tag language.Tag) *Console {
	return &Console{w: w, p: message.NewPrinter(tag)}
}

// Render draws the full screen for v.
func (c *Console) Render(v controller.View) {
	var b strings.Builder
	c.line(&b, "")
	c.linef(&b, "== %s ==", c.p.Sprintf("app.title"))

	if v.Screen == controller.ScreenLogin {
		c.renderLogin(&b, v)
	} else {
		c.renderMain(&b, v)
	}
	c.write(b.String())
}

func (c *Console) renderLogin(b *strings.Builder, v controller.View) {
	c.linef(b, "-- %s --", c.p.Sprintf("login.heading"))
	if v.LoginEmail != "" {
		c.line(b, c.p.Sprintf("login.email_prompt", v.LoginEmail))
	}
	if v.LoginMessage.Visible {
		c.line(b, c.status(v.LoginMessage))
	}
	c.line(b, c.p.Sprintf("login.hint"))
}

func (c *Console) renderMain(b *strings.Builder, v controller.View) {
	c.line(b, c.p.Sprintf("user.signed_in_as", v.User.Email, v.User.Role))
	c.line(b, "")
	c.linef(b, "-- %s --", c.p.Sprintf("roster.heading"))

	switch {
	case v.RosterError != "":
		c.line(b, c.translate(v.RosterError))
	case !v.RosterLoaded:
		c.line(b, c.p.Sprintf("roster.loading"))
	}

	for i, card := range v.Roster.Cards {
		c.linef(b, "%2d. %s", i+1, card.Name)
		c.linef(b, "    %s", card.Description)
		c.linef(b, "    %s", c.p.Sprintf("roster.schedule", card.Schedule))
		c.linef(b, "    %s", c.p.Sprintf("roster.availability", card.SpotsLeft))
		if card.Empty {
			c.linef(b, "    %s", c.p.Sprintf("roster.none"))
			continue
		}
		c.linef(b, "    %s", c.p.Sprintf("roster.participants"))
		for _, p := range card.Participants {
			if p.Deletable {
				c.linef(b, "      - %s  %s", p.Email, c.p.Sprintf("roster.remove", p.Control))
			} else {
				c.linef(b, "      - %s", p.Email)
			}
		}
	}

	c.line(b, "")
	c.linef(b, "-- %s --", c.p.Sprintf("signup.heading"))
	switch {
	case v.Form.ReadOnly:
		c.line(b, c.p.Sprintf("signup.email_fixed", v.Form.Email))
		c.line(b, c.p.Sprintf("signup.hint_fixed"))
	default:
		if v.Form.Email != "" {
			c.line(b, c.p.Sprintf("signup.last_email", v.Form.Email))
		}
		c.line(b, c.p.Sprintf("signup.hint_open"))
	}
	if v.Message.Visible {
		c.line(b, c.status(v.Message))
	}
}

// RenderError reports rejected input.
func (c *Console) RenderError(err error) {
	c.write(c.errorText(err) + "\n")
}

// Help prints the command list.
func (c *Console) Help() {
	var b strings.Builder
	for _, key := range []string{"help.heading", "help.login", "help.logout", "help.list", "help.signup", "help.unregister", "help.quit"} {
		c.line(&b, c.p.Sprintf(key))
	}
	c.write(b.String())
}

// Prompt writes text without a trailing newline.
func (c *Console) Prompt(key string) {
	c.write(c.p.Sprintf(key))
}

func (c *Console) errorText(err error) string {
	for _, e := range errorKeys {
		if errors.Is(err, e.err) {
			return c.p.Sprintf(e.key)
		}
	}
	var ie *InputError
	if errors.As(err, &ie) {
		if ie.Usage != "" {
			return c.p.Sprintf("error.usage", ie.Usage)
		}
		return c.p.Sprintf("error.unknown_command", ie.Command)
	}
	return c.p.Sprintf("error.generic", err.Error())
}

func (c *Console) status(m controller.Message) string {
	tone := "tone.success"
	if m.Tone == controller.ToneError {
		tone = "tone.error"
	}
	return c.p.Sprintf(tone) + " " + c.translate(m.Text)
}

func (c *Console) translate(text string) string {
	if key, ok := statusKeys[text]; ok {
		return c.p.Sprintf(key)
	}
	return text
}

// line appends text verbatim as one line.
func (c *Console) line(b *strings.Builder, text string) {
	b.WriteString(text)
	b.WriteByte('\n')
}

// linef appends a formatted line.
func (c *Console) linef(b *strings.Builder, format string, args ...any) {
	fmt.Fprintf(b, format, args...)
	b.WriteByte('\n')
}

func (c *Console) write(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.w, s)
}

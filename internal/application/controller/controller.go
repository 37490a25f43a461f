// Package controller turns user commands into session and roster updates
// and renders the resulting view state.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"signup/internal/adapters/api"
	"signup/internal/application/projections"
	"signup/internal/domain/activity"
	"signup/internal/domain/session"
)

// Deferred action delays.
const (
	RevealDelay = 500 * time.Millisecond
	HideDelay   = 5 * time.Second
)

const queueSize = 32

// Input errors. These are returned by Handle and leave the view unchanged.
var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrAlreadyLoggedIn = errors.New("already logged in")
	ErrMissingLogin    = errors.New("email and password are required")
	ErrNoActivity      = errors.New("no such activity")
	ErrMissingEmail    = errors.New("an email is required")
	ErrUnknownControl  = errors.New("no such delete control")
	ErrStopped         = errors.New("controller stopped")
)

// SessionStore holds the signed-in session.
type SessionStore interface {
	Current() session.Session
	Restore(ctx context.Context) (session.Session, error)
	Establish(ctx context.Context, token, email, role string) (session.Session, error)
	Clear(ctx context.Context) error
}

// ActivitiesAPI is the remote activities service.
type ActivitiesAPI interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
	ListActivities(ctx context.Context) ([]activity.Activity, error)
	RegisterParticipant(ctx context.Context, activityName, email, token string) (string, error)
	UnregisterParticipant(ctx context.Context, activityName, email, token string) (string, error)
}

// Renderer draws the view.
type Renderer interface {
	Render(v View)
	RenderError(err error)
}

// Deps holds controller dependencies.
type Deps struct {
	Sessions  SessionStore
	API       ActivitiesAPI
	Scheduler Scheduler
	Renderer  Renderer
}

// Controller owns the view state. Handle is called from a single goroutine
// (Run's dispatcher, or a test); Dispatch may be called from any goroutine.
type Controller struct {
	deps Deps
	view View

	queue     chan Command
	done      chan struct{}
	closing   chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once

	revealGen uint64
	reveal    Timer
	hideGen   uint64
	hide      Timer
}

// New creates a Controller showing the login screen.
// PRE: deps.Sessions and deps.API are set
// POST: Scheduler defaults to ClockScheduler; a nil Renderer discards output
func New(deps Deps) *Controller {
	if deps.Scheduler == nil {
		deps.Scheduler = ClockScheduler{}
	}
	return &Controller{
		deps:    deps,
		queue:   make(chan Command, queueSize),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
}

// View returns a copy of the current view state.
func (c *Controller) View() View {
	return c.view
}

// Dispatch enqueues cmd for the dispatcher. It blocks while the queue is
// full and returns false once the controller has stopped.
func (c *Controller) Dispatch(cmd Command) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.queue <- cmd:
		return true
	case <-c.done:
		return false
	}
}

// Run handles queued commands one at a time until ctx is cancelled or Close
// is called. A command submitted while another is awaiting the network waits
// its turn.
// PRE: called once
// POST: returns ctx.Err(), or nil after Close once the queue is drained;
// later Dispatch calls return false
func (c *Controller) Run(ctx context.Context) error {
	defer c.stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closing:
			return c.Drain(ctx)
		case cmd := <-c.queue:
			if err := c.Handle(ctx, cmd); err != nil {
				c.renderError(err)
			}
		}
	}
}

// Close asks Run to handle the commands already queued and return.
// Pending timers are dropped.
func (c *Controller) Close() {
	c.closeOnce.Do(func() { close(c.closing) })
}

// Drain handles every command already queued, without waiting for more.
func (c *Controller) Drain(ctx context.Context) error {
	for {
		select {
		case cmd := <-c.queue:
			if err := c.Handle(ctx, cmd); err != nil {
				c.renderError(err)
			}
		default:
			return nil
		}
	}
}

func (c *Controller) stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.stopTimer(&c.reveal)
		c.stopTimer(&c.hide)
	})
}

// Handle executes one command and renders the result.
// PRE: not called concurrently
// POST: remote failures become view messages; invalid input returns an error
func (c *Controller) Handle(ctx context.Context, cmd Command) error {
	select {
	case <-c.done:
		return ErrStopped
	default:
	}

	var err error
	switch cmd.Kind {
	case KindRestore:
		c.restore(ctx)
	case KindLogin:
		err = c.login(ctx, cmd.Email, cmd.Password)
	case KindLogout:
		c.logout(ctx)
	case KindSignup:
		err = c.signup(ctx, cmd.Activity, cmd.Email)
	case KindUnregister:
		err = c.unregister(ctx, cmd.Control)
	case KindRefresh:
		err = c.refresh(ctx)
	case KindRevealMain:
		if cmd.Generation != c.revealGen {
			slog.Debug("ui_event", "event", "stale_timer", "kind", cmd.Kind.String())
			return nil
		}
		c.reveal = nil
		if c.view.Screen != ScreenLogin || !c.deps.Sessions.Current().LoggedIn() {
			return nil
		}
		c.showMain(ctx)
	case KindHideMessage:
		if cmd.Generation != c.hideGen {
			slog.Debug("ui_event", "event", "stale_timer", "kind", cmd.Kind.String())
			return nil
		}
		c.hide = nil
		c.view.Message.Visible = false
	default:
		return errors.New("unknown command")
	}
	if err != nil {
		return err
	}
	c.render()
	return nil
}

func (c *Controller) restore(ctx context.Context) {
	sess, err := c.deps.Sessions.Restore(ctx)
	if err != nil {
		slog.Warn("ui_event", "event", "restore_failed", "error", err)
		return
	}
	if sess.LoggedIn() {
		c.showMain(ctx)
	}
}

func (c *Controller) login(ctx context.Context, email, password string) error {
	if c.deps.Sessions.Current().LoggedIn() {
		return ErrAlreadyLoggedIn
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingLogin
	}
	c.view.LoginEmail = email

	result, err := c.deps.API.Login(ctx, email, password)
	if err != nil {
		c.view.LoginMessage = Message{
			Text:    api.Message(err, MsgLoginFailed, MsgLoginNetwork),
			Tone:    ToneError,
			Visible: true,
		}
		slog.Info("ui_event", "event", "login_failed", "email", email, "error", err)
		return nil
	}

	if _, err := c.deps.Sessions.Establish(ctx, result.Token, result.Email, result.Role); err != nil {
		c.view.LoginMessage = Message{Text: MsgLoginNetwork, Tone: ToneError, Visible: true}
		slog.Warn("ui_event", "event", "session_store_failed", "error", err)
		return nil
	}

	c.view.LoginMessage = Message{Text: MsgLoginSuccess, Tone: ToneSuccess, Visible: true}
	c.stopTimer(&c.reveal)
	c.revealGen++
	gen := c.revealGen
	c.reveal = c.deps.Scheduler.AfterFunc(RevealDelay, func() { c.Dispatch(revealMain(gen)) })
	return nil
}

func (c *Controller) logout(ctx context.Context) {
	if err := c.deps.Sessions.Clear(ctx); err != nil {
		slog.Warn("ui_event", "event", "session_clear_failed", "error", err)
	}
	c.stopTimer(&c.reveal)
	c.revealGen++
	c.stopTimer(&c.hide)
	c.hideGen++

	c.view = View{Screen: ScreenLogin}
}

func (c *Controller) showMain(ctx context.Context) {
	sess := c.deps.Sessions.Current()
	c.view.Screen = ScreenMain
	c.view.User = sess
	c.resetForm(sess)
	c.loadRoster(ctx)
}

func (c *Controller) resetForm(sess session.Session) {
	if sess.IsStudent() {
		c.view.Form = SignupForm{Email: sess.Email, ReadOnly: true}
		return
	}
	c.view.Form = SignupForm{}
}

func (c *Controller) loadRoster(ctx context.Context) {
	activities, err := c.deps.API.ListActivities(ctx)
	c.view.RosterLoaded = true
	if err != nil {
		c.view.Roster = projections.Roster{}
		c.view.RosterError = MsgRosterFailed
		slog.Warn("ui_event", "event", "roster_failed", "error", err)
		return
	}
	c.view.Roster = projections.QueryGetRoster(activities, c.deps.Sessions.Current())
	c.view.RosterError = ""
}

func (c *Controller) refresh(ctx context.Context) error {
	if c.view.Screen != ScreenMain {
		return ErrNotLoggedIn
	}
	c.loadRoster(ctx)
	return nil
}

func (c *Controller) signup(ctx context.Context, selector, email string) error {
	sess := c.deps.Sessions.Current()
	if c.view.Screen != ScreenMain || !sess.LoggedIn() {
		return ErrNotLoggedIn
	}
	name, ok := c.view.Roster.ResolveActivity(strings.TrimSpace(selector))
	if !ok {
		return ErrNoActivity
	}
	if c.view.Form.ReadOnly {
		email = c.view.Form.Email
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrMissingEmail
	}
	c.view.Form.Activity = name
	if !c.view.Form.ReadOnly {
		c.view.Form.Email = email
	}

	msg, err := c.deps.API.RegisterParticipant(ctx, name, email, sess.Token)
	if err != nil {
		c.showMessage(api.Message(err, MsgRequestFailed, MsgSignupNetwork), ToneError)
		slog.Info("ui_event", "event", "signup_failed", "activity", name, "email", email, "error", err)
		return nil
	}
	c.showMessage(msg, ToneSuccess)
	c.resetForm(sess)
	c.loadRoster(ctx)
	return nil
}

func (c *Controller) unregister(ctx context.Context, n int) error {
	sess := c.deps.Sessions.Current()
	if c.view.Screen != ScreenMain || !sess.LoggedIn() {
		return ErrNotLoggedIn
	}
	control, ok := c.view.Roster.Control(n)
	if !ok {
		return ErrUnknownControl
	}

	msg, err := c.deps.API.UnregisterParticipant(ctx, control.Activity, control.Email, sess.Token)
	if err != nil {
		c.showMessage(api.Message(err, MsgRequestFailed, MsgUnregisterNetwork), ToneError)
		slog.Info("ui_event", "event", "unregister_failed", "activity", control.Activity, "email", control.Email, "error", err)
		return nil
	}
	c.showMessage(msg, ToneSuccess)
	c.loadRoster(ctx)
	return nil
}

// showMessage sets the status line and re-arms its hide timer. A pending hide
// for an earlier message is superseded.
func (c *Controller) showMessage(text string, tone Tone) {
	c.view.Message = Message{Text: text, Tone: tone, Visible: true}
	c.stopTimer(&c.hide)
	c.hideGen++
	gen := c.hideGen
	c.hide = c.deps.Scheduler.AfterFunc(HideDelay, func() { c.Dispatch(hideMessage(gen)) })
}

func (c *Controller) stopTimer(t *Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (c *Controller) render() {
	if c.deps.Renderer != nil {
		c.deps.Renderer.Render(c.view)
	}
}

func (c *Controller) renderError(err error) {
	if c.deps.Renderer != nil {
		c.deps.Renderer.RenderError(err)
	}
}

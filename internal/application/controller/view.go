package controller

import (
	"signup/internal/application/projections"
	"signup/internal/domain/session"
)

// Screen is the top-level section being shown.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenMain
)

// Tone styles a message.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
)

// User-facing copy. Server details are shown verbatim instead where present.
const (
	MsgLoginSuccess      = "Login successful!"
	MsgLoginFailed       = "Login failed"
	MsgLoginNetwork      = "Login failed. Please try again."
	MsgRequestFailed     = "An error occurred"
	MsgSignupNetwork     = "Failed to sign up. Please try again."
	MsgUnregisterNetwork = "Failed to unregister. Please try again."
	MsgRosterFailed      = "Failed to load activities. Please try again later."
)

// Message is a status line.
type Message struct {
	Text    string
	Tone    Tone
	Visible bool
}

// SignupForm is the state of the sign-up form.
type SignupForm struct {
	Email    string
	ReadOnly bool
	Activity string
}

// View is the complete render-ready UI state.
type View struct {
	Screen       Screen
	LoginEmail   string
	LoginMessage Message

	// User is the signed-in identity shown in the header.
	User    session.Session
	Message Message
	Form    SignupForm

	Roster       projections.Roster
	RosterError  string
	RosterLoaded bool
}

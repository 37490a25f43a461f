package terminal

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	// Screens
	message.SetString(lang, "app.title", "Mergington High School Activities")
	message.SetString(lang, "login.heading", "Login")
	message.SetString(lang, "login.hint", "Type \"login <email>\" to sign in.")
	message.SetString(lang, "login.email_prompt", "Email: %s")
	message.SetString(lang, "login.password_prompt", "Password: ")
	message.SetString(lang, "user.signed_in_as", "Logged in as %s (%s). Type \"logout\" to sign out.")

	// Roster
	message.SetString(lang, "roster.heading", "Available Activities")
	message.SetString(lang, "roster.loading", "Loading activities...")
	message.SetString(lang, "roster.failed", "Failed to load activities. Please try again later.")
	message.SetString(lang, "roster.schedule", "Schedule: %s")
	message.SetString(lang, "roster.availability", "Availability: %d spots left")
	message.SetString(lang, "roster.participants", "Participants:")
	message.SetString(lang, "roster.none", "No participants yet")
	message.SetString(lang, "roster.remove", "[%d] remove")

	// Sign-up form
	message.SetString(lang, "signup.heading", "Sign Up for an Activity")
	message.SetString(lang, "signup.email_fixed", "Student email: %s")
	message.SetString(lang, "signup.hint_fixed", "Type \"signup <activity>\" using a name or number above.")
	message.SetString(lang, "signup.hint_open", "Type \"signup <activity> | <email>\" using a name or number above.")
	message.SetString(lang, "signup.last_email", "Last email entered: %s")

	// Status messages
	message.SetString(lang, "msg.login_success", "Login successful!")
	message.SetString(lang, "msg.login_failed", "Login failed")
	message.SetString(lang, "msg.login_network", "Login failed. Please try again.")
	message.SetString(lang, "msg.request_failed", "An error occurred")
	message.SetString(lang, "msg.signup_network", "Failed to sign up. Please try again.")
	message.SetString(lang, "msg.unregister_network", "Failed to unregister. Please try again.")
	message.SetString(lang, "tone.success", "[ok]")
	message.SetString(lang, "tone.error", "[error]")

	// Input problems
	message.SetString(lang, "error.not_logged_in", "Please log in first.")
	message.SetString(lang, "error.already_logged_in", "You are already logged in.")
	message.SetString(lang, "error.missing_login", "Email and password are required.")
	message.SetString(lang, "error.no_activity", "Please select an activity from the list.")
	message.SetString(lang, "error.missing_email", "Please enter the student's email.")
	message.SetString(lang, "error.unknown_control", "There is no remove control with that number.")
	message.SetString(lang, "error.unknown_command", "Unknown command %q. Type \"help\" for the list.")
	message.SetString(lang, "error.usage", "Usage: %s")
	message.SetString(lang, "error.generic", "Error: %s")

	// Help
	message.SetString(lang, "help.heading", "Commands:")
	message.SetString(lang, "help.login", "  login <email>                    sign in (the password is asked next)")
	message.SetString(lang, "help.logout", "  logout                           sign out")
	message.SetString(lang, "help.list", "  list | refresh                   reload the activities")
	message.SetString(lang, "help.signup", "  signup <activity> [| <email>]    register a student (activity by name or number)")
	message.SetString(lang, "help.unregister", "  unregister <n>                   press remove control [n]")
	message.SetString(lang, "help.quit", "  quit                             leave")
}

package terminal

import (
	"strconv"
	"strings"

	"signup/internal/application/controller"
)

// Action is what the loop does with a parsed line.
type Action int

const (
	ActionNone Action = iota
	ActionDispatch
	ActionLogin // dispatch after reading the password
	ActionHelp
	ActionQuit
)

// InputError describes a line that could not be parsed.
type InputError struct {
	Command string
	Usage   string
}

// Error implements error.
func (e *InputError) Error() string {
	if e.Usage != "" {
		return "usage: " + e.Usage
	}
	return "unknown command " + strconv.Quote(e.Command)
}

// Input is a parsed line.
type Input struct {
	Action  Action
	Command controller.Command
	Email   string
}

// Parse turns one input line into an Input.
// PRE: line is a single line without its terminator
// POST: Returns an *InputError for unknown commands or bad arguments
func Parse(line string) (Input, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Input{Action: ActionNone}, nil
	}
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "help", "?":
		return Input{Action: ActionHelp}, nil
	case "quit", "exit":
		return Input{Action: ActionQuit}, nil
	case "login":
		if rest == "" || strings.ContainsAny(rest, " \t") {
			return Input{}, &InputError{Command: verb, Usage: "login <email>"}
		}
		return Input{Action: ActionLogin, Email: rest}, nil
	case "logout":
		return dispatch(controller.Logout()), nil
	case "list", "refresh":
		return dispatch(controller.Refresh()), nil
	case "signup":
		activityName, email, _ := strings.Cut(rest, "|")
		activityName = strings.TrimSpace(activityName)
		if activityName == "" {
			return Input{}, &InputError{Command: verb, Usage: "signup <activity> [| <email>]"}
		}
		return dispatch(controller.Signup(activityName, strings.TrimSpace(email))), nil
	case "unregister", "remove":
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return Input{}, &InputError{Command: verb, Usage: "unregister <n>"}
		}
		return dispatch(controller.Unregister(n)), nil
	default:
		return Input{}, &InputError{Command: verb}
	}
}

func dispatch(cmd controller.Command) Input {
	return Input{Action: ActionDispatch, Command: cmd}
}

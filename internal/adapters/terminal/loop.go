package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"signup/internal/application/controller"
)

// Dispatcher accepts commands for the controller.
type Dispatcher interface {
	Dispatch(cmd controller.Command) bool
}

// Loop reads commands from input and hands them to the dispatcher.
type Loop struct {
	in       *bufio.Reader
	console  *Console
	dispatch Dispatcher
	termFd   int
	isTerm   bool
}

// NewLoop creates a Loop. When in is a terminal, passwords are read without echo.
func NewLoop(in io.Reader, console *Console, d Dispatcher) *Loop {
	l := &Loop{in: bufio.NewReader(in), console: console, dispatch: d}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		l.termFd = int(f.Fd())
		l.isTerm = true
	}
	return l
}

// Run processes lines until quit, end of input, or ctx cancellation.
// PRE: the dispatcher is running
// POST: returns nil on quit or end of input
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.console.Prompt("> ")
		line, err := l.readLine()
		if errors.Is(err, io.EOF) && line == "" {
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}

		in, perr := Parse(line)
		if perr != nil {
			l.console.RenderError(perr)
			continue
		}
		switch in.Action {
		case ActionQuit:
			return nil
		case ActionHelp:
			l.console.Help()
		case ActionDispatch:
			if !l.dispatch.Dispatch(in.Command) {
				return nil
			}
		case ActionLogin:
			password, err := l.readPassword()
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if !l.dispatch.Dispatch(controller.Login(in.Email, password)) {
				return nil
			}
		}
	}
}

func (l *Loop) readLine() (string, error) {
	line, err := l.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

func (l *Loop) readPassword() (string, error) {
	l.console.Prompt("login.password_prompt")
	if l.isTerm {
		b, err := term.ReadPassword(l.termFd)
		l.console.write("\n")
		return string(b), err
	}
	line, err := l.readLine()
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	return line, err
}

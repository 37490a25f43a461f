// Package main runs the terminal client for the activities sign-up service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/text/language"

	"signup/internal/adapters/api"
	"signup/internal/adapters/storage/kv"
	sessionStore "signup/internal/adapters/storage/session"
	"signup/internal/adapters/terminal"
	"signup/internal/application/controller"
	"signup/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	var ephemeral bool
	flag.StringVar(&cfg.APIURL, "api", cfg.APIURL, "activities API base URL")
	flag.StringVar(&cfg.StatePath, "state", cfg.StatePath, "session state file (default: user config dir)")
	flag.BoolVar(&ephemeral, "ephemeral", false, "keep the session in memory only")
	flag.Parse()

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var backing kv.Store
	if ephemeral {
		backing = kv.NewMemoryStore()
	} else {
		path, err := statePath(cfg.StatePath)
		if err != nil {
			return err
		}
		bolt, err := kv.OpenBoltStore(path)
		if err != nil {
			return err
		}
		defer bolt.Close()
		backing = bolt
	}

	client, err := api.New(cfg.APIURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithSlowCallThreshold(cfg.SlowCall),
	)
	if err != nil {
		return err
	}

	console := terminal.NewConsole(os.Stdout, language.English)
	ctrl := controller.New(controller.Deps{
		Sessions: sessionStore.NewStore(backing),
		API:      client,
		Renderer: console,
	})

	// Interrupts keep the default behaviour and end the process.
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	ctrl.Dispatch(controller.Restore())
	console.Help()
	loopErr := terminal.NewLoop(os.Stdin, console, ctrl).Run(ctx)

	// Commands typed just before end of input still run.
	ctrl.Close()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		return loopErr
	}
	return nil
}

func statePath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	dir = filepath.Join(dir, "signup")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return filepath.Join(dir, "state.db"), nil
}

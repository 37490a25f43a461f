package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"signup/internal/adapters/auth"
	emailPkg "signup/internal/adapters/email"
	web "signup/internal/adapters/http"
	"signup/internal/adapters/perf"
	"signup/internal/adapters/storage"
	accountStore "signup/internal/adapters/storage/account"
	activityStore "signup/internal/adapters/storage/activity"
	outboxStore "signup/internal/adapters/storage/outbox"
	"signup/internal/application/orchestrators"
	"signup/internal/config"
	"signup/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	if err := storage.InitDB(db); err != nil {
		return err
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)
	accounts := accountStore.NewSQLiteStore(timedDB)
	activities := activityStore.NewSQLiteStore(timedDB)
	outboxes := outboxStore.NewSQLiteStore(timedDB)

	if cfg.Seed {
		seedDeps := orchestrators.SeedDeps{AccountStore: accounts, ActivityStore: activities}
		if err := orchestrators.ExecuteSeed(ctx, seedDeps); err != nil {
			return err
		}
	}

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.ReplyTo)
		slog.Info("email_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_disabled", "reason", "SERVER_RESEND_KEY is not set")
		}
	}

	processor := orchestrators.NewOutboxProcessor(outboxes, map[string]orchestrators.ActionExecutor{
		outbox.KindSignUpEmail: &orchestrators.EmailExecutor{Sender: sender},
	})
	stopOutbox := make(chan struct{})
	defer close(stopOutbox)
	orchestrators.StartBackgroundWorker(processor, cfg.OutboxInterval, stopOutbox)

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	router := web.NewRouter(web.Deps{
		Accounts:   accounts,
		Activities: activities,
		Tokens:     tokens,
		Notify: orchestrators.SignUpNotifier(orchestrators.QueueSignUpEmailDeps{
			OutboxStore: outboxes,
			From:        cfg.EmailFrom,
			ReplyTo:     cfg.ReplyTo,
		}),
		Outbox:          outboxes,
		OutboxProcessor: processor,
		Collector:       collector,
		SlowRequest:     cfg.SlowRequest,
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateWindow: cfg.LoginRateWindow,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"signup/internal/adapters/auth"
	"signup/internal/adapters/http/middleware"
	"signup/internal/adapters/perf"
	accountStore "signup/internal/adapters/storage/account"
	activityStore "signup/internal/adapters/storage/activity"
	outboxStore "signup/internal/adapters/storage/outbox"
	"signup/internal/domain/account"
	"signup/internal/domain/activity"
	"signup/internal/domain/outbox"
)

// Deps holds everything the HTTP adapter needs.
type Deps struct {
	Accounts   accountStore.Store
	Activities activityStore.Store
	Tokens     *auth.Tokens

	// Notify is called after a successful sign-up. Optional.
	Notify func(ctx context.Context, a activity.Activity, email string)

	// Outbox and OutboxProcessor back the admin outbox endpoints. Optional.
	Outbox          outboxStore.Store
	OutboxProcessor OutboxRetrier

	// Collector receives request timings. Optional.
	Collector   *perf.Collector
	SlowRequest time.Duration

	// Registry receives the HTTP metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry

	// LoginRateLimit is the number of login attempts allowed per client IP
	// per LoginRateWindow. Zero disables the limit.
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// OutboxRetrier attempts one queued entry immediately.
type OutboxRetrier interface {
	ProcessSingle(ctx context.Context, id string) (outbox.Entry, error)
}

type server struct {
	deps    Deps
	metrics *metrics
}

// NewRouter wires HTTP handlers for the activities API.
// PRE: deps.Accounts, deps.Activities and deps.Tokens are set
// POST: Returns a handler serving the JSON API, /health, /metrics and the admin /debug routes
func NewRouter(deps Deps) http.Handler {
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	s := &server{deps: deps, metrics: newMetrics(deps.Registry)}

	bearer := middleware.Bearer(deps.Tokens, deps.Accounts)
	login := http.Handler(http.HandlerFunc(s.handleLogin))
	if deps.LoginRateLimit > 0 {
		window := deps.LoginRateWindow
		if window <= 0 {
			window = time.Minute
		}
		login = middleware.RateLimit(middleware.NewRateLimiter(deps.LoginRateLimit, window))(login)
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Timing(deps.Collector, deps.SlowRequest))
	r.Use(s.metrics.instrument)
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler(deps.Registry))
	r.Group(func(r chi.Router) {
		r.Use(bearer, middleware.RequireRole(account.RoleAdmin))
		r.Get("/debug/perf", s.handlePerf)
		if deps.Outbox != nil && deps.OutboxProcessor != nil {
			r.Get("/debug/outbox", s.handleListFailedOutbox)
			r.Post("/debug/outbox/{id}/retry", s.handleRetryOutbox)
		}
	})

	r.Method(http.MethodPost, "/login", login)
	r.Get("/activities", s.handleListActivities)
	r.Route("/activities/{name}", func(r chi.Router) {
		r.With(bearer).Post("/signup", s.handleSignup)
		r.With(bearer).Delete("/unregister", s.handleUnregister)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

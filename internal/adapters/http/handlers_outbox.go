package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"signup/internal/adapters/http/middleware"
	outboxStore "signup/internal/adapters/storage/outbox"
	"signup/internal/application/orchestrators"
	"signup/internal/domain/outbox"
)

const failedOutboxLimit = 50

type outboxEntryView struct {
	ID              string     `json:"id"`
	Kind            string     `json:"kind"`
	Status          string     `json:"status"`
	Attempts        int        `json:"attempts"`
	MaxAttempts     int        `json:"max_attempts"`
	CreatedAt       time.Time  `json:"created_at"`
	LastAttemptedAt *time.Time `json:"last_attempted_at,omitempty"`
	ExternalID      string     `json:"external_id,omitempty"`
	Error           string     `json:"error,omitempty"`
}

func newOutboxEntryView(e outbox.Entry) outboxEntryView {
	v := outboxEntryView{
		ID:          e.ID,
		Kind:        e.Kind,
		Status:      e.Status,
		Attempts:    e.Attempts,
		MaxAttempts: e.MaxAttempts,
		CreatedAt:   e.CreatedAt,
		ExternalID:  e.ExternalID,
		Error:       e.ErrorMessage,
	}
	if !e.LastAttemptedAt.IsZero() {
		t := e.LastAttemptedAt
		v.LastAttemptedAt = &t
	}
	return v
}

// handleListFailedOutbox lists entries that ran out of delivery attempts.
// Payloads hold participant addresses and are not returned.
func (s *server) handleListFailedOutbox(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Outbox.ListFailed(r.Context(), failedOutboxLimit)
	if err != nil {
		internalError(w, r, err)
		return
	}
	views := make([]outboxEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newOutboxEntryView(e))
	}
	middleware.WriteJSON(w, http.StatusOK, views)
}

// handleRetryOutbox attempts one entry now, ignoring its backoff.
func (s *server) handleRetryOutbox(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := s.deps.OutboxProcessor.ProcessSingle(r.Context(), id)
	switch {
	case errors.Is(err, outboxStore.ErrNotFound):
		middleware.WriteDetail(w, http.StatusNotFound, "Outbox entry not found")
	case errors.Is(err, orchestrators.ErrEntryTerminal):
		middleware.WriteDetail(w, http.StatusConflict, "Outbox entry is "+entry.Status)
	case err != nil:
		internalError(w, r, err)
	default:
		middleware.WriteJSON(w, http.StatusOK, newOutboxEntryView(entry))
	}
}

package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "signup/internal/adapters/email"
	domain "signup/internal/domain/outbox"
)

// OutboxStoreForProcessing defines the store interface needed by OutboxProcessor.
type OutboxStoreForProcessing interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
}

// ActionExecutor carries out one kind of outbox entry.
type ActionExecutor interface {
	// Execute runs the action with the given payload and returns the
	// provider's ID for the result.
	Execute(ctx context.Context, payload string) (string, error)
}

// ErrEntryTerminal is returned when retrying an entry that is done or out of attempts.
var ErrEntryTerminal = errors.New("outbox entry cannot be retried")

// OutboxProcessor delivers outbox entries with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStoreForProcessing
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store OutboxStoreForProcessing, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 10,
		now:       time.Now,
	}
}

// ProcessPending attempts every due entry in one batch.
// PRE: Context is valid
// POST: Returns how many entries were attempted; each attempt is saved
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (int, error) {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending outbox entries: %w", err)
	}

	attempted := 0
	for _, entry := range entries {
		if !entry.Due(p.now(), p.baseDelay, p.maxDelay) {
			continue
		}
		attempted++
		if err := p.attempt(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "kind", entry.Kind, "error", err.Error())
		}
	}
	return attempted, nil
}

// ProcessSingle attempts one entry now, ignoring backoff.
// PRE: entryID is non-empty
// POST: The attempt is saved; terminal entries return ErrEntryTerminal
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if entry.IsTerminal() {
		return entry, ErrEntryTerminal
	}
	if err := p.attempt(ctx, entry); err != nil {
		return domain.Entry{}, err
	}
	return p.store.GetByID(ctx, entryID)
}

func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry) error {
	entry.MarkAttempt(p.now())

	executor, ok := p.executors[entry.Kind]
	if !ok {
		entry.MarkFailed(fmt.Errorf("no executor registered for kind: %s", entry.Kind))
		return p.store.Save(ctx, entry)
	}

	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "status", entry.Status, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "kind", entry.Kind, "external_id", externalID)
	}
	return p.store.Save(ctx, entry)
}

// EmailExecutor sends a queued emailAdapter.SendRequest.
type EmailExecutor struct {
	Sender emailAdapter.Sender
}

// Execute sends the email in payload.
// PRE: payload is a JSON emailAdapter.SendRequest
// POST: email handed to the sender; returns the provider message ID
func (e *EmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var req emailAdapter.SendRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	res, err := e.Sender.Send(ctx, req)
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// StartBackgroundWorker processes pending entries every interval until
// stopCh is closed.
// POST: Worker runs in its own goroutine
func StartBackgroundWorker(processor *OutboxProcessor, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				if _, err := processor.ProcessPending(ctx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
}

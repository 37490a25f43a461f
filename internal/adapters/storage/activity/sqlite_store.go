package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"signup/internal/adapters/storage"
	domain "signup/internal/domain/activity"
)

// SQLiteStore implements Store using SQLite. Participant changes are
// serialized so capacity and duplicate checks see committed state.
type SQLiteStore struct {
	db storage.SQLDB
	mu sync.Mutex
}

// NewSQLiteStore creates a new activity store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// queryer is satisfied by both SQLDB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// List returns every activity in catalog order with participants in sign-up order.
// PRE: none
// POST: Participants is non-nil for every activity
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, description, schedule, max_participants FROM activity ORDER BY position, name")
	if err != nil {
		return nil, err
	}
	var results []domain.Activity
	index := map[string]int{}
	for rows.Next() {
		a := domain.Activity{Participants: []string{}}
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			rows.Close()
			return nil, err
		}
		index[a.Name] = len(results)
		results = append(results, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := s.db.QueryContext(ctx,
		"SELECT activity_name, email FROM activity_participant ORDER BY activity_name, position")
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var name, email string
		if err := prows.Scan(&name, &email); err != nil {
			return nil, err
		}
		if i, ok := index[name]; ok {
			results[i].Participants = append(results[i].Participants, email)
		}
	}
	return results, prows.Err()
}

// Get retrieves one activity by exact name.
// PRE: name is non-empty
// POST: Returns the entity or an error wrapping domain.ErrActivityNotFound
func (s *SQLiteStore) Get(ctx context.Context, name string) (domain.Activity, error) {
	return get(ctx, s.db, name)
}

func get(ctx context.Context, q queryer, name string) (domain.Activity, error) {
	a := domain.Activity{Participants: []string{}}
	err := q.QueryRowContext(ctx,
		"SELECT name, description, schedule, max_participants FROM activity WHERE name = ?", name).
		Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Activity{}, fmt.Errorf("%w: %s", domain.ErrActivityNotFound, name)
	}
	if err != nil {
		return domain.Activity{}, err
	}

	rows, err := q.QueryContext(ctx,
		"SELECT email FROM activity_participant WHERE activity_name = ? ORDER BY position", name)
	if err != nil {
		return domain.Activity{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return domain.Activity{}, err
		}
		a.Participants = append(a.Participants, email)
	}
	return a, rows.Err()
}

// Save inserts or replaces an activity and its participant list. New
// activities are appended to the catalog order.
// PRE: entity has been validated
// POST: Stored participants equal entity.Participants in order
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO activity (name, description, schedule, max_participants, position)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM activity))
		ON CONFLICT(name) DO UPDATE SET description=excluded.description, schedule=excluded.schedule,
			max_participants=excluded.max_participants`,
		entity.Name, entity.Description, entity.Schedule, entity.MaxParticipants)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM activity_participant WHERE activity_name = ?", entity.Name); err != nil {
		return err
	}
	for i, email := range entity.Participants {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO activity_participant (activity_name, email, position) VALUES (?, ?, ?)",
			entity.Name, email, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AddParticipant appends email to the named activity.
// PRE: email is non-empty
// POST: Returns the updated activity, or a domain error (not found, already
// signed up, full) with nothing changed
func (s *SQLiteStore) AddParticipant(ctx context.Context, name, email string) (domain.Activity, error) {
	return s.mutate(ctx, name, func(tx *sql.Tx, a *domain.Activity) error {
		if err := a.AddParticipant(email); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO activity_participant (activity_name, email, position)
			VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM activity_participant WHERE activity_name = ?))`,
			name, email, name)
		return err
	})
}

// RemoveParticipant removes email from the named activity.
// PRE: email is non-empty
// POST: Returns the updated activity, or a domain error (not found, not
// signed up) with nothing changed
func (s *SQLiteStore) RemoveParticipant(ctx context.Context, name, email string) (domain.Activity, error) {
	return s.mutate(ctx, name, func(tx *sql.Tx, a *domain.Activity) error {
		if err := a.RemoveParticipant(email); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"DELETE FROM activity_participant WHERE activity_name = ? AND email = ?", name, email)
		return err
	})
}

func (s *SQLiteStore) mutate(ctx context.Context, name string, apply func(*sql.Tx, *domain.Activity) error) (domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Activity{}, err
	}
	defer tx.Rollback()

	a, err := get(ctx, tx, name)
	if err != nil {
		return domain.Activity{}, err
	}
	if err := apply(tx, &a); err != nil {
		return domain.Activity{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Activity{}, err
	}
	return a, nil
}

// Count returns the number of activities.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activity").Scan(&count)
	return count, err
}

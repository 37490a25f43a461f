package account

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"signup/internal/adapters/storage"
	domain "signup/internal/domain/account"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return NewSQLiteStore(db)
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	acct := domain.Account{ID: "id-1", Email: "teacher@mergington.edu", PasswordHash: "hash", Role: domain.RoleTeacher, CreatedAt: created}
	if err := store.Save(ctx, acct); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByEmail(ctx, "Teacher@Mergington.edu")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != "id-1" || got.Role != domain.RoleTeacher || !got.CreatedAt.Equal(created) {
		t.Errorf("got %+v", got)
	}

	// Saving the same email again updates in place.
	acct.ID = "id-2"
	acct.Role = domain.RoleAdmin
	if err := store.Save(ctx, acct); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	got, _ = store.GetByEmail(ctx, "teacher@mergington.edu")
	if got.ID != "id-1" || got.Role != domain.RoleAdmin {
		t.Errorf("after update got %+v", got)
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestSQLiteStore_GetByEmailNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetByEmail(context.Background(), "nobody@x.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_List(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, a := range []struct{ email, role string }{
		{"s1@x.com", domain.RoleStudent},
		{"t@x.com", domain.RoleTeacher},
		{"s2@x.com", domain.RoleStudent},
	} {
		if err := store.Save(ctx, domain.Account{ID: a.email, Email: a.email, Role: a.role, CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	students, err := store.List(ctx, ListFilter{Limit: 10, Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(students) != 2 || students[0].Email != "s1@x.com" || students[1].Email != "s2@x.com" {
		t.Errorf("students = %+v", students)
	}
	page, _ := store.List(ctx, ListFilter{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].Email != "t@x.com" {
		t.Errorf("page = %+v", page)
	}
}

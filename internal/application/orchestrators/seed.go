package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"signup/internal/domain/account"
	"signup/internal/domain/activity"
)

// SeedDeps holds stores needed for seeding a fresh database.
type SeedDeps struct {
	AccountStore  seedAccountStore
	ActivityStore seedActivityStore
	Now           func() time.Time
}

type seedAccountStore interface {
	Save(ctx context.Context, a account.Account) error
	GetByEmail(ctx context.Context, email string) (account.Account, error)
}

type seedActivityStore interface {
	Save(ctx context.Context, a activity.Activity) error
	Count(ctx context.Context) (int, error)
}

// SeedPassword is the password of every seeded account.
const SeedPassword = "password"

// SeedAccounts returns the accounts created on first start.
func SeedAccounts() []struct{ Email, Role string } {
	return []struct{ Email, Role string }{
		{"teacher@mergington.edu", account.RoleTeacher},
		{"admin@mergington.edu", account.RoleAdmin},
		{"student1@mergington.edu", account.RoleStudent},
		{"student2@mergington.edu", account.RoleStudent},
	}
}

// SeedActivities returns the initial activity catalog in display order.
func SeedActivities() []activity.Activity {
	return []activity.Activity{
		{Name: "Chess Club", Description: "Learn strategies and compete in chess tournaments", Schedule: "Fridays, 3:30 PM - 5:00 PM", MaxParticipants: 12,
			Participants: []string{"michael@mergington.edu", "daniel@mergington.edu"}},
		{Name: "Programming Class", Description: "Learn programming fundamentals and build software projects", Schedule: "Tuesdays and Thursdays, 3:30 PM - 4:30 PM", MaxParticipants: 20,
			Participants: []string{"emma@mergington.edu", "sophia@mergington.edu"}},
		{Name: "Gym Class", Description: "Physical education and sports activities", Schedule: "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM", MaxParticipants: 30,
			Participants: []string{"john@mergington.edu", "olivia@mergington.edu"}},
		{Name: "Soccer Team", Description: "Join the school soccer team and compete in matches", Schedule: "Tuesdays and Thursdays, 4:00 PM - 5:30 PM", MaxParticipants: 22,
			Participants: []string{"liam@mergington.edu", "noah@mergington.edu"}},
		{Name: "Basketball Team", Description: "Practice and play basketball with the school team", Schedule: "Wednesdays and Fridays, 3:30 PM - 5:00 PM", MaxParticipants: 15,
			Participants: []string{"ava@mergington.edu", "mia@mergington.edu"}},
		{Name: "Art Club", Description: "Explore your creativity through painting and drawing", Schedule: "Thursdays, 3:30 PM - 5:00 PM", MaxParticipants: 15,
			Participants: []string{"amelia@mergington.edu", "harper@mergington.edu"}},
		{Name: "Drama Club", Description: "Act, direct, and produce plays and performances", Schedule: "Mondays and Wednesdays, 4:00 PM - 5:30 PM", MaxParticipants: 20,
			Participants: []string{"ella@mergington.edu", "scarlett@mergington.edu"}},
		{Name: "GitHub Skills", Description: "Learn practical coding and collaboration skills with GitHub", Schedule: "Tuesdays, 4:00 PM - 5:00 PM", MaxParticipants: 15,
			Participants: []string{}},
		{Name: "Math Club", Description: "Solve challenging problems and participate in math competitions", Schedule: "Tuesdays, 3:30 PM - 4:30 PM", MaxParticipants: 10,
			Participants: []string{"james@mergington.edu", "benjamin@mergington.edu"}},
		{Name: "Debate Team", Description: "Develop public speaking and argumentation skills", Schedule: "Fridays, 4:00 PM - 5:30 PM", MaxParticipants: 12,
			Participants: []string{"charlotte@mergington.edu", "henry@mergington.edu"}},
	}
}

// ExecuteSeed creates the default accounts and activity catalog.
// It is idempotent: existing accounts are kept, and activities are only
// seeded into an empty catalog.
// PRE: Database is migrated
// POST: Every seed account exists; the catalog is non-empty
func ExecuteSeed(ctx context.Context, deps SeedDeps) error {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	created := 0
	for _, def := range SeedAccounts() {
		if _, err := deps.AccountStore.GetByEmail(ctx, def.Email); err == nil {
			continue
		}
		acct := account.Account{
			ID:        uuid.New().String(),
			Email:     def.Email,
			Role:      def.Role,
			CreatedAt: now(),
		}
		if err := acct.SetPassword(SeedPassword); err != nil {
			return fmt.Errorf("hash password for %s: %w", def.Email, err)
		}
		if err := acct.Validate(); err != nil {
			return fmt.Errorf("seed account %s: %w", def.Email, err)
		}
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return fmt.Errorf("save account %s: %w", def.Email, err)
		}
		created++
	}

	count, err := deps.ActivityStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("count activities: %w", err)
	}
	seededActivities := 0
	if count == 0 {
		activities := SeedActivities()
		if err := activity.ValidateCollection(activities); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		for _, a := range activities {
			if err := deps.ActivityStore.Save(ctx, a); err != nil {
				return fmt.Errorf("save activity %s: %w", a.Name, err)
			}
		}
		seededActivities = len(activities)
	}

	slog.Info("seed_event", "event", "seeded", "accounts_created", created, "activities_created", seededActivities)
	return nil
}

package activity

import (
	"context"

	domain "signup/internal/domain/activity"
)

// Store persists activities and their ordered participant lists.
type Store interface {
	List(ctx context.Context) ([]domain.Activity, error)
	Get(ctx context.Context, name string) (domain.Activity, error)
	Save(ctx context.Context, value domain.Activity) error
	AddParticipant(ctx context.Context, name, email string) (domain.Activity, error)
	RemoveParticipant(ctx context.Context, name, email string) (domain.Activity, error)
	Count(ctx context.Context) (int, error)
}

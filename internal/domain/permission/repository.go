package permission

import (
	"context"
	"time"
)

type Repository interface {
	// Get reports false when the config record does not exist yet.
	Get(ctx context.Context) (Flags, bool, error)
	// Update writes only the named flags, creating the record from
	// DefaultFlags when missing.
	Update(ctx context.Context, updates map[Flag]bool, at time.Time) error
}

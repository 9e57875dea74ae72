package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/permission"
)

type PermissionRepository struct {
	mu     sync.RWMutex
	flags  permission.Flags
	exists bool
}

// NewPermissionRepository starts without a stored record.
func NewPermissionRepository() *PermissionRepository {
	return &PermissionRepository{}
}

func (r *PermissionRepository) Get(_ context.Context) (permission.Flags, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.flags, r.exists, nil
}

func (r *PermissionRepository) Update(_ context.Context, updates map[permission.Flag]bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := r.flags
	if !r.exists {
		base = permission.DefaultFlags()
	}
	r.flags = base.With(updates)
	r.flags.UpdatedAt = at
	r.exists = true
	return nil
}

package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/permission"
	"github.com/riskibarqy/awap-platform/internal/domain/rating"
	"github.com/stretchr/testify/require"
)

type countingPermissionRepo struct {
	gets    int
	flags   permission.Flags
	exists  bool
	failGet error
}

func (r *countingPermissionRepo) Get(context.Context) (permission.Flags, bool, error) {
	r.gets++
	if r.failGet != nil {
		return permission.Flags{}, false, r.failGet
	}
	return r.flags, r.exists, nil
}

func (r *countingPermissionRepo) Update(_ context.Context, updates map[permission.Flag]bool, at time.Time) error {
	r.flags = permission.DefaultFlags().With(updates)
	r.flags.UpdatedAt = at
	r.exists = true
	return nil
}

func TestPermissionRepository_CachesUntilUpdate(t *testing.T) {
	ctx := context.Background()
	next := &countingPermissionRepo{}
	repo := NewPermissionRepository(next, time.Minute)

	_, exists, err := repo.Get(ctx)
	require.NoError(t, err)
	require.False(t, exists)
	_, _, err = repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, next.gets)

	require.NoError(t, repo.Update(ctx, map[permission.Flag]bool{permission.FlagScrimmageRequests: false}, time.Now()))

	flags, exists, err := repo.Get(ctx)
	require.NoError(t, err)
	require.True(t, exists)
	require.False(t, flags.ScrimmageRequests)
	require.Equal(t, 2, next.gets)
}

func TestPermissionRepository_DoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	next := &countingPermissionRepo{failGet: errors.New("timeout")}
	repo := NewPermissionRepository(next, time.Minute)

	_, _, err := repo.Get(ctx)
	require.Error(t, err)

	next.failGet = nil
	_, _, err = repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, next.gets)
}

// pausingPermissionRepo parks the first Get after it has read the flags, so
// a write can land while that load is still in flight.
type pausingPermissionRepo struct {
	mu      sync.Mutex
	flags   permission.Flags
	paused  bool
	loaded  chan struct{}
	release chan struct{}
}

func (r *pausingPermissionRepo) Get(context.Context) (permission.Flags, bool, error) {
	r.mu.Lock()
	flags := r.flags
	pause := !r.paused
	r.paused = true
	r.mu.Unlock()

	if pause {
		close(r.loaded)
		<-r.release
	}
	return flags, true, nil
}

func (r *pausingPermissionRepo) Update(_ context.Context, updates map[permission.Flag]bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags = r.flags.With(updates)
	r.flags.UpdatedAt = at
	return nil
}

func TestPermissionRepository_UpdateDuringLoadIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	next := &pausingPermissionRepo{
		flags:   permission.DefaultFlags(),
		loaded:  make(chan struct{}),
		release: make(chan struct{}),
	}
	repo := NewPermissionRepository(next, time.Minute)

	done := make(chan error, 1)
	go func() {
		_, _, err := repo.Get(ctx)
		done <- err
	}()

	<-next.loaded
	require.NoError(t, repo.Update(ctx, map[permission.Flag]bool{permission.FlagScrimmageRequests: false}, time.Now()))
	close(next.release)
	require.NoError(t, <-done)

	flags, exists, err := repo.Get(ctx)
	require.NoError(t, err)
	require.True(t, exists)
	require.False(t, flags.ScrimmageRequests)

	flags, _, err = repo.Get(ctx)
	require.NoError(t, err)
	require.False(t, flags.ScrimmageRequests)
}

type staticRatingRepo struct {
	calls   int
	entries []rating.Entry
}

func (r *staticRatingRepo) List(context.Context) ([]rating.Entry, error) {
	r.calls++
	return r.entries, nil
}

func TestRatingRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	next := &staticRatingRepo{entries: []rating.Entry{{Team: "alpha", Rating: 1200}}}
	repo := NewRatingRepository(next, time.Minute)

	first, err := repo.List(ctx)
	require.NoError(t, err)
	first[0].Team = "mutated"

	second, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "alpha", second[0].Team)
	require.Equal(t, 1, next.calls)
}

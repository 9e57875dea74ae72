package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/permission"
	"github.com/riskibarqy/awap-platform/internal/domain/rating"
	basecache "github.com/riskibarqy/awap-platform/internal/platform/cache"
	"github.com/riskibarqy/awap-platform/internal/platform/resilience"
)

const (
	permissionKey = "permission:config"
	ratingListKey = "rating:list"
)

// PermissionRepository caches the singleton flags record. Update bumps the
// generation after the write commits; a load that overlaps an Update returns
// its result without caching it.
type PermissionRepository struct {
	next       permission.Repository
	cache      *basecache.Store[cachedFlags]
	flight     resilience.SingleFlight[cachedFlags]
	mu         sync.Mutex
	generation uint64
}

type cachedFlags struct {
	value  permission.Flags
	exists bool
}

func NewPermissionRepository(next permission.Repository, ttl time.Duration) *PermissionRepository {
	return &PermissionRepository{next: next, cache: basecache.NewStore[cachedFlags](ttl, 1)}
}

func (r *PermissionRepository) Get(ctx context.Context) (permission.Flags, bool, error) {
	if v, ok := r.cache.Get(ctx, permissionKey); ok {
		return v.value, v.exists, nil
	}

	gen := r.currentGeneration()
	v, err, _ := r.flight.Do(permissionKey+":"+strconv.FormatUint(gen, 10), func() (cachedFlags, error) {
		flags, exists, err := r.next.Get(ctx)
		if err != nil {
			return cachedFlags{}, err
		}
		loaded := cachedFlags{value: flags, exists: exists}

		r.mu.Lock()
		if r.generation == gen {
			r.cache.Set(ctx, permissionKey, loaded)
		}
		r.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return permission.Flags{}, false, err
	}
	return v.value, v.exists, nil
}

func (r *PermissionRepository) Update(ctx context.Context, updates map[permission.Flag]bool, at time.Time) error {
	err := r.next.Update(ctx, updates, at)

	r.mu.Lock()
	r.generation++
	r.cache.Delete(ctx, permissionKey)
	r.mu.Unlock()
	return err
}

func (r *PermissionRepository) currentGeneration() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// RatingRepository caches the full rating scan behind the public leaderboard.
type RatingRepository struct {
	next  rating.Repository
	cache *basecache.Store[[]rating.Entry]
}

func NewRatingRepository(next rating.Repository, ttl time.Duration) *RatingRepository {
	return &RatingRepository{next: next, cache: basecache.NewStore[[]rating.Entry](ttl, 1)}
}

func (r *RatingRepository) List(ctx context.Context) ([]rating.Entry, error) {
	items, err := r.cache.GetOrLoad(ctx, ratingListKey, func(ctx context.Context) ([]rating.Entry, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]rating.Entry(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]rating.Entry(nil), items...), nil
}

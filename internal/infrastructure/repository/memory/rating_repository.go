package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/awap-platform/internal/domain/rating"
)

type RatingRepository struct {
	mu      sync.RWMutex
	entries []rating.Entry
}

func NewRatingRepository(entries []rating.Entry) *RatingRepository {
	out := make([]rating.Entry, 0, len(entries))
	out = append(out, entries...)

	return &RatingRepository{entries: out}
}

func (r *RatingRepository) Append(entry rating.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
}

func (r *RatingRepository) List(_ context.Context) ([]rating.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]rating.Entry, 0, len(r.entries))
	out = append(out, r.entries...)
	return out, nil
}

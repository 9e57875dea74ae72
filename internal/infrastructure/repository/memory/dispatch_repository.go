package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/awap-platform/internal/domain/dispatch"
)

type DispatchRepository struct {
	mu     sync.RWMutex
	events map[string]dispatch.Event
}

func NewDispatchRepository() *DispatchRepository {
	return &DispatchRepository{events: make(map[string]dispatch.Event)}
}

// UpsertEvent keeps the latest state per dispatch; the first payload and
// requester survive later transitions.
func (r *DispatchRepository) UpsertEvent(_ context.Context, event dispatch.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.events[event.DispatchID]; ok {
		if len(event.Payload) == 0 {
			event.Payload = current.Payload
		}
		if event.RequestedBy == "" {
			event.RequestedBy = current.RequestedBy
		}
	}
	r.events[event.DispatchID] = event
	return nil
}

func (r *DispatchRepository) ListRecent(_ context.Context, limit int) ([]dispatch.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dispatch.Event, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

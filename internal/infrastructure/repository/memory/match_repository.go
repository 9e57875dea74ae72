package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/match"
)

// MatchRepository holds match records. In production they are written by the
// matchmaking service; Put stands in for it.
type MatchRepository struct {
	mu      sync.RWMutex
	matches []match.Match
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	out := make([]match.Match, 0, len(matches))
	out = append(out, matches...)

	return &MatchRepository{matches: out}
}

// Put inserts or replaces a match by ID.
func (r *MatchRepository) Put(item match.Match) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx := range r.matches {
		if r.matches[idx].ID == item.ID {
			r.matches[idx] = item
			return
		}
	}
	r.matches = append(r.matches, item)
}

func (r *MatchRepository) ListByTeam(_ context.Context, team string) ([]match.Match, error) {
	return r.filter(func(m match.Match) bool { return m.Involves(team) }), nil
}

func (r *MatchRepository) ListByCategory(_ context.Context, category match.Category) ([]match.Match, error) {
	return r.filter(func(m match.Match) bool { return category == "" || m.Category == category }), nil
}

func (r *MatchRepository) ListPendingBetween(_ context.Context, team1, team2 string) ([]match.Match, error) {
	return r.filter(func(m match.Match) bool {
		return m.Team1 == team1 && m.Team2 == team2 && m.Status == match.StatusPending
	}), nil
}

func (r *MatchRepository) filter(keep func(match.Match) bool) []match.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.matches {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type ReservationRepository struct {
	mu    sync.Mutex
	items map[[2]string]match.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{items: make(map[[2]string]match.Reservation)}
}

func (r *ReservationRepository) Reserve(_ context.Context, item match.Reservation, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := [2]string{item.Team1, item.Team2}
	if current, ok := r.items[key]; ok && current.ExpiresAt.After(now) {
		return false, nil
	}
	r.items[key] = item
	return true, nil
}

func (r *ReservationRepository) Release(_ context.Context, team1, team2, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := [2]string{team1, team2}
	if current, ok := r.items[key]; ok && current.Token == token {
		delete(r.items, key)
	}
	return nil
}

package rating

import (
	"context"
	"time"
)

// Entry is one rating snapshot written by the matchmaking service after a
// ranked match. A team accumulates many entries over time.
type Entry struct {
	Team      string
	Rating    float64
	UpdatedAt time.Time
}

type Repository interface {
	List(ctx context.Context) ([]Entry, error)
}

// Latest keeps the most recent entry per team.
func Latest(entries []Entry) []Entry {
	byTeam := make(map[string]Entry, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		current, ok := byTeam[e.Team]
		if !ok {
			order = append(order, e.Team)
			byTeam[e.Team] = e
			continue
		}
		if e.UpdatedAt.After(current.UpdatedAt) {
			byTeam[e.Team] = e
		}
	}

	out := make([]Entry, 0, len(order))
	for _, team := range order {
		out = append(out, byTeam[team])
	}
	return out
}

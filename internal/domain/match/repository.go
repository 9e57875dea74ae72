package match

import (
	"context"
	"time"
)

type Repository interface {
	// ListByTeam returns matches where team sits in either slot.
	ListByTeam(ctx context.Context, team string) ([]Match, error)
	// ListByCategory with an empty category returns every match.
	ListByCategory(ctx context.Context, category Category) ([]Match, error)
	// ListPendingBetween matches the ordered pair exactly: (a, b) does not return (b, a).
	ListPendingBetween(ctx context.Context, team1, team2 string) ([]Match, error)
}

type ReservationRepository interface {
	// Reserve stores r unless an unexpired reservation for the same ordered pair
	// exists. It reports whether r now holds the pair.
	Reserve(ctx context.Context, r Reservation, now time.Time) (bool, error)
	// Release drops the reservation only while it still carries token.
	Release(ctx context.Context, team1, team2, token string) error
}

package dispatch

import "context"

type Repository interface {
	UpsertEvent(ctx context.Context, event Event) error
	// ListRecent returns the newest dispatches first, one row per DispatchID.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

package submission

import "context"

type Repository interface {
	Create(ctx context.Context, s Submission) error
	Get(ctx context.Context, team, objectKey string) (Submission, bool, error)
	// ListByTeam and ListAll return newest first.
	ListByTeam(ctx context.Context, team string) ([]Submission, error)
	ListAll(ctx context.Context) ([]Submission, error)
}

package team

import (
	"context"
	"time"
)

// EligibilityFilter selects teams with a non-empty active version. An empty
// Bracket matches every bracket.
type EligibilityFilter struct {
	Bracket Bracket
}

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByName(ctx context.Context, name string) (Team, bool, error)
	// Create inserts the team only if the name is free, else ErrAlreadyExists.
	Create(ctx context.Context, t Team) error
	ListEligible(ctx context.Context, filter EligibilityFilter) ([]Team, error)
	// SetActiveVersion is last-write-wins.
	SetActiveVersion(ctx context.Context, name, objectKey string, at time.Time) error
	SetBracket(ctx context.Context, name string, bracket Bracket, at time.Time) error
	AddMember(ctx context.Context, name, username string, at time.Time) error
}

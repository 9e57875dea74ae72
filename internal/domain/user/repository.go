package user

import "context"

type Repository interface {
	GetByUsername(ctx context.Context, username string) (User, bool, error)
	// Create inserts only if the username is free, else ErrAlreadyExists.
	Create(ctx context.Context, u User) error
	SetTeam(ctx context.Context, username, team string) error
}

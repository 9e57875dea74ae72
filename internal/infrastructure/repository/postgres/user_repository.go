package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/awap-platform/internal/domain/user"
	qb "github.com/riskibarqy/awap-platform/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (user.User, bool, error) {
	query, args, err := qb.Select(qb.Columns(userTableModel{})...).From("users").
		Where(qb.Eq("username", username)).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build select user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user username=%s: %w", username, err)
	}

	return user.User{
		Username:     row.Username,
		Email:        nullStringValue(row.Email),
		PasswordHash: row.PasswordHash,
		Role:         user.Role(row.Role),
		Team:         nullStringValue(row.Team),
		CreatedAt:    row.CreatedAt,
	}, true, nil
}

func (r *UserRepository) Create(ctx context.Context, item user.User) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	model := userInsertModel{
		Username:     item.Username,
		Email:        optionalString(item.Email),
		PasswordHash: item.PasswordHash,
		Role:         string(item.Role),
		Team:         optionalString(item.Team),
		CreatedAt:    utcOrNow(item.CreatedAt),
	}
	query, args, err := qb.InsertModel("users", model, "")
	if err != nil {
		return fmt.Errorf("build insert user query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", user.ErrAlreadyExists, item.Username)
		}
		return fmt.Errorf("insert user username=%s: %w", item.Username, err)
	}
	return nil
}

func (r *UserRepository) SetTeam(ctx context.Context, username, teamName string) error {
	query, args, err := qb.Update("users").
		Set("team_name", optionalString(teamName)).
		Where(qb.Eq("username", username)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update user team query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user team username=%s: %w", username, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows for user username=%s: %w", username, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", user.ErrNotFound, username)
	}
	return nil
}

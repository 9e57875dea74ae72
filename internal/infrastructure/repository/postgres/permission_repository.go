package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/awap-platform/internal/domain/permission"
	qb "github.com/riskibarqy/awap-platform/internal/platform/querybuilder"
)

// configProfileID names the single row of the permission_config table.
const configProfileID = "config_profile_1"

type permissionTableModel struct {
	ID                string    `db:"id"`
	BracketSwitching  bool      `db:"bracket_switching"`
	TeamModifications bool      `db:"team_modifications"`
	ScrimmageRequests bool      `db:"scrimmage_requests"`
	CodeSubmissions   bool      `db:"code_submissions"`
	UpdatedAt         time.Time `db:"updated_at"`
}

type PermissionRepository struct {
	db *sqlx.DB
}

func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) Get(ctx context.Context) (permission.Flags, bool, error) {
	return r.get(ctx, r.db, "")
}

// Update locks the row, merges updates onto it and writes it back, so
// concurrent toggles of different flags do not overwrite each other.
func (r *PermissionRepository) Update(ctx context.Context, updates map[permission.Flag]bool, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for permission update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, exists, err := r.get(ctx, tx, "FOR UPDATE")
	if err != nil {
		return err
	}
	if !exists {
		current = permission.DefaultFlags()
	}
	next := current.With(updates)

	query, args, err := qb.InsertModel("permission_config", permissionTableModel{
		ID:                configProfileID,
		BracketSwitching:  next.BracketSwitching,
		TeamModifications: next.TeamModifications,
		ScrimmageRequests: next.ScrimmageRequests,
		CodeSubmissions:   next.CodeSubmissions,
		UpdatedAt:         utcOrNow(at),
	}, `ON CONFLICT (id)
DO UPDATE SET
    bracket_switching = EXCLUDED.bracket_switching,
    team_modifications = EXCLUDED.team_modifications,
    scrimmage_requests = EXCLUDED.scrimmage_requests,
    code_submissions = EXCLUDED.code_submissions,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert permission config query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert permission config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit permission update tx: %w", err)
	}
	return nil
}

func (r *PermissionRepository) get(ctx context.Context, q sqlx.QueryerContext, lock string) (permission.Flags, bool, error) {
	query, args, err := qb.Select(qb.Columns(permissionTableModel{})...).From("permission_config").
		Where(qb.Eq("id", configProfileID)).
		ToSQL()
	if err != nil {
		return permission.Flags{}, false, fmt.Errorf("build select permission config query: %w", err)
	}
	if lock != "" {
		query += " " + lock
	}

	var row permissionTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return permission.Flags{}, false, nil
		}
		return permission.Flags{}, false, fmt.Errorf("get permission config: %w", err)
	}

	return permission.Flags{
		BracketSwitching:  row.BracketSwitching,
		TeamModifications: row.TeamModifications,
		ScrimmageRequests: row.ScrimmageRequests,
		CodeSubmissions:   row.CodeSubmissions,
		UpdatedAt:         row.UpdatedAt,
	}, true, nil
}

package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/awap-platform/internal/domain/team"
	qb "github.com/riskibarqy/awap-platform/internal/platform/querybuilder"
)

var teamColumns = qb.Columns(teamTableModel{})

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (team.Team, bool, error) {
	query, args, err := qb.Select(teamColumns...).From("teams").
		Where(qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team name=%s: %w", name, err)
	}
	return mapTeamRow(row), true, nil
}

func (r *TeamRepository) Create(ctx context.Context, item team.Team) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid team: %w", err)
	}

	createdAt := utcOrNow(item.CreatedAt)
	model := teamInsertModel{
		Name:          item.Name,
		Bracket:       string(item.Bracket),
		Members:       pq.StringArray(item.Members),
		ActiveVersion: optionalString(item.ActiveVersion),
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	query, args, err := qb.InsertModel("teams", model, "")
	if err != nil {
		return fmt.Errorf("build insert team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", team.ErrAlreadyExists, item.Name)
		}
		return fmt.Errorf("insert team name=%s: %w", item.Name, err)
	}
	return nil
}

func (r *TeamRepository) ListEligible(ctx context.Context, filter team.EligibilityFilter) ([]team.Team, error) {
	conditions := []qb.Condition{
		qb.Expr("COALESCE(TRIM(active_version), '') <> ''"),
	}
	if filter.Bracket != "" {
		conditions = append(conditions, qb.Eq("bracket", string(filter.Bracket)))
	}

	query, args, err := qb.Select(teamColumns...).From("teams").
		Where(conditions...).
		OrderBy("name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select eligible teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select eligible teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapTeamRow(row))
	}
	return out, nil
}

func (r *TeamRepository) SetActiveVersion(ctx context.Context, name, objectKey string, at time.Time) error {
	return r.update(ctx, name, qb.Update("teams").
		Set("active_version", optionalString(objectKey)).
		Set("updated_at", utcOrNow(at)).
		Where(qb.Eq("name", name)))
}

func (r *TeamRepository) SetBracket(ctx context.Context, name string, bracket team.Bracket, at time.Time) error {
	return r.update(ctx, name, qb.Update("teams").
		Set("bracket", string(bracket)).
		Set("updated_at", utcOrNow(at)).
		Where(qb.Eq("name", name)))
}

func (r *TeamRepository) AddMember(ctx context.Context, name, username string, at time.Time) error {
	username = strings.TrimSpace(username)
	return r.update(ctx, name, qb.Update("teams").
		SetExpr("members", "CASE WHEN ? = ANY(members) THEN members ELSE array_append(members, ?) END", username, username).
		Set("updated_at", utcOrNow(at)).
		Where(qb.Eq("name", name)))
}

func (r *TeamRepository) update(ctx context.Context, name string, builder *qb.UpdateBuilder) error {
	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build update team query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update team name=%s: %w", name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows for team name=%s: %w", name, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", team.ErrNotFound, name)
	}
	return nil
}

func mapTeamRow(row teamTableModel) team.Team {
	return team.Team{
		Name:          row.Name,
		Bracket:       team.Bracket(row.Bracket),
		Members:       []string(row.Members),
		ActiveVersion: nullStringValue(row.ActiveVersion),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

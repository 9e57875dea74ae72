package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/awap-platform/internal/domain/match"
	qb "github.com/riskibarqy/awap-platform/internal/platform/querybuilder"
)

type matchTableModel struct {
	ID        string         `db:"id"`
	Category  string         `db:"category"`
	Team1     string         `db:"team1"`
	Team2     string         `db:"team2"`
	Status    string         `db:"status"`
	Outcome   sql.NullString `db:"outcome"`
	ReplayKey sql.NullString `db:"replay_key"`
	CreatedAt time.Time      `db:"created_at"`
}

var matchColumns = qb.Columns(matchTableModel{})

// MatchRepository reads the match table the matchmaking service writes.
type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) ListByTeam(ctx context.Context, teamName string) ([]match.Match, error) {
	return r.list(ctx, qb.Or(qb.Eq("team1", teamName), qb.Eq("team2", teamName)))
}

func (r *MatchRepository) ListByCategory(ctx context.Context, category match.Category) ([]match.Match, error) {
	if category == "" {
		return r.list(ctx)
	}
	return r.list(ctx, qb.Eq("category", string(category)))
}

func (r *MatchRepository) ListPendingBetween(ctx context.Context, team1, team2 string) ([]match.Match, error) {
	return r.list(ctx,
		qb.Eq("team1", team1),
		qb.Eq("team2", team2),
		qb.Eq("status", string(match.StatusPending)),
	)
}

func (r *MatchRepository) list(ctx context.Context, conditions ...qb.Condition) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns...).From("matches").
		Where(conditions...).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.Match{
			ID:        row.ID,
			Category:  match.Category(row.Category),
			Team1:     row.Team1,
			Team2:     row.Team2,
			Status:    match.Status(row.Status),
			Outcome:   match.Outcome(nullStringValue(row.Outcome)),
			ReplayKey: nullStringValue(row.ReplayKey),
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

type reservationInsertModel struct {
	Team1     string    `db:"team1"`
	Team2     string    `db:"team2"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
}

type ReservationRepository struct {
	db *sqlx.DB
}

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Reserve takes over an expired row in the same statement, so two racing
// requests for one pair cannot both win.
func (r *ReservationRepository) Reserve(ctx context.Context, item match.Reservation, now time.Time) (bool, error) {
	query, args, err := qb.InsertModel("match_reservations", reservationInsertModel{
		Team1:     item.Team1,
		Team2:     item.Team2,
		Token:     item.Token,
		ExpiresAt: item.ExpiresAt.UTC(),
	}, `ON CONFLICT (team1, team2)
DO UPDATE SET
    token = EXCLUDED.token,
    expires_at = EXCLUDED.expires_at
WHERE match_reservations.expires_at <= ?
RETURNING token`, now.UTC())
	if err != nil {
		return false, fmt.Errorf("build reserve match query: %w", err)
	}

	var token string
	if err := r.db.GetContext(ctx, &token, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("reserve match team1=%s team2=%s: %w", item.Team1, item.Team2, err)
	}
	return token == item.Token, nil
}

func (r *ReservationRepository) Release(ctx context.Context, team1, team2, token string) error {
	query, args, err := qb.DeleteFrom("match_reservations").
		Where(
			qb.Eq("team1", team1),
			qb.Eq("team2", team2),
			qb.Eq("token", token),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build release match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("release match team1=%s team2=%s: %w", team1, team2, err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/awap-platform/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the development fixtures into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM teams`); err != nil {
		return fmt.Errorf("count teams for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, t := range memory.SeedTeams() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO teams (name, bracket, members, active_version, created_at, updated_at)
VALUES (:name, :bracket, :members, :active_version, :created_at, :updated_at)
ON CONFLICT (name) DO NOTHING`, map[string]any{
			"name":           t.Name,
			"bracket":        string(t.Bracket),
			"members":        pq.StringArray(t.Members),
			"active_version": optionalString(t.ActiveVersion),
			"created_at":     t.CreatedAt.UTC(),
			"updated_at":     t.UpdatedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind seed team %s query: %w", t.Name, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed team %s: %w", t.Name, err)
		}
	}

	for _, e := range memory.SeedRatings() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO team_ratings (team_name, rating, updated_at)
VALUES (:team_name, :rating, :updated_at)`, map[string]any{
			"team_name":  e.Team,
			"rating":     e.Rating,
			"updated_at": e.UpdatedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind seed rating %s query: %w", e.Team, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed rating %s: %w", e.Team, err)
		}
	}

	for _, m := range memory.SeedMatches() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO matches (id, category, team1, team2, status, outcome, replay_key, created_at)
VALUES (:id, :category, :team1, :team2, :status, :outcome, :replay_key, :created_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":         m.ID,
			"category":   string(m.Category),
			"team1":      m.Team1,
			"team2":      m.Team2,
			"status":     string(m.Status),
			"outcome":    optionalString(string(m.Outcome)),
			"replay_key": optionalString(m.ReplayKey),
			"created_at": m.CreatedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind seed match %s query: %w", m.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed match %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/awap-platform/internal/domain/rating"
	qb "github.com/riskibarqy/awap-platform/internal/platform/querybuilder"
)

type ratingTableModel struct {
	TeamName  string    `db:"team_name"`
	Rating    float64   `db:"rating"`
	UpdatedAt time.Time `db:"updated_at"`
}

// RatingRepository reads the rating snapshots the matchmaking service appends.
type RatingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) List(ctx context.Context) ([]rating.Entry, error) {
	query, args, err := qb.Select(qb.Columns(ratingTableModel{})...).From("team_ratings").
		OrderBy("updated_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list ratings query: %w", err)
	}

	var rows []ratingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	out := make([]rating.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, rating.Entry{
			Team:      row.TeamName,
			Rating:    row.Rating,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}

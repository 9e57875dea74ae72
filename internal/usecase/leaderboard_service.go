package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/rating"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
)

const (
	defaultLeaderboardPerPage = 10
	maxLeaderboardPerPage     = 100
)

type LeaderboardQuery struct {
	Page    int
	PerPage int
	// Sort is one of ranking, team_name or rating.
	Sort string
	// Order is asc or desc.
	Order string
}

type LeaderboardRow struct {
	Ranking   int
	Team      string
	Rating    int
	UpdatedAt time.Time
}

type PageMeta struct {
	CurrentPage int
	LastPage    int
	From        int
	To          int
	PerPage     int
	Total       int
}

type LeaderboardPage struct {
	Rows []LeaderboardRow
	Meta PageMeta
}

type LeaderboardService struct {
	ratingRepo rating.Repository
	logger     *logging.Logger
}

func NewLeaderboardService(ratingRepo rating.Repository, logger *logging.Logger) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{ratingRepo: ratingRepo, logger: logger}
}

// Leaderboard ranks every team by its newest rating snapshot, highest first,
// then re-sorts and pages the ranked rows according to q.
func (s *LeaderboardService) Leaderboard(ctx context.Context, q LeaderboardQuery) (LeaderboardPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Leaderboard")
	defer span.End()

	q, err := normalizeLeaderboardQuery(q)
	if err != nil {
		return LeaderboardPage{}, err
	}

	entries, err := s.ratingRepo.List(ctx)
	if err != nil {
		recordSpanError(span, err)
		return LeaderboardPage{}, fmt.Errorf("list ratings: %w", err)
	}

	latest := rating.Latest(entries)
	sort.SliceStable(latest, func(i, j int) bool {
		if latest[i].Rating != latest[j].Rating {
			return latest[i].Rating > latest[j].Rating
		}
		return latest[i].Team < latest[j].Team
	})

	rows := make([]LeaderboardRow, 0, len(latest))
	for idx, entry := range latest {
		rows = append(rows, LeaderboardRow{
			Ranking:   idx + 1,
			Team:      entry.Team,
			Rating:    int(entry.Rating),
			UpdatedAt: entry.UpdatedAt,
		})
	}
	sortLeaderboardRows(rows, q.Sort, q.Order)

	total := len(rows)
	start := (q.Page - 1) * q.PerPage
	if start > total {
		start = total
	}
	end := start + q.PerPage
	if end > total {
		end = total
	}

	meta := PageMeta{
		CurrentPage: q.Page,
		LastPage:    int(math.Ceil(float64(total) / float64(q.PerPage))),
		PerPage:     q.PerPage,
		Total:       total,
	}
	if end > start {
		meta.From = start + 1
		meta.To = end
	}

	return LeaderboardPage{Rows: rows[start:end], Meta: meta}, nil
}

func normalizeLeaderboardQuery(q LeaderboardQuery) (LeaderboardQuery, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = defaultLeaderboardPerPage
	}
	if q.PerPage > maxLeaderboardPerPage {
		return q, fmt.Errorf("%w: per_page must be at most %d", ErrInvalidInput, maxLeaderboardPerPage)
	}

	q.Sort = strings.ToLower(strings.TrimSpace(q.Sort))
	switch q.Sort {
	case "":
		q.Sort = "ranking"
	case "ranking", "team_name", "rating":
	default:
		return q, fmt.Errorf("%w: unsupported sort %q", ErrInvalidInput, q.Sort)
	}

	q.Order = strings.ToLower(strings.TrimSpace(q.Order))
	switch q.Order {
	case "":
		q.Order = "asc"
	case "asc", "desc":
	default:
		return q, fmt.Errorf("%w: unsupported order %q", ErrInvalidInput, q.Order)
	}
	return q, nil
}

func sortLeaderboardRows(rows []LeaderboardRow, key, order string) {
	less := func(a, b LeaderboardRow) bool {
		switch key {
		case "team_name":
			return a.Team < b.Team
		case "rating":
			if a.Rating != b.Rating {
				return a.Rating < b.Rating
			}
			return a.Ranking > b.Ranking
		default:
			return a.Ranking < b.Ranking
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if order == "desc" {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/rating"
	"github.com/riskibarqy/awap-platform/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
)

func newLeaderboardFixture() *LeaderboardService {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := memory.NewRatingRepository([]rating.Entry{
		{Team: "Alpha", Rating: 1200, UpdatedAt: base},
		{Team: "Beta", Rating: 1300, UpdatedAt: base},
		{Team: "Gamma", Rating: 1250, UpdatedAt: base},
		{Team: "Alpha", Rating: 1400, UpdatedAt: base.Add(time.Hour)},
		{Team: "Beta", Rating: 1100, UpdatedAt: base.Add(-time.Hour)},
	})
	return NewLeaderboardService(repo, logging.NewNop())
}

func TestLeaderboardService_RanksLatestRating(t *testing.T) {
	service := newLeaderboardFixture()

	page, err := service.Leaderboard(t.Context(), LeaderboardQuery{})
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}

	want := []LeaderboardRow{
		{Ranking: 1, Team: "Alpha", Rating: 1400},
		{Ranking: 2, Team: "Beta", Rating: 1300},
		{Ranking: 3, Team: "Gamma", Rating: 1250},
	}
	if len(page.Rows) != len(want) {
		t.Fatalf("unexpected rows: %#v", page.Rows)
	}
	for i := range want {
		got := page.Rows[i]
		if got.Ranking != want[i].Ranking || got.Team != want[i].Team || got.Rating != want[i].Rating {
			t.Fatalf("row %d = %+v want %+v", i, got, want[i])
		}
	}
	if page.Meta.Total != 3 || page.Meta.LastPage != 1 || page.Meta.From != 1 || page.Meta.To != 3 {
		t.Fatalf("unexpected meta: %+v", page.Meta)
	}
}

func TestLeaderboardService_SortAndPage(t *testing.T) {
	service := newLeaderboardFixture()

	page, err := service.Leaderboard(t.Context(), LeaderboardQuery{Sort: "team_name", Order: "desc", Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(page.Rows) != 1 || page.Rows[0].Team != "Alpha" || page.Rows[0].Ranking != 1 {
		t.Fatalf("unexpected second page: %#v", page.Rows)
	}
	if page.Meta.CurrentPage != 2 || page.Meta.LastPage != 2 || page.Meta.From != 3 || page.Meta.To != 3 {
		t.Fatalf("unexpected meta: %+v", page.Meta)
	}

	past, err := service.Leaderboard(t.Context(), LeaderboardQuery{Page: 9})
	if err != nil {
		t.Fatalf("leaderboard past end: %v", err)
	}
	if len(past.Rows) != 0 || past.Meta.From != 0 {
		t.Fatalf("expected empty page past the end: %+v", past)
	}
}

func TestLeaderboardService_RejectsBadQuery(t *testing.T) {
	service := newLeaderboardFixture()

	for _, q := range []LeaderboardQuery{
		{PerPage: 101},
		{Sort: "wins"},
		{Order: "sideways"},
	} {
		if _, err := service.Leaderboard(t.Context(), q); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("query %+v: expected ErrInvalidInput, got %v", q, err)
		}
	}
}

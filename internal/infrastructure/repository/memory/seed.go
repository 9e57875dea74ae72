package memory

import (
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/match"
	"github.com/riskibarqy/awap-platform/internal/domain/rating"
	"github.com/riskibarqy/awap-platform/internal/domain/team"
)

// Local development fixtures, loaded when STORE_DRIVER=memory.

var seedEpoch = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func SeedTeams() []team.Team {
	return []team.Team{
		{Name: "alpha", Bracket: team.BracketBeginner, Members: []string{"ana"}, ActiveVersion: "alpha/seed-alpha.py", CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
		{Name: "beta", Bracket: team.BracketBeginner, Members: []string{"ben"}, ActiveVersion: "beta/seed-beta.py", CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
		{Name: "gamma", Bracket: team.BracketAdvanced, Members: []string{"gil"}, ActiveVersion: "gamma/seed-gamma.py", CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
		{Name: "delta", Bracket: team.BracketAdvanced, Members: []string{"dee"}, CreatedAt: seedEpoch, UpdatedAt: seedEpoch},
	}
}

func SeedRatings() []rating.Entry {
	return []rating.Entry{
		{Team: "alpha", Rating: 1200, UpdatedAt: seedEpoch},
		{Team: "beta", Rating: 1200, UpdatedAt: seedEpoch},
		{Team: "gamma", Rating: 1200, UpdatedAt: seedEpoch},
		{Team: "alpha", Rating: 1216, UpdatedAt: seedEpoch.Add(time.Hour)},
		{Team: "beta", Rating: 1184, UpdatedAt: seedEpoch.Add(time.Hour)},
	}
}

func SeedMatches() []match.Match {
	return []match.Match{
		{
			ID:        "seed-ranked-1",
			Category:  match.CategoryRanked,
			Team1:     "alpha",
			Team2:     "beta",
			Status:    match.StatusComplete,
			Outcome:   match.OutcomeTeam1,
			ReplayKey: "replays/seed-ranked-1.json",
			CreatedAt: seedEpoch.Add(30 * time.Minute),
		},
		{
			ID:        "seed-tournament-1",
			Category:  match.CategoryTournament,
			Team1:     "gamma",
			Team2:     "alpha",
			Status:    match.StatusComplete,
			Outcome:   match.OutcomeDraw,
			CreatedAt: seedEpoch.Add(2 * time.Hour),
		},
	}
}

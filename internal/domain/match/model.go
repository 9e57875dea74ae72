package match

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Category string

const (
	CategoryScrimmage  Category = "scrimmage"
	CategoryTournament Category = "tournament"
	CategoryRanked     Category = "ranked"
	CategoryDirect     Category = "match"
)

func ParseCategory(v string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(v))); c {
	case CategoryScrimmage, CategoryTournament, CategoryRanked, CategoryDirect:
		return c, nil
	default:
		return "", fmt.Errorf("invalid match category %q", v)
	}
}

// Status is written by the matchmaking service. PENDING may never resolve.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusComplete Status = "COMPLETE"
)

// Outcome is stored relative to the participant slots.
type Outcome string

const (
	OutcomeNone  Outcome = ""
	OutcomeTeam1 Outcome = "team1"
	OutcomeTeam2 Outcome = "team2"
	OutcomeDraw  Outcome = "draw"
)

// Result is an outcome seen from one participant's side.
type Result string

const (
	ResultWin     Result = "WIN"
	ResultLoss    Result = "LOSS"
	ResultDraw    Result = "DRAW"
	ResultPending Result = "PENDING"
)

type Match struct {
	ID        string
	Category  Category
	Team1     string
	Team2     string
	Status    Status
	Outcome   Outcome
	ReplayKey string
	CreatedAt time.Time
}

func (m Match) Involves(team string) bool {
	return m.Team1 == team || m.Team2 == team
}

func (m Match) Opponent(team string) string {
	if m.Team1 == team {
		return m.Team2
	}
	return m.Team1
}

func (m Match) ResultFor(team string) Result {
	if m.Status != StatusComplete {
		return ResultPending
	}
	switch m.Outcome {
	case OutcomeDraw:
		return ResultDraw
	case OutcomeTeam1:
		if m.Team1 == team {
			return ResultWin
		}
		return ResultLoss
	case OutcomeTeam2:
		if m.Team2 == team {
			return ResultWin
		}
		return ResultLoss
	default:
		return ResultPending
	}
}

// BlocksRequest reports whether a pending match still holds the pair's cooldown.
// Age is compared in whole minutes, rounded to nearest.
func (m Match) BlocksRequest(now time.Time, cooldown time.Duration) bool {
	if m.Status != StatusPending {
		return false
	}
	ageMinutes := math.Round(now.Sub(m.CreatedAt).Minutes())
	return ageMinutes < cooldown.Minutes()
}

// Reservation is an insert-if-absent cooldown token for an ordered team pair.
type Reservation struct {
	Team1     string
	Team2     string
	Token     string
	ExpiresAt time.Time
}

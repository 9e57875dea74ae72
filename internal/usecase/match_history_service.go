package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/match"
	"github.com/riskibarqy/awap-platform/internal/domain/user"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
)

// TeamMatch is a match seen from one team's side.
type TeamMatch struct {
	ID        string
	Category  match.Category
	Opponent  string
	Status    match.Status
	Result    match.Result
	ReplayURL string
	CreatedAt time.Time
}

// AdminMatch is the unfiltered admin view of a match.
type AdminMatch struct {
	Match     match.Match
	ReplayURL string
}

type MatchHistoryService struct {
	matchRepo   match.Repository
	teams       TeamResolver
	objectStore ObjectStore
	logger      *logging.Logger
}

func NewMatchHistoryService(matchRepo match.Repository, teams TeamResolver, objectStore ObjectStore, logger *logging.Logger) *MatchHistoryService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchHistoryService{
		matchRepo:   matchRepo,
		teams:       teams,
		objectStore: objectStore,
		logger:      logger,
	}
}

// ForTeam lists the caller's team matches, newest first. Tournament games are
// never shown to players.
func (s *MatchHistoryService) ForTeam(ctx context.Context, principal user.Principal) ([]TeamMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchHistoryService.ForTeam")
	defer span.End()

	owner, err := s.teams.TeamOf(ctx, principal)
	if err != nil {
		return nil, err
	}

	items, err := s.matchRepo.ListByTeam(ctx, owner.Name)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("list team matches: %w", err)
	}
	sortNewestFirst(items)

	out := make([]TeamMatch, 0, len(items))
	for _, item := range items {
		if item.Category == match.CategoryTournament || !item.Involves(owner.Name) {
			continue
		}
		replayURL, err := s.replayURL(ctx, item)
		if err != nil {
			return nil, err
		}
		out = append(out, TeamMatch{
			ID:        item.ID,
			Category:  item.Category,
			Opponent:  item.Opponent(owner.Name),
			Status:    item.Status,
			Result:    item.ResultFor(owner.Name),
			ReplayURL: replayURL,
			CreatedAt: item.CreatedAt,
		})
	}
	return out, nil
}

// ForAdmin lists every match, optionally narrowed to one category.
func (s *MatchHistoryService) ForAdmin(ctx context.Context, categoryName string) ([]AdminMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchHistoryService.ForAdmin")
	defer span.End()

	var category match.Category
	if strings.TrimSpace(categoryName) != "" {
		parsed, err := match.ParseCategory(categoryName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		category = parsed
	}

	items, err := s.matchRepo.ListByCategory(ctx, category)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("list matches: %w", err)
	}
	sortNewestFirst(items)

	out := make([]AdminMatch, 0, len(items))
	for _, item := range items {
		replayURL, err := s.replayURL(ctx, item)
		if err != nil {
			return nil, err
		}
		out = append(out, AdminMatch{Match: item, ReplayURL: replayURL})
	}
	return out, nil
}

func (s *MatchHistoryService) replayURL(ctx context.Context, item match.Match) (string, error) {
	if item.ReplayKey == "" || s.objectStore == nil {
		return "", nil
	}
	url, err := s.objectStore.ReplayURL(ctx, item.ReplayKey)
	if err != nil {
		return "", fmt.Errorf("%w: replay url: %v", ErrDependencyUnavailable, err)
	}
	return url, nil
}

func sortNewestFirst(items []match.Match) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

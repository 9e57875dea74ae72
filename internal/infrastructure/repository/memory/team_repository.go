package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	byName := make(map[string]team.Team, len(teams))
	for _, item := range teams {
		byName[item.Name] = cloneTeam(item)
	}

	return &TeamRepository{teams: byName}
}

func (r *TeamRepository) GetByName(_ context.Context, name string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[name]
	if !ok {
		return team.Team{}, false, nil
	}
	return cloneTeam(item), true, nil
}

func (r *TeamRepository) Create(_ context.Context, item team.Team) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid team: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.teams[item.Name]; exists {
		return fmt.Errorf("%w: %s", team.ErrAlreadyExists, item.Name)
	}
	r.teams[item.Name] = cloneTeam(item)
	return nil
}

func (r *TeamRepository) ListEligible(_ context.Context, filter team.EligibilityFilter) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		if !item.HasActiveVersion() {
			continue
		}
		if filter.Bracket != "" && item.Bracket != filter.Bracket {
			continue
		}
		out = append(out, cloneTeam(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r *TeamRepository) SetActiveVersion(_ context.Context, name, objectKey string, at time.Time) error {
	return r.update(name, at, func(item *team.Team) {
		item.ActiveVersion = strings.TrimSpace(objectKey)
	})
}

func (r *TeamRepository) SetBracket(_ context.Context, name string, bracket team.Bracket, at time.Time) error {
	return r.update(name, at, func(item *team.Team) {
		item.Bracket = bracket
	})
}

func (r *TeamRepository) AddMember(_ context.Context, name, username string, at time.Time) error {
	return r.update(name, at, func(item *team.Team) {
		if !item.HasMember(username) {
			item.Members = append(item.Members, username)
		}
	})
}

func (r *TeamRepository) update(name string, at time.Time, mutate func(*team.Team)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.teams[name]
	if !ok {
		return fmt.Errorf("%w: %s", team.ErrNotFound, name)
	}
	mutate(&item)
	item.UpdatedAt = at
	r.teams[name] = item
	return nil
}

func cloneTeam(item team.Team) team.Team {
	item.Members = slices.Clone(item.Members)
	return item
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/permission"
	"github.com/riskibarqy/awap-platform/internal/domain/team"
	"github.com/riskibarqy/awap-platform/internal/domain/user"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
)

const maxTeamNameLength = 64

type TeamService struct {
	teamRepo    team.Repository
	userRepo    user.Repository
	permissions PermissionReader
	logger      *logging.Logger
	now         func() time.Time
}

func NewTeamService(teamRepo team.Repository, userRepo user.Repository, permissions PermissionReader, logger *logging.Logger) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamService{
		teamRepo:    teamRepo,
		userRepo:    userRepo,
		permissions: permissions,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *TeamService) GetTeam(ctx context.Context, name string) (team.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return team.Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	item, exists, err := s.teamRepo.GetByName(ctx, name)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, name)
	}
	return item, nil
}

// CreateTeam registers a new team with the caller as its only member.
func (s *TeamService) CreateTeam(ctx context.Context, principal user.Principal, name string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.CreateTeam")
	defer span.End()

	name = strings.TrimSpace(name)
	if err := validateTeamName(name); err != nil {
		return team.Team{}, err
	}
	if err := s.gate(ctx, principal, permission.FlagTeamModifications); err != nil {
		return team.Team{}, err
	}

	member, err := s.getUser(ctx, principal.Name)
	if err != nil {
		return team.Team{}, err
	}
	if member.Team != "" {
		return team.Team{}, fmt.Errorf("%w: user=%s already belongs to team=%s", ErrAlreadyExists, member.Username, member.Team)
	}

	now := s.now().UTC()
	item := team.Team{
		Name:      name,
		Bracket:   team.BracketBeginner,
		Members:   []string{member.Username},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.teamRepo.Create(ctx, item); err != nil {
		if errors.Is(err, team.ErrAlreadyExists) {
			return team.Team{}, fmt.Errorf("%w: team name %q is taken", ErrAlreadyExists, name)
		}
		recordSpanError(span, err)
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}

	if err := s.userRepo.SetTeam(ctx, member.Username, name); err != nil {
		recordSpanError(span, err)
		s.logger.ErrorContext(ctx, "attach user to new team failed", "team", name, "user", member.Username, "error", err)
		return team.Team{}, fmt.Errorf("set user team: %w", err)
	}

	s.logger.InfoContext(ctx, "team created", "team", name, "user", member.Username)
	return item, nil
}

// AddMember attaches a teamless user to the caller's team.
func (s *TeamService) AddMember(ctx context.Context, principal user.Principal, username string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.AddMember")
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" {
		return team.Team{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if err := s.gate(ctx, principal, permission.FlagTeamModifications); err != nil {
		return team.Team{}, err
	}

	item, err := s.teamOf(ctx, principal)
	if err != nil {
		return team.Team{}, err
	}

	newcomer, err := s.getUser(ctx, username)
	if err != nil {
		return team.Team{}, err
	}
	if newcomer.Team != "" {
		return team.Team{}, fmt.Errorf("%w: user=%s already belongs to team=%s", ErrAlreadyExists, username, newcomer.Team)
	}

	if err := s.teamRepo.AddMember(ctx, item.Name, username, s.now().UTC()); err != nil {
		recordSpanError(span, err)
		return team.Team{}, fmt.Errorf("add team member: %w", err)
	}
	if err := s.userRepo.SetTeam(ctx, username, item.Name); err != nil {
		recordSpanError(span, err)
		return team.Team{}, fmt.Errorf("set user team: %w", err)
	}

	if !item.HasMember(username) {
		item.Members = append(item.Members, username)
	}
	s.logger.InfoContext(ctx, "team member added", "team", item.Name, "user", username, "by", principal.Name)
	return item, nil
}

// ChangeBracket moves the caller's team to another bracket.
func (s *TeamService) ChangeBracket(ctx context.Context, principal user.Principal, bracketName string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ChangeBracket")
	defer span.End()

	bracket, err := team.ParseBracket(bracketName)
	if err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.gate(ctx, principal, permission.FlagBracketSwitching); err != nil {
		return team.Team{}, err
	}

	item, err := s.teamOf(ctx, principal)
	if err != nil {
		return team.Team{}, err
	}
	if item.Bracket == bracket {
		return item, nil
	}

	if err := s.teamRepo.SetBracket(ctx, item.Name, bracket, s.now().UTC()); err != nil {
		recordSpanError(span, err)
		return team.Team{}, fmt.Errorf("set team bracket: %w", err)
	}

	s.logger.InfoContext(ctx, "team bracket changed", "team", item.Name, "from", item.Bracket, "to", bracket)
	item.Bracket = bracket
	return item, nil
}

// TeamOf resolves the team the principal belongs to.
func (s *TeamService) TeamOf(ctx context.Context, principal user.Principal) (team.Team, error) {
	return s.teamOf(ctx, principal)
}

func (s *TeamService) teamOf(ctx context.Context, principal user.Principal) (team.Team, error) {
	member, err := s.getUser(ctx, principal.Name)
	if err != nil {
		return team.Team{}, err
	}
	if member.Team == "" {
		return team.Team{}, fmt.Errorf("%w: user=%s has no team", ErrNotFound, member.Username)
	}
	return s.GetTeam(ctx, member.Team)
}

func (s *TeamService) getUser(ctx context.Context, username string) (user.User, error) {
	item, exists, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user=%s", ErrNotFound, username)
	}
	return item, nil
}

func (s *TeamService) gate(ctx context.Context, principal user.Principal, flag permission.Flag) error {
	if principal.IsAdmin() {
		return nil
	}
	return requireFlag(ctx, s.permissions, flag)
}

func validateTeamName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}
	if len(name) > maxTeamNameLength {
		return fmt.Errorf("%w: team name must be at most %d characters", ErrInvalidInput, maxTeamNameLength)
	}
	if strings.ContainsAny(name, "/:#") {
		return fmt.Errorf("%w: team name cannot contain '/', ':' or '#'", ErrInvalidInput)
	}
	return nil
}

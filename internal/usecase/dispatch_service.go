package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/awap-platform/internal/domain/dispatch"
	"github.com/riskibarqy/awap-platform/internal/domain/match"
	"github.com/riskibarqy/awap-platform/internal/domain/permission"
	"github.com/riskibarqy/awap-platform/internal/domain/team"
	"github.com/riskibarqy/awap-platform/internal/domain/user"
	idgen "github.com/riskibarqy/awap-platform/internal/platform/id"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"
)

// ScrimmagePayloadMode selects what a ranked scrimmage round sends upstream.
type ScrimmagePayloadMode string

const (
	// ScrimmagePayloadRoster sends every team that has an active version.
	ScrimmagePayloadRoster ScrimmagePayloadMode = "roster"
	// ScrimmagePayloadTrigger sends an empty body; the matchmaker builds the roster itself.
	ScrimmagePayloadTrigger ScrimmagePayloadMode = "trigger"
)

func ParseScrimmagePayloadMode(v string) (ScrimmagePayloadMode, error) {
	switch m := ScrimmagePayloadMode(strings.ToLower(strings.TrimSpace(v))); m {
	case ScrimmagePayloadRoster, ScrimmagePayloadTrigger:
		return m, nil
	default:
		return "", fmt.Errorf("invalid scrimmage payload mode %q: valid values are %s, %s", v, ScrimmagePayloadRoster, ScrimmagePayloadTrigger)
	}
}

type DispatchConfig struct {
	EngineName       string
	TournamentSlots  int
	ScrimmagePayload ScrimmagePayloadMode
	Cooldown         time.Duration
}

// DispatchResult is returned for every accepted job.
type DispatchResult struct {
	DispatchID   string
	Kind         dispatch.Kind
	Participants []string
	Upstream     any
}

// DispatchService validates match, tournament and scrimmage requests and
// forwards them to the matchmaker.
type DispatchService struct {
	teamRepo        team.Repository
	matchRepo       match.Repository
	reservationRepo match.ReservationRepository
	dispatchRepo    dispatch.Repository
	permissions     PermissionReader
	matchmaker      Matchmaker
	objectStore     ObjectStore
	idGen           idgen.Generator
	metrics         DispatchMetrics
	cfg             DispatchConfig
	logger          *logging.Logger
	now             func() time.Time
}

func NewDispatchService(
	teamRepo team.Repository,
	matchRepo match.Repository,
	reservationRepo match.ReservationRepository,
	dispatchRepo dispatch.Repository,
	permissions PermissionReader,
	matchmaker Matchmaker,
	objectStore ObjectStore,
	idGen idgen.Generator,
	metrics DispatchMetrics,
	cfg DispatchConfig,
	logger *logging.Logger,
) *DispatchService {
	if logger == nil {
		logger = logging.Default()
	}
	if metrics == nil {
		metrics = noopDispatchMetrics{}
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Minute
	}
	if cfg.ScrimmagePayload == "" {
		cfg.ScrimmagePayload = ScrimmagePayloadRoster
	}

	return &DispatchService{
		teamRepo:        teamRepo,
		matchRepo:       matchRepo,
		reservationRepo: reservationRepo,
		dispatchRepo:    dispatchRepo,
		permissions:     permissions,
		matchmaker:      matchmaker,
		objectStore:     objectStore,
		idGen:           idGen,
		metrics:         metrics,
		cfg:             cfg,
		logger:          logger.Named("dispatch"),
		now:             time.Now,
	}
}

// RequestDirectMatch asks the matchmaker for a single match between two teams.
func (s *DispatchService) RequestDirectMatch(ctx context.Context, principal user.Principal, requesterTeam, opponentTeam string) (DispatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DispatchService.RequestDirectMatch",
		attribute.String("match.team_1", requesterTeam),
		attribute.String("match.team_2", opponentTeam),
	)
	defer span.End()

	result, err := s.requestDirectMatch(ctx, principal, requesterTeam, opponentTeam)
	if err != nil {
		recordSpanError(span, err)
		s.metrics.ObserveRejection(dispatch.KindMatch, rejectionReason(err))
	}
	return result, err
}

func (s *DispatchService) requestDirectMatch(ctx context.Context, principal user.Principal, requesterTeam, opponentTeam string) (DispatchResult, error) {
	requesterTeam = strings.TrimSpace(requesterTeam)
	opponentTeam = strings.TrimSpace(opponentTeam)
	if requesterTeam == "" || opponentTeam == "" {
		return DispatchResult{}, fmt.Errorf("%w: player and opponent are required", ErrInvalidInput)
	}
	if requesterTeam == opponentTeam {
		return DispatchResult{}, fmt.Errorf("%w: a team cannot play against itself", ErrInvalidInput)
	}

	if !principal.IsAdmin() {
		if err := requireFlag(ctx, s.permissions, permission.FlagScrimmageRequests); err != nil {
			return DispatchResult{}, err
		}
	}

	teams, err := s.lookupPair(ctx, requesterTeam, opponentTeam, func(requester team.Team) error {
		if !principal.IsAdmin() && !requester.HasMember(principal.Name) {
			return fmt.Errorf("%w: user=%s is not a member of team=%s", ErrForbidden, principal.Name, requesterTeam)
		}
		return nil
	})
	if err != nil {
		return DispatchResult{}, err
	}
	for _, item := range teams {
		if !item.HasActiveVersion() {
			return DispatchResult{}, fmt.Errorf("%w: team=%s", ErrNoBotUploaded, item.Name)
		}
	}

	now := s.now().UTC()
	pending, err := s.matchRepo.ListPendingBetween(ctx, requesterTeam, opponentTeam)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("list pending matches: %w", err)
	}
	for _, item := range pending {
		if item.BlocksRequest(now, s.cfg.Cooldown) {
			return DispatchResult{}, fmt.Errorf("%w: match=%s between %s and %s is still pending", ErrDuplicateRequest, item.ID, requesterTeam, opponentTeam)
		}
	}

	token, err := s.idGen.NewID()
	if err != nil {
		return DispatchResult{}, fmt.Errorf("generate reservation token: %w", err)
	}
	reserved, err := s.reservationRepo.Reserve(ctx, match.Reservation{
		Team1:     requesterTeam,
		Team2:     opponentTeam,
		Token:     token,
		ExpiresAt: now.Add(s.cfg.Cooldown),
	}, now)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("reserve match cooldown: %w", err)
	}
	if !reserved {
		return DispatchResult{}, fmt.Errorf("%w: a request between %s and %s was made within the last %s", ErrDuplicateRequest, requesterTeam, opponentTeam, s.cfg.Cooldown)
	}

	job := s.buildJob(teams[:])
	result, err := s.submit(ctx, dispatch.KindMatch, principal, &job, len(teams))
	if err != nil {
		if releaseErr := s.reservationRepo.Release(context.WithoutCancel(ctx), requesterTeam, opponentTeam, token); releaseErr != nil {
			s.logger.WarnContext(ctx, "release match reservation failed",
				"team_1", requesterTeam,
				"team_2", opponentTeam,
				"error", releaseErr,
			)
		}
		return DispatchResult{}, err
	}

	return result, nil
}

// StartBracketTournament enters every eligible team of a bracket into a tournament.
func (s *DispatchService) StartBracketTournament(ctx context.Context, principal user.Principal, bracketName string) (DispatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DispatchService.StartBracketTournament", attribute.String("team.bracket", bracketName))
	defer span.End()

	result, err := s.startBracketTournament(ctx, principal, bracketName)
	if err != nil {
		recordSpanError(span, err)
		s.metrics.ObserveRejection(dispatch.KindTournament, rejectionReason(err))
	}
	return result, err
}

func (s *DispatchService) startBracketTournament(ctx context.Context, principal user.Principal, bracketName string) (DispatchResult, error) {
	bracket, err := team.ParseBracket(bracketName)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	teams, err := s.teamRepo.ListEligible(ctx, team.EligibilityFilter{Bracket: bracket})
	if err != nil {
		return DispatchResult{}, fmt.Errorf("list eligible teams: %w", err)
	}
	if len(teams) == 0 {
		return DispatchResult{}, fmt.Errorf("%w: bracket=%s", ErrNoEligiblePlayers, bracket)
	}

	job := s.buildJob(teams)
	job.TournamentSlots = s.cfg.TournamentSlots
	return s.submit(ctx, dispatch.KindTournament, principal, &job, len(teams))
}

// StartRankedScrimmageRound starts a ranked round across all brackets.
func (s *DispatchService) StartRankedScrimmageRound(ctx context.Context, principal user.Principal) (DispatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DispatchService.StartRankedScrimmageRound",
		attribute.String("scrimmage.payload_mode", string(s.cfg.ScrimmagePayload)),
	)
	defer span.End()

	result, err := s.startRankedScrimmageRound(ctx, principal)
	if err != nil {
		recordSpanError(span, err)
		s.metrics.ObserveRejection(dispatch.KindScrimmage, rejectionReason(err))
	}
	return result, err
}

func (s *DispatchService) startRankedScrimmageRound(ctx context.Context, principal user.Principal) (DispatchResult, error) {
	if s.cfg.ScrimmagePayload == ScrimmagePayloadTrigger {
		return s.submit(ctx, dispatch.KindScrimmage, principal, nil, 0)
	}

	teams, err := s.teamRepo.ListEligible(ctx, team.EligibilityFilter{})
	if err != nil {
		return DispatchResult{}, fmt.Errorf("list eligible teams: %w", err)
	}
	if len(teams) == 0 {
		return DispatchResult{}, fmt.Errorf("%w: no team has an active submission", ErrNoEligiblePlayers)
	}

	job := s.buildJob(teams)
	return s.submit(ctx, dispatch.KindScrimmage, principal, &job, len(teams))
}

// lookupPair fetches both teams concurrently. Each read is independent; the
// values may change between them. checkFirst runs on the first team before
// the second one is inspected.
func (s *DispatchService) lookupPair(ctx context.Context, first, second string, checkFirst func(team.Team) error) ([2]team.Team, error) {
	names := [2]string{first, second}
	var (
		teams  [2]team.Team
		found  [2]bool
		errs   [2]error
		lookup conc.WaitGroup
	)
	for i := range names {
		lookup.Go(func() {
			teams[i], found[i], errs[i] = s.teamRepo.GetByName(ctx, names[i])
		})
	}
	lookup.Wait()

	for i := range names {
		if errs[i] != nil {
			return teams, fmt.Errorf("get team=%s: %w", names[i], errs[i])
		}
		if !found[i] {
			return teams, fmt.Errorf("%w: team=%s does not exist", ErrInvalidInput, names[i])
		}
		if i == 0 && checkFirst != nil {
			if err := checkFirst(teams[0]); err != nil {
				return teams, err
			}
		}
	}
	return teams, nil
}

func (s *DispatchService) buildJob(teams []team.Team) MatchmakerJob {
	job := MatchmakerJob{
		EngineName:  s.cfg.EngineName,
		Submissions: make([]JobSubmission, 0, len(teams)),
	}
	bucket := ""
	if s.objectStore != nil {
		bucket = s.objectStore.Bucket()
	}
	for _, item := range teams {
		job.Submissions = append(job.Submissions, JobSubmission{
			Username:  item.Name,
			Bucket:    bucket,
			ObjectKey: item.ActiveVersion,
		})
	}
	return job
}

// submit sends the job and records the dispatch lifecycle. The local store
// is not otherwise touched: the matchmaker writes Match records itself.
func (s *DispatchService) submit(ctx context.Context, kind dispatch.Kind, principal user.Principal, job *MatchmakerJob, participants int) (DispatchResult, error) {
	dispatchID, err := s.idGen.NewID()
	if err != nil {
		return DispatchResult{}, fmt.Errorf("generate dispatch id: %w", err)
	}

	var payload []byte
	if job != nil {
		payload, err = sonic.Marshal(job)
		if err != nil {
			return DispatchResult{}, fmt.Errorf("marshal %s job: %w", kind, err)
		}
	}

	event := dispatch.Event{
		DispatchID:   dispatchID,
		Kind:         kind,
		Path:         s.matchmaker.Path(kind),
		RequestedBy:  principal.Name,
		Participants: participants,
		Payload:      payload,
	}
	s.recordEvent(ctx, event, dispatch.StatusSent)

	started := s.now()
	resp, err := s.matchmaker.Submit(ctx, kind, job)
	elapsed := s.now().Sub(started)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			event.ResponseCode = upstream.StatusCode
		}
		event.ErrorMessage = err.Error()
		s.recordEvent(ctx, event, dispatch.StatusFailed)
		s.metrics.ObserveDispatch(kind, "failed", elapsed)

		s.logger.ErrorContext(ctx, "matchmaker dispatch failed",
			"dispatch_id", dispatchID,
			"kind", kind,
			"participants", participants,
			"error", err,
		)
		if !errors.Is(err, ErrUpstream) {
			err = &UpstreamError{Err: err}
		}
		return DispatchResult{}, err
	}

	event.ResponseCode = resp.StatusCode
	s.recordEvent(ctx, event, dispatch.StatusCompleted)
	s.metrics.ObserveDispatch(kind, "completed", elapsed)

	s.logger.InfoContext(ctx, "matchmaker dispatch accepted",
		"dispatch_id", dispatchID,
		"kind", kind,
		"participants", participants,
		"duration_ms", elapsed.Milliseconds(),
	)

	names := make([]string, 0, participants)
	if job != nil {
		for _, item := range job.Submissions {
			names = append(names, item.Username)
		}
	}

	return DispatchResult{
		DispatchID:   dispatchID,
		Kind:         kind,
		Participants: names,
		Upstream:     decodeUpstreamBody(resp.Body),
	}, nil
}

func (s *DispatchService) recordEvent(ctx context.Context, event dispatch.Event, status dispatch.Status) {
	if s.dispatchRepo == nil {
		return
	}
	event.Status = status
	event.TraceID, event.SpanID = traceMetaFromContext(ctx)
	event.OccurredAt = s.now().UTC()
	if err := s.dispatchRepo.UpsertEvent(context.WithoutCancel(ctx), event); err != nil {
		s.logger.WarnContext(ctx, "record dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", status,
			"error", err,
		)
	}
}

// decodeUpstreamBody returns parsed JSON when possible, the raw text otherwise.
func decodeUpstreamBody(body []byte) any {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil
	}
	var out any
	if err := sonic.Unmarshal(body, &out); err != nil {
		return trimmed
	}
	return out
}

func requireFlag(ctx context.Context, permissions PermissionReader, flag permission.Flag) error {
	if permissions == nil {
		return nil
	}
	flags, err := permissions.Flags(ctx)
	if err != nil {
		return fmt.Errorf("read permission flags: %w", err)
	}
	if !flags.Enabled(flag) {
		return fmt.Errorf("%w: %s is turned off", ErrActionDisabled, flag)
	}
	return nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrActionDisabled):
		return "action_disabled"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNoBotUploaded):
		return "no_bot_uploaded"
	case errors.Is(err, ErrNoEligiblePlayers):
		return "no_eligible_players"
	case errors.Is(err, ErrDuplicateRequest):
		return "duplicate_request"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	default:
		return "internal_error"
	}
}

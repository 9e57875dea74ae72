package usecase

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/permission"
	"github.com/riskibarqy/awap-platform/internal/domain/submission"
	"github.com/riskibarqy/awap-platform/internal/domain/team"
	"github.com/riskibarqy/awap-platform/internal/domain/user"
	idgen "github.com/riskibarqy/awap-platform/internal/platform/id"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
)

const defaultBotContentType = "text/x-python"

var unsafeFileNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// TeamResolver finds the team a principal plays for.
type TeamResolver interface {
	TeamOf(ctx context.Context, principal user.Principal) (team.Team, error)
}

type SubmissionConfig struct {
	// VerifyOwnership requires an activated key to name one of the team's own submissions.
	VerifyOwnership bool
}

type UploadTicket struct {
	ObjectKey   string
	UploadURL   string
	ContentType string
}

// SubmissionView is a submission plus a download URL and whether it is active.
type SubmissionView struct {
	Submission  submission.Submission
	DownloadURL string
	Active      bool
}

type SubmissionService struct {
	submissionRepo submission.Repository
	teamRepo       team.Repository
	teams          TeamResolver
	permissions    PermissionReader
	objectStore    ObjectStore
	idGen          idgen.Generator
	cfg            SubmissionConfig
	logger         *logging.Logger
	now            func() time.Time
}

func NewSubmissionService(
	submissionRepo submission.Repository,
	teamRepo team.Repository,
	teams TeamResolver,
	permissions PermissionReader,
	objectStore ObjectStore,
	idGen idgen.Generator,
	cfg SubmissionConfig,
	logger *logging.Logger,
) *SubmissionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SubmissionService{
		submissionRepo: submissionRepo,
		teamRepo:       teamRepo,
		teams:          teams,
		permissions:    permissions,
		objectStore:    objectStore,
		idGen:          idGen,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
	}
}

// RequestUpload reserves an object key under the caller's team prefix and
// returns a presigned upload URL for it.
func (s *SubmissionService) RequestUpload(ctx context.Context, principal user.Principal, fileName, contentType string) (UploadTicket, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.RequestUpload")
	defer span.End()

	fileName = sanitizeFileName(fileName)
	if fileName == "" {
		return UploadTicket{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = defaultBotContentType
	}
	if !principal.IsAdmin() {
		if err := requireFlag(ctx, s.permissions, permission.FlagCodeSubmissions); err != nil {
			return UploadTicket{}, err
		}
	}

	owner, err := s.teams.TeamOf(ctx, principal)
	if err != nil {
		return UploadTicket{}, err
	}

	suffix, err := s.idGen.NewID()
	if err != nil {
		return UploadTicket{}, fmt.Errorf("generate object key: %w", err)
	}
	objectKey := submission.KeyPrefix(owner.Name) + suffix + "-" + fileName

	url, err := s.objectStore.PresignUpload(ctx, objectKey, contentType)
	if err != nil {
		recordSpanError(span, err)
		return UploadTicket{}, fmt.Errorf("%w: presign upload: %v", ErrDependencyUnavailable, err)
	}

	return UploadTicket{ObjectKey: objectKey, UploadURL: url, ContentType: contentType}, nil
}

// RecordSubmission stores an uploaded bot and makes it the team's active version.
func (s *SubmissionService) RecordSubmission(ctx context.Context, principal user.Principal, objectKey, uploadedName string) (submission.Submission, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.RecordSubmission")
	defer span.End()

	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return submission.Submission{}, fmt.Errorf("%w: object key is required", ErrInvalidInput)
	}
	if !principal.IsAdmin() {
		if err := requireFlag(ctx, s.permissions, permission.FlagCodeSubmissions); err != nil {
			return submission.Submission{}, err
		}
	}

	owner, err := s.teams.TeamOf(ctx, principal)
	if err != nil {
		return submission.Submission{}, err
	}

	uploadedName = strings.TrimSpace(uploadedName)
	if uploadedName == "" {
		uploadedName = path.Base(objectKey)
	}
	item := submission.Submission{
		ObjectKey:    objectKey,
		Team:         owner.Name,
		UploadedName: uploadedName,
		CreatedAt:    s.now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return submission.Submission{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.submissionRepo.Create(ctx, item); err != nil {
		if errors.Is(err, submission.ErrAlreadyExists) {
			return submission.Submission{}, fmt.Errorf("%w: submission %s", ErrAlreadyExists, objectKey)
		}
		recordSpanError(span, err)
		return submission.Submission{}, fmt.Errorf("create submission: %w", err)
	}

	if err := s.teamRepo.SetActiveVersion(ctx, owner.Name, objectKey, item.CreatedAt); err != nil {
		recordSpanError(span, err)
		return submission.Submission{}, fmt.Errorf("activate submission: %w", err)
	}

	s.logger.InfoContext(ctx, "submission recorded", "team", owner.Name, "object_key", objectKey, "user", principal.Name)
	return item, nil
}

// ActivateSubmission points the team's active version at objectKey. Concurrent
// activations for the same team are last-write-wins. teamName may be empty to
// mean the caller's own team; only admins may name another team.
func (s *SubmissionService) ActivateSubmission(ctx context.Context, principal user.Principal, teamName, objectKey string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.ActivateSubmission")
	defer span.End()

	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return team.Team{}, fmt.Errorf("%w: object key is required", ErrInvalidInput)
	}

	target, err := s.targetTeam(ctx, principal, strings.TrimSpace(teamName))
	if err != nil {
		return team.Team{}, err
	}

	if s.cfg.VerifyOwnership {
		_, exists, err := s.submissionRepo.Get(ctx, target.Name, objectKey)
		if err != nil {
			return team.Team{}, fmt.Errorf("get submission: %w", err)
		}
		if !exists {
			return team.Team{}, fmt.Errorf("%w: submission %s does not belong to team=%s", ErrNotFound, objectKey, target.Name)
		}
	}

	if err := s.teamRepo.SetActiveVersion(ctx, target.Name, objectKey, s.now().UTC()); err != nil {
		recordSpanError(span, err)
		return team.Team{}, fmt.Errorf("set active version: %w", err)
	}

	s.logger.InfoContext(ctx, "submission activated",
		"team", target.Name,
		"object_key", objectKey,
		"previous", target.ActiveVersion,
		"user", principal.Name,
	)
	target.ActiveVersion = objectKey
	return target, nil
}

// ListSubmissions returns the caller's team history, newest first.
func (s *SubmissionService) ListSubmissions(ctx context.Context, principal user.Principal) ([]SubmissionView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.ListSubmissions")
	defer span.End()

	owner, err := s.teams.TeamOf(ctx, principal)
	if err != nil {
		return nil, err
	}

	items, err := s.submissionRepo.ListByTeam(ctx, owner.Name)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return s.views(ctx, items, map[string]string{owner.Name: owner.ActiveVersion})
}

// ListAllSubmissions returns every team's submissions for administrators.
func (s *SubmissionService) ListAllSubmissions(ctx context.Context) ([]SubmissionView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.ListAllSubmissions")
	defer span.End()

	items, err := s.submissionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	active := make(map[string]string)
	for _, item := range items {
		if _, seen := active[item.Team]; seen {
			continue
		}
		owner, exists, err := s.teamRepo.GetByName(ctx, item.Team)
		if err != nil {
			return nil, fmt.Errorf("get team: %w", err)
		}
		if exists {
			active[item.Team] = owner.ActiveVersion
		} else {
			active[item.Team] = ""
		}
	}
	return s.views(ctx, items, active)
}

func (s *SubmissionService) views(ctx context.Context, items []submission.Submission, activeByTeam map[string]string) ([]SubmissionView, error) {
	out := make([]SubmissionView, 0, len(items))
	for _, item := range items {
		url, err := s.objectStore.SubmissionURL(ctx, item.ObjectKey)
		if err != nil {
			return nil, fmt.Errorf("%w: submission url: %v", ErrDependencyUnavailable, err)
		}
		out = append(out, SubmissionView{
			Submission:  item,
			DownloadURL: url,
			Active:      activeByTeam[item.Team] == item.ObjectKey,
		})
	}
	return out, nil
}

func (s *SubmissionService) targetTeam(ctx context.Context, principal user.Principal, teamName string) (team.Team, error) {
	if teamName == "" {
		return s.teams.TeamOf(ctx, principal)
	}

	if !principal.IsAdmin() {
		own, err := s.teams.TeamOf(ctx, principal)
		if err != nil {
			return team.Team{}, err
		}
		if own.Name != teamName {
			return team.Team{}, fmt.Errorf("%w: user=%s cannot activate submissions of team=%s", ErrForbidden, principal.Name, teamName)
		}
		return own, nil
	}

	item, exists, err := s.teamRepo.GetByName(ctx, teamName)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamName)
	}
	return item, nil
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.TrimSpace(strings.ReplaceAll(name, "\\", "/")))
	if name == "." || name == "/" {
		return ""
	}
	return unsafeFileNameChars.ReplaceAllString(name, "_")
}

package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/permission"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
)

// PermissionService owns the singleton permission flags record.
type PermissionService struct {
	repo   permission.Repository
	logger *logging.Logger
	now    func() time.Time
}

func NewPermissionService(repo permission.Repository, logger *logging.Logger) *PermissionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PermissionService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Flags returns the current snapshot. A missing record reads as DefaultFlags.
func (s *PermissionService) Flags(ctx context.Context) (permission.Flags, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PermissionService.Flags")
	defer span.End()

	flags, exists, err := s.repo.Get(ctx)
	if err != nil {
		recordSpanError(span, err)
		return permission.Flags{}, fmt.Errorf("get permission flags: %w", err)
	}
	if !exists {
		return permission.DefaultFlags(), nil
	}
	return flags, nil
}

// SetPermission sets exactly one flag.
func (s *PermissionService) SetPermission(ctx context.Context, flagName string, enabled bool) (permission.Flags, error) {
	flag, err := permission.ParseFlag(flagName)
	if err != nil {
		return permission.Flags{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.apply(ctx, map[permission.Flag]bool{flag: enabled})
}

// SetPermissions applies a partial update of several flags in a single write.
func (s *PermissionService) SetPermissions(ctx context.Context, updates map[string]bool) (permission.Flags, error) {
	if len(updates) == 0 {
		return permission.Flags{}, fmt.Errorf("%w: at least one permission flag is required", ErrInvalidInput)
	}

	parsed := make(map[permission.Flag]bool, len(updates))
	for name, enabled := range updates {
		flag, err := permission.ParseFlag(name)
		if err != nil {
			return permission.Flags{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		parsed[flag] = enabled
	}
	return s.apply(ctx, parsed)
}

func (s *PermissionService) apply(ctx context.Context, updates map[permission.Flag]bool) (permission.Flags, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PermissionService.apply")
	defer span.End()

	if err := s.repo.Update(ctx, updates, s.now().UTC()); err != nil {
		recordSpanError(span, err)
		s.logger.ErrorContext(ctx, "update permission flags failed", "flags", flagNames(updates), "error", err)
		return permission.Flags{}, fmt.Errorf("%w: %v", ErrConfigUpdateFailed, err)
	}

	s.logger.InfoContext(ctx, "permission flags updated", "flags", flagNames(updates))

	flags, err := s.Flags(ctx)
	if err != nil {
		// The write was acknowledged; report what was requested on top of defaults.
		return permission.DefaultFlags().With(updates), nil
	}
	return flags, nil
}

func flagNames(updates map[permission.Flag]bool) string {
	parts := make([]string, 0, len(updates))
	for _, flag := range permission.AllFlags() {
		if enabled, ok := updates[flag]; ok {
			parts = append(parts, fmt.Sprintf("%s=%t", flag, enabled))
		}
	}
	return strings.Join(parts, ",")
}

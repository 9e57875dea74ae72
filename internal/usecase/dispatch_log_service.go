package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/awap-platform/internal/domain/dispatch"
)

const (
	defaultDispatchLogLimit = 50
	maxDispatchLogLimit     = 500
)

// DispatchLogService reads the outbound matchmaker call log.
type DispatchLogService struct {
	repo dispatch.Repository
}

func NewDispatchLogService(repo dispatch.Repository) *DispatchLogService {
	return &DispatchLogService{repo: repo}
}

func (s *DispatchLogService) Recent(ctx context.Context, limit int) ([]dispatch.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DispatchLogService.Recent")
	defer span.End()

	if limit <= 0 {
		limit = defaultDispatchLogLimit
	}
	if limit > maxDispatchLogLimit {
		return nil, fmt.Errorf("%w: limit must be at most %d", ErrInvalidInput, maxDispatchLogLimit)
	}

	items, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("list dispatch events: %w", err)
	}
	return items, nil
}

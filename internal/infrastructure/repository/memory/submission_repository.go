package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/awap-platform/internal/domain/submission"
)

type SubmissionRepository struct {
	mu    sync.RWMutex
	items map[string]submission.Submission
}

func NewSubmissionRepository(items []submission.Submission) *SubmissionRepository {
	byKey := make(map[string]submission.Submission, len(items))
	for _, item := range items {
		byKey[item.ObjectKey] = item
	}

	return &SubmissionRepository{items: byKey}
}

func (r *SubmissionRepository) Create(_ context.Context, item submission.Submission) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid submission: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ObjectKey]; exists {
		return fmt.Errorf("%w: %s", submission.ErrAlreadyExists, item.ObjectKey)
	}
	r.items[item.ObjectKey] = item
	return nil
}

func (r *SubmissionRepository) Get(_ context.Context, team, objectKey string) (submission.Submission, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[objectKey]
	if !ok || item.Team != team {
		return submission.Submission{}, false, nil
	}
	return item, true, nil
}

func (r *SubmissionRepository) ListByTeam(_ context.Context, team string) ([]submission.Submission, error) {
	return r.list(func(item submission.Submission) bool { return item.Team == team }), nil
}

func (r *SubmissionRepository) ListAll(_ context.Context) ([]submission.Submission, error) {
	return r.list(func(submission.Submission) bool { return true }), nil
}

func (r *SubmissionRepository) list(keep func(submission.Submission) bool) []submission.Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]submission.Submission, 0, len(r.items))
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ObjectKey < out[j].ObjectKey
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

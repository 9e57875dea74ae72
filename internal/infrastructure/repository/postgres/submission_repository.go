package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/awap-platform/internal/domain/submission"
	qb "github.com/riskibarqy/awap-platform/internal/platform/querybuilder"
)

type submissionTableModel struct {
	ObjectKey    string    `db:"object_key"`
	TeamName     string    `db:"team_name"`
	UploadedName string    `db:"uploaded_name"`
	CreatedAt    time.Time `db:"created_at"`
}

var submissionColumns = qb.Columns(submissionTableModel{})

type SubmissionRepository struct {
	db *sqlx.DB
}

func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, item submission.Submission) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid submission: %w", err)
	}

	query, args, err := qb.InsertModel("submissions", submissionTableModel{
		ObjectKey:    item.ObjectKey,
		TeamName:     item.Team,
		UploadedName: item.UploadedName,
		CreatedAt:    utcOrNow(item.CreatedAt),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert submission query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", submission.ErrAlreadyExists, item.ObjectKey)
		}
		return fmt.Errorf("insert submission key=%s: %w", item.ObjectKey, err)
	}
	return nil
}

func (r *SubmissionRepository) Get(ctx context.Context, teamName, objectKey string) (submission.Submission, bool, error) {
	query, args, err := qb.Select(submissionColumns...).From("submissions").
		Where(
			qb.Eq("team_name", teamName),
			qb.Eq("object_key", objectKey),
		).
		ToSQL()
	if err != nil {
		return submission.Submission{}, false, fmt.Errorf("build select submission query: %w", err)
	}

	var row submissionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return submission.Submission{}, false, nil
		}
		return submission.Submission{}, false, fmt.Errorf("get submission key=%s: %w", objectKey, err)
	}
	return mapSubmissionRow(row), true, nil
}

func (r *SubmissionRepository) ListByTeam(ctx context.Context, teamName string) ([]submission.Submission, error) {
	return r.list(ctx, qb.Eq("team_name", teamName))
}

func (r *SubmissionRepository) ListAll(ctx context.Context) ([]submission.Submission, error) {
	return r.list(ctx)
}

func (r *SubmissionRepository) list(ctx context.Context, conditions ...qb.Condition) ([]submission.Submission, error) {
	query, args, err := qb.Select(submissionColumns...).From("submissions").
		Where(conditions...).
		OrderBy("created_at DESC", "object_key DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list submissions query: %w", err)
	}

	var rows []submissionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	out := make([]submission.Submission, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapSubmissionRow(row))
	}
	return out, nil
}

func mapSubmissionRow(row submissionTableModel) submission.Submission {
	return submission.Submission{
		ObjectKey:    row.ObjectKey,
		Team:         row.TeamName,
		UploadedName: row.UploadedName,
		CreatedAt:    row.CreatedAt,
	}
}

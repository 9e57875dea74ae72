package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/awap-platform/internal/domain/dispatch"
	qb "github.com/riskibarqy/awap-platform/internal/platform/querybuilder"
)

type MatchDispatchRepository struct {
	db *sqlx.DB
}

func NewMatchDispatchRepository(db *sqlx.DB) *MatchDispatchRepository {
	return &MatchDispatchRepository{db: db}
}

func (r *MatchDispatchRepository) UpsertEvent(ctx context.Context, event dispatch.Event) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}

	kind := strings.TrimSpace(string(event.Kind))
	if kind == "" {
		kind = "unknown"
	}
	path := strings.TrimSpace(event.Path)
	if path == "" {
		path = "/unknown"
	}
	occurredAt := utcOrNow(event.OccurredAt)

	model := matchDispatchInsertModel{
		DispatchID:   dispatchID,
		Kind:         kind,
		Path:         path,
		RequestedBy:  strings.TrimSpace(event.RequestedBy),
		Participants: event.Participants,
		Payload:      payloadJSON(event.Payload),
		Status:       string(event.Status),
		LastError:    optionalString(event.ErrorMessage),
	}
	if event.ResponseCode > 0 {
		code := event.ResponseCode
		model.ResponseCode = &code
	}

	switch event.Status {
	case dispatch.StatusSent:
		model.SentAt = &occurredAt
		model.SentTraceID = optionalString(event.TraceID)
		model.SentSpanID = optionalString(event.SpanID)
		model.LastError = nil
	case dispatch.StatusCompleted:
		model.CompletedAt = &occurredAt
		model.CompletedTraceID = optionalString(event.TraceID)
		model.CompletedSpanID = optionalString(event.SpanID)
		model.LastError = nil
	case dispatch.StatusFailed:
		model.FailedAt = &occurredAt
		model.FailedTraceID = optionalString(event.TraceID)
		model.FailedSpanID = optionalString(event.SpanID)
	}

	query, args, err := qb.InsertModel("match_dispatches", model, `ON CONFLICT (dispatch_id)
DO UPDATE SET
    kind = EXCLUDED.kind,
    path = EXCLUDED.path,
    requested_by = CASE
        WHEN EXCLUDED.requested_by = '' THEN match_dispatches.requested_by
        ELSE EXCLUDED.requested_by
    END,
    participants = GREATEST(match_dispatches.participants, EXCLUDED.participants),
    payload = CASE
        WHEN EXCLUDED.payload = '{}' THEN match_dispatches.payload
        ELSE EXCLUDED.payload
    END,
    status = EXCLUDED.status,
    response_code = COALESCE(EXCLUDED.response_code, match_dispatches.response_code),
    sent_at = CASE
        WHEN EXCLUDED.status = 'sent' THEN EXCLUDED.sent_at
        ELSE COALESCE(match_dispatches.sent_at, EXCLUDED.sent_at)
    END,
    completed_at = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_at
        ELSE match_dispatches.completed_at
    END,
    failed_at = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_at
        WHEN EXCLUDED.status = 'completed' THEN NULL
        ELSE match_dispatches.failed_at
    END,
    last_error = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.last_error
        ELSE NULL
    END,
    sent_trace_id = CASE
        WHEN EXCLUDED.status = 'sent' THEN EXCLUDED.sent_trace_id
        ELSE match_dispatches.sent_trace_id
    END,
    sent_span_id = CASE
        WHEN EXCLUDED.status = 'sent' THEN EXCLUDED.sent_span_id
        ELSE match_dispatches.sent_span_id
    END,
    completed_trace_id = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_trace_id
        ELSE match_dispatches.completed_trace_id
    END,
    completed_span_id = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_span_id
        ELSE match_dispatches.completed_span_id
    END,
    failed_trace_id = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_trace_id
        ELSE match_dispatches.failed_trace_id
    END,
    failed_span_id = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_span_id
        ELSE match_dispatches.failed_span_id
    END,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert match dispatch query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match dispatch dispatch_id=%s status=%s: %w", dispatchID, event.Status, err)
	}

	return nil
}

const listRecentDispatchesQuery = `
SELECT
    dispatch_id,
    kind,
    path,
    requested_by,
    participants,
    payload::text AS payload,
    status,
    response_code,
    COALESCE(completed_at, failed_at, sent_at, created_at) AS occurred_at,
    last_error,
    COALESCE(completed_trace_id, failed_trace_id, sent_trace_id) AS trace_id,
    COALESCE(completed_span_id, failed_span_id, sent_span_id) AS span_id
FROM match_dispatches
ORDER BY occurred_at DESC, dispatch_id DESC
LIMIT $1`

func (r *MatchDispatchRepository) ListRecent(ctx context.Context, limit int) ([]dispatch.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []matchDispatchTableModel
	if err := r.db.SelectContext(ctx, &rows, listRecentDispatchesQuery, limit); err != nil {
		return nil, fmt.Errorf("list recent match dispatches: %w", err)
	}

	out := make([]dispatch.Event, 0, len(rows))
	for _, row := range rows {
		event := dispatch.Event{
			DispatchID:   row.DispatchID,
			Kind:         dispatch.Kind(row.Kind),
			Path:         row.Path,
			RequestedBy:  row.RequestedBy,
			Participants: row.Participants,
			Status:       dispatch.Status(row.Status),
			Payload:      []byte(row.Payload),
			ErrorMessage: nullStringValue(row.LastError),
			OccurredAt:   row.OccurredAt,
			TraceID:      nullStringValue(row.TraceID),
			SpanID:       nullStringValue(row.SpanID),
		}
		if row.ResponseCode.Valid {
			event.ResponseCode = int(row.ResponseCode.Int64)
		}
		out = append(out, event)
	}
	return out, nil
}

func payloadJSON(payload []byte) string {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return "{}"
	}
	return trimmed
}

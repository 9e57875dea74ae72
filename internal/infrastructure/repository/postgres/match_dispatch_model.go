package postgres

import (
	"database/sql"
	"time"
)

type matchDispatchInsertModel struct {
	DispatchID       string     `db:"dispatch_id"`
	Kind             string     `db:"kind"`
	Path             string     `db:"path"`
	RequestedBy      string     `db:"requested_by"`
	Participants     int        `db:"participants"`
	Payload          string     `db:"payload"`
	Status           string     `db:"status"`
	ResponseCode     *int       `db:"response_code"`
	SentAt           *time.Time `db:"sent_at"`
	CompletedAt      *time.Time `db:"completed_at"`
	FailedAt         *time.Time `db:"failed_at"`
	LastError        *string    `db:"last_error"`
	SentTraceID      *string    `db:"sent_trace_id"`
	SentSpanID       *string    `db:"sent_span_id"`
	CompletedTraceID *string    `db:"completed_trace_id"`
	CompletedSpanID  *string    `db:"completed_span_id"`
	FailedTraceID    *string    `db:"failed_trace_id"`
	FailedSpanID     *string    `db:"failed_span_id"`
}

type matchDispatchTableModel struct {
	DispatchID   string         `db:"dispatch_id"`
	Kind         string         `db:"kind"`
	Path         string         `db:"path"`
	RequestedBy  string         `db:"requested_by"`
	Participants int            `db:"participants"`
	Payload      string         `db:"payload"`
	Status       string         `db:"status"`
	ResponseCode sql.NullInt64  `db:"response_code"`
	OccurredAt   time.Time      `db:"occurred_at"`
	LastError    sql.NullString `db:"last_error"`
	TraceID      sql.NullString `db:"trace_id"`
	SpanID       sql.NullString `db:"span_id"`
}

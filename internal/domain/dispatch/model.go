package dispatch

import "time"

// Kind is the matchmaker endpoint a job was sent to.
type Kind string

const (
	KindMatch      Kind = "match"
	KindTournament Kind = "tournament"
	KindScrimmage  Kind = "scrimmage"
)

type Status string

const (
	StatusSent      Status = "sent"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Event is one state of an outbound matchmaker call. Events sharing a
// DispatchID describe the same call.
type Event struct {
	DispatchID   string
	Kind         Kind
	Path         string
	RequestedBy  string
	Participants int
	Status       Status
	Payload      []byte
	ResponseCode int
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

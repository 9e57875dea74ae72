package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/dispatch"
	"github.com/riskibarqy/awap-platform/internal/domain/permission"
)

// JobSubmission is one participant entry in a matchmaker job.
type JobSubmission struct {
	Username  string `json:"username"`
	Bucket    string `json:"s3_bucket_name"`
	ObjectKey string `json:"s3_object_name"`
}

// MatchmakerJob is the body accepted by every matchmaker endpoint.
type MatchmakerJob struct {
	EngineName      string          `json:"game_engine_name,omitempty"`
	TournamentSlots int             `json:"num_tournament_spots,omitempty"`
	Submissions     []JobSubmission `json:"user_submissions,omitempty"`
}

type MatchmakerResponse struct {
	StatusCode int
	Body       []byte
}

// Matchmaker submits jobs to the external matchmaking service. A nil job is
// sent as an empty JSON object. Failures are returned as *UpstreamError.
type Matchmaker interface {
	Submit(ctx context.Context, kind dispatch.Kind, job *MatchmakerJob) (MatchmakerResponse, error)
	Path(kind dispatch.Kind) string
}

// ObjectStore issues URLs for bot files and replays. Callers never touch bytes.
type ObjectStore interface {
	Bucket() string
	PresignUpload(ctx context.Context, objectKey, contentType string) (string, error)
	SubmissionURL(ctx context.Context, objectKey string) (string, error)
	ReplayURL(ctx context.Context, replayKey string) (string, error)
}

// PermissionReader is the read side of the permission flags record.
type PermissionReader interface {
	Flags(ctx context.Context) (permission.Flags, error)
}

// DispatchMetrics receives one observation per dispatch attempt.
type DispatchMetrics interface {
	ObserveDispatch(kind dispatch.Kind, outcome string, duration time.Duration)
	ObserveRejection(kind dispatch.Kind, reason string)
}

type noopDispatchMetrics struct{}

func (noopDispatchMetrics) ObserveDispatch(dispatch.Kind, string, time.Duration) {}
func (noopDispatchMetrics) ObserveRejection(dispatch.Kind, string)               {}

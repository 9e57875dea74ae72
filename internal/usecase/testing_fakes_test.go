package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/dispatch"
	"github.com/riskibarqy/awap-platform/internal/domain/permission"
)

type counterIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (g *counterIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	return fmt.Sprintf("%s%03d", g.prefix, g.next), nil
}

type matchmakerCall struct {
	Kind dispatch.Kind
	Job  *MatchmakerJob
}

type fakeMatchmaker struct {
	mu       sync.Mutex
	calls    []matchmakerCall
	response MatchmakerResponse
	err      error
}

func newFakeMatchmaker() *fakeMatchmaker {
	return &fakeMatchmaker{response: MatchmakerResponse{StatusCode: 200, Body: []byte(`{"job_id":"job-1"}`)}}
}

func (m *fakeMatchmaker) Submit(_ context.Context, kind dispatch.Kind, job *MatchmakerJob) (MatchmakerResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, matchmakerCall{Kind: kind, Job: job})
	if m.err != nil {
		return MatchmakerResponse{}, m.err
	}
	return m.response, nil
}

func (m *fakeMatchmaker) Path(kind dispatch.Kind) string {
	return "/" + string(kind) + "/"
}

func (m *fakeMatchmaker) Calls() []matchmakerCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]matchmakerCall(nil), m.calls...)
}

type fakeObjectStore struct {
	bucket     string
	presignErr error
}

func (s fakeObjectStore) Bucket() string { return s.bucket }

func (s fakeObjectStore) PresignUpload(_ context.Context, objectKey, contentType string) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return "https://upload.test/" + objectKey + "?content-type=" + contentType, nil
}

func (s fakeObjectStore) SubmissionURL(_ context.Context, objectKey string) (string, error) {
	return "https://bots.test/" + objectKey, nil
}

func (s fakeObjectStore) ReplayURL(_ context.Context, replayKey string) (string, error) {
	return "https://replays.test/" + replayKey, nil
}

type staticPermissions struct {
	flags permission.Flags
}

func (p staticPermissions) Flags(context.Context) (permission.Flags, error) {
	return p.flags, nil
}

type recordingMetrics struct {
	mu         sync.Mutex
	dispatches []string
	rejections []string
}

func (m *recordingMetrics) ObserveDispatch(kind dispatch.Kind, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatches = append(m.dispatches, string(kind)+":"+outcome)
}

func (m *recordingMetrics) ObserveRejection(kind dispatch.Kind, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejections = append(m.rejections, string(kind)+":"+reason)
}

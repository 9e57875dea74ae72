package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/awap-platform/internal/domain/dispatch"
	"github.com/riskibarqy/awap-platform/internal/domain/team"
	"github.com/riskibarqy/awap-platform/internal/domain/user"
	"github.com/riskibarqy/awap-platform/internal/infrastructure/objectstore"
	"github.com/riskibarqy/awap-platform/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/awap-platform/internal/platform/id"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
	"github.com/riskibarqy/awap-platform/internal/usecase"
)

type stubVerifier map[string]user.Principal

func (v stubVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	p, ok := v[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return p, nil
}

type stubMatchmaker struct {
	mu    sync.Mutex
	calls []dispatch.Kind
	err   error
}

func (m *stubMatchmaker) Submit(_ context.Context, kind dispatch.Kind, _ *usecase.MatchmakerJob) (usecase.MatchmakerResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, kind)
	if m.err != nil {
		return usecase.MatchmakerResponse{}, m.err
	}
	return usecase.MatchmakerResponse{StatusCode: http.StatusOK, Body: []byte(`{"job_id":"job-1"}`)}, nil
}

func (m *stubMatchmaker) Path(kind dispatch.Kind) string {
	return "/" + string(kind) + "/"
}

func (m *stubMatchmaker) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

var testTokens = stubVerifier{
	"ana-token":  {Name: "ana", Role: user.RoleUser},
	"gil-token":  {Name: "gil", Role: user.RoleUser},
	"root-token": {Name: "root", Role: user.RoleAdmin},
}

func newTestRouter(t *testing.T, teams []team.Team, matchmaker *stubMatchmaker) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	users := memory.NewUserRepository([]user.User{
		{Username: "ana", Role: user.RoleUser, Team: "alpha"},
		{Username: "ben", Role: user.RoleUser, Team: "beta"},
		{Username: "gil", Role: user.RoleUser, Team: "gamma"},
		{Username: "root", Role: user.RoleAdmin},
	})
	teamRepo := memory.NewTeamRepository(teams)
	matchRepo := memory.NewMatchRepository(memory.SeedMatches())
	store := objectstore.NewStaticStore(objectstore.StaticConfig{UploadBucket: "awap-bots"})

	permissionService := usecase.NewPermissionService(memory.NewPermissionRepository(), logger)
	teamService := usecase.NewTeamService(teamRepo, users, permissionService, logger)
	submissionService := usecase.NewSubmissionService(
		memory.NewSubmissionRepository(nil),
		teamRepo,
		teamService,
		permissionService,
		store,
		idgen.NewUUIDGenerator(),
		usecase.SubmissionConfig{VerifyOwnership: true},
		logger,
	)
	dispatchRepo := memory.NewDispatchRepository()
	dispatchService := usecase.NewDispatchService(
		teamRepo,
		matchRepo,
		memory.NewReservationRepository(),
		dispatchRepo,
		permissionService,
		matchmaker,
		store,
		idgen.NewUUIDGenerator(),
		nil,
		usecase.DispatchConfig{EngineName: "awap-engine", TournamentSlots: 8, Cooldown: 30 * time.Minute},
		logger,
	)

	handler := NewHandler(
		nil,
		teamService,
		submissionService,
		dispatchService,
		permissionService,
		usecase.NewMatchHistoryService(matchRepo, teamService, store, logger),
		usecase.NewLeaderboardService(memory.NewRatingRepository(memory.SeedRatings()), logger),
		usecase.NewDispatchLogService(dispatchRepo),
		logger,
	)
	return NewRouter(handler, testTokens, logger, false, nil, nil)
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("unmarshal response body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func errorReason(t *testing.T, body map[string]any) string {
	t.Helper()

	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in %v", body)
	}
	items, _ := errorObj["errors"].([]any)
	if len(items) == 0 {
		t.Fatalf("expected error items in %v", errorObj)
	}
	first, _ := items[0].(map[string]any)
	reason, _ := first["reason"].(string)
	return reason
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, memory.SeedTeams(), &stubMatchmaker{})

	rec, body := doRequest(t, router, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got, _ := body["message"].(string); got != "ok" {
		t.Fatalf("expected message ok, got %v", body["message"])
	}
}

func TestRouter_RequestMatch_SecondRequestWithinCooldownIsDuplicate(t *testing.T) {
	matchmaker := &stubMatchmaker{}
	router := newTestRouter(t, memory.SeedTeams(), matchmaker)

	rec, body := doRequest(t, router, http.MethodPost, "/v1/matches/requests", "ana-token", `{"opp":"beta"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got, _ := body["message"].(string); got != "match requested" {
		t.Fatalf("unexpected message %v", body["message"])
	}
	data, _ := body["data"].(map[string]any)
	if got, _ := data["kind"].(string); got != string(dispatch.KindMatch) {
		t.Fatalf("expected kind match, got %v", data["kind"])
	}

	rec, body = doRequest(t, router, http.MethodPost, "/v1/matches/requests", "ana-token", `{"player":"alpha","opp":"beta"}`)
	if rec.Code != http.StatusPreconditionFailed {
		t.Fatalf("expected status 412, got %d body=%s", rec.Code, rec.Body.String())
	}
	if reason := errorReason(t, body); reason != "duplicateRequest" {
		t.Fatalf("expected duplicateRequest, got %q", reason)
	}
	if got := matchmaker.callCount(); got != 1 {
		t.Fatalf("expected one matchmaker call, got %d", got)
	}
}

func TestRouter_RequestMatch_NoBotUploaded(t *testing.T) {
	matchmaker := &stubMatchmaker{}
	router := newTestRouter(t, memory.SeedTeams(), matchmaker)

	rec, body := doRequest(t, router, http.MethodPost, "/v1/matches/requests", "gil-token", `{"opp":"delta"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if reason := errorReason(t, body); reason != "noBotUploaded" {
		t.Fatalf("expected noBotUploaded, got %q", reason)
	}
	if got := matchmaker.callCount(); got != 0 {
		t.Fatalf("expected no matchmaker call, got %d", got)
	}
}

func TestRouter_RequestMatch_UpstreamFailureHidesDetails(t *testing.T) {
	matchmaker := &stubMatchmaker{err: &usecase.UpstreamError{StatusCode: http.StatusBadGateway, Body: []byte(`{"detail":"queue full"}`)}}
	router := newTestRouter(t, memory.SeedTeams(), matchmaker)

	rec, body := doRequest(t, router, http.MethodPost, "/v1/matches/requests", "ana-token", `{"opp":"beta"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if got, _ := body["message"].(string); got != retryLaterMessage {
		t.Fatalf("expected generic message, got %v", body["message"])
	}
	data, _ := body["data"].(map[string]any)
	if got, _ := data["upstream_status"].(float64); got != http.StatusBadGateway {
		t.Fatalf("expected upstream_status 502, got %v", data["upstream_status"])
	}

	// The cooldown token is released, so a retry reaches the matchmaker again.
	matchmaker.mu.Lock()
	matchmaker.err = nil
	matchmaker.mu.Unlock()
	rec, _ = doRequest(t, router, http.MethodPost, "/v1/matches/requests", "ana-token", `{"opp":"beta"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected retry to succeed, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRouter_RequestMatch_RejectsUnknownFields(t *testing.T) {
	router := newTestRouter(t, memory.SeedTeams(), &stubMatchmaker{})

	rec, body := doRequest(t, router, http.MethodPost, "/v1/matches/requests", "ana-token", `{"opp":"beta","ranked":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if reason := errorReason(t, body); reason != "invalidInput" {
		t.Fatalf("expected invalidInput, got %q", reason)
	}
}

func TestRouter_MissingTokenIsUnauthorized(t *testing.T) {
	router := newTestRouter(t, memory.SeedTeams(), &stubMatchmaker{})

	rec, _ := doRequest(t, router, http.MethodGet, "/v1/submissions", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRouter_AdminRoutesRejectPlayers(t *testing.T) {
	matchmaker := &stubMatchmaker{}
	router := newTestRouter(t, memory.SeedTeams(), matchmaker)

	rec, body := doRequest(t, router, http.MethodPost, "/v1/admin/tournaments", "ana-token", `{"bracket":"beginner"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if reason := errorReason(t, body); reason != "forbidden" {
		t.Fatalf("expected forbidden, got %q", reason)
	}
	if got := matchmaker.callCount(); got != 0 {
		t.Fatalf("expected no matchmaker call, got %d", got)
	}
}

func TestRouter_DisabledScrimmageRequestsBlockPlayers(t *testing.T) {
	matchmaker := &stubMatchmaker{}
	router := newTestRouter(t, memory.SeedTeams(), matchmaker)

	rec, body := doRequest(t, router, http.MethodPost, "/v1/admin/permissions", "root-token", `{"scrimmage_requests":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	data, _ := body["data"].(map[string]any)
	if enabled, _ := data["scrimmage_requests"].(bool); enabled {
		t.Fatalf("expected scrimmage_requests=false, got %v", data)
	}
	if enabled, _ := data["code_submissions"].(bool); !enabled {
		t.Fatalf("expected untouched code_submissions=true, got %v", data)
	}

	rec, body = doRequest(t, router, http.MethodPost, "/v1/matches/requests", "ana-token", `{"opp":"beta"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if reason := errorReason(t, body); reason != "actionDisabled" {
		t.Fatalf("expected actionDisabled, got %q", reason)
	}
	if got := matchmaker.callCount(); got != 0 {
		t.Fatalf("expected no matchmaker call, got %d", got)
	}
}

func TestRouter_SetPermissionsRejectsUnknownFlag(t *testing.T) {
	router := newTestRouter(t, memory.SeedTeams(), &stubMatchmaker{})

	rec, _ := doRequest(t, router, http.MethodPost, "/v1/admin/permissions", "root-token", `{"free_lunch":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRouter_StartTournament_NoEligiblePlayers(t *testing.T) {
	matchmaker := &stubMatchmaker{}
	teams := []team.Team{{Name: "delta", Bracket: team.BracketAdvanced, Members: []string{"dee"}}}
	router := newTestRouter(t, teams, matchmaker)

	rec, body := doRequest(t, router, http.MethodPost, "/v1/admin/tournaments", "root-token", `{"bracket":"advanced"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if reason := errorReason(t, body); reason != "noEligiblePlayers" {
		t.Fatalf("expected noEligiblePlayers, got %q", reason)
	}
	if got := matchmaker.callCount(); got != 0 {
		t.Fatalf("expected no matchmaker call, got %d", got)
	}
}

func TestRouter_StartTournament_RecordsDispatch(t *testing.T) {
	router := newTestRouter(t, memory.SeedTeams(), &stubMatchmaker{})

	rec, _ := doRequest(t, router, http.MethodPost, "/v1/admin/tournaments", "root-token", `{"bracket":"beginner"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec, body := doRequest(t, router, http.MethodGet, "/v1/admin/dispatches?limit=10", "root-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	items, _ := body["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one dispatch event, got %d", len(items))
	}
	first, _ := items[0].(map[string]any)
	if got, _ := first["status"].(string); got != string(dispatch.StatusCompleted) {
		t.Fatalf("expected completed dispatch, got %v", first["status"])
	}
}

func TestRouter_Me_IncludesTeam(t *testing.T) {
	router := newTestRouter(t, memory.SeedTeams(), &stubMatchmaker{})

	rec, body := doRequest(t, router, http.MethodGet, "/v1/me", "ana-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ := body["data"].(map[string]any)
	teamObj, _ := data["team"].(map[string]any)
	if got, _ := teamObj["name"].(string); got != "alpha" {
		t.Fatalf("expected team alpha, got %v", data["team"])
	}
}

func TestRouter_LeaderboardIsPublic(t *testing.T) {
	router := newTestRouter(t, memory.SeedTeams(), &stubMatchmaker{})

	rec, body := doRequest(t, router, http.MethodGet, "/v1/leaderboard?per_page=2", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	data, _ := body["data"].(map[string]any)
	items, _ := data["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(items))
	}
	first, _ := items[0].(map[string]any)
	if got, _ := first["team_name"].(string); got != "alpha" {
		t.Fatalf("expected alpha to lead, got %v", first["team_name"])
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/leaderboard?per_page=abc", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad per_page, got %d", rec.Code)
	}
}

func TestRouter_AuthRoutesAbsentWithoutLocalAccounts(t *testing.T) {
	router := newTestRouter(t, memory.SeedTeams(), &stubMatchmaker{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewBufferString(`{}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

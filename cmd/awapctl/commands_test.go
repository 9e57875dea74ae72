package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   string
}

func newFakeAPI(t *testing.T, status int) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
			body:   string(raw),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"apiVersion":"2.0","message":"ok"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStartTournamentPostsBracket(t *testing.T) {
	srv, seen := newFakeAPI(t, http.StatusOK)

	out, err := execute(t, "--host", srv.URL, "--token", "root-token", "start-tournament", "--bracket", "Advanced")
	require.NoError(t, err)
	require.Contains(t, out, `"message": "ok"`)

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	require.Equal(t, http.MethodPost, got.method)
	require.Equal(t, "/v1/admin/tournaments", got.path)
	require.Equal(t, "Bearer root-token", got.auth)
	require.JSONEq(t, `{"bracket":"advanced"}`, got.body)
}

func TestStartTournamentRejectsUnknownBracket(t *testing.T) {
	srv, seen := newFakeAPI(t, http.StatusOK)

	_, err := execute(t, "--host", srv.URL, "start-tournament", "--bracket", "expert")
	require.Error(t, err)
	require.Empty(t, *seen)
}

func TestPermissionsSetSendsSingleFlag(t *testing.T) {
	srv, seen := newFakeAPI(t, http.StatusOK)

	_, err := execute(t, "--host", srv.URL+"/", "permissions", "set", "scrimmage_requests", "false")
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	require.Equal(t, "/v1/admin/permissions", (*seen)[0].path)
	require.JSONEq(t, `{"scrimmage_requests":false}`, (*seen)[0].body)
}

func TestPermissionsSetRejectsNonBool(t *testing.T) {
	srv, seen := newFakeAPI(t, http.StatusOK)

	_, err := execute(t, "--host", srv.URL, "permissions", "set", "scrimmage_requests", "maybe")
	require.Error(t, err)
	require.Empty(t, *seen)
}

func TestNon2xxIsReturnedAsError(t *testing.T) {
	srv, seen := newFakeAPI(t, http.StatusPreconditionFailed)

	out, err := execute(t, "--host", srv.URL, "start-scrimmages")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "412"), err.Error())
	require.Contains(t, out, "apiVersion")
	require.Equal(t, "/v1/admin/scrimmages", (*seen)[0].path)
}

func TestHealthUsesHealthz(t *testing.T) {
	t.Setenv("AWAP_TOKEN", "")
	srv, seen := newFakeAPI(t, http.StatusOK)

	_, err := execute(t, "--host", srv.URL, "health")
	require.NoError(t, err)
	require.Equal(t, http.MethodGet, (*seen)[0].method)
	require.Equal(t, "/healthz", (*seen)[0].path)
	require.Empty(t, (*seen)[0].auth)
}

func TestPrettyJSONFallsBackToRaw(t *testing.T) {
	require.Equal(t, "not json", prettyJSON([]byte("not json")))
}

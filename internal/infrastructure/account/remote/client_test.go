package remote

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/awap-platform/internal/domain/user"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
	"github.com/riskibarqy/awap-platform/internal/platform/resilience"
	"github.com/riskibarqy/awap-platform/internal/usecase"
	"github.com/stretchr/testify/require"
)

func TestClient_VerifyAccessToken_ParsesAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.Equal(t, "/v1/introspect", r.URL.Path)

		var req map[string]string
		require.NoError(t, sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "token-abc", req["token"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"active":true,"username":"root","roles":["viewer","admin"]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, IntrospectPath: "v1/introspect", CacheTTL: time.Minute}, logging.NewNop())

	for range 2 {
		principal, err := client.VerifyAccessToken(t.Context(), "token-abc")
		require.NoError(t, err)
		require.Equal(t, user.Principal{Name: "root", Role: user.RoleAdmin}, principal)
	}
	require.Equal(t, int32(1), hits.Load())
}

func TestClient_VerifyAccessToken_Denied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"active":false}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, CacheTTL: time.Minute}, logging.NewNop())
	_, err := client.VerifyAccessToken(t.Context(), "token-abc")
	require.ErrorIs(t, err, usecase.ErrUnauthorized)

	_, err = client.VerifyAccessToken(t.Context(), "")
	require.ErrorIs(t, err, usecase.ErrUnauthorized)
}

func TestClient_VerifyAccessToken_CircuitOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(Config{
		BaseURL: srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())

	_, err := client.VerifyAccessToken(t.Context(), "token-1")
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)

	_, err = client.VerifyAccessToken(t.Context(), "token-2")
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	require.Equal(t, int32(1), hits.Load())
}

func TestBuildURL(t *testing.T) {
	require.Equal(t, "https://id.example.com/v1/introspect", buildURL("https://id.example.com/", "v1/introspect"))
	require.Equal(t, "https://other/introspect", buildURL("https://id.example.com", "https://other/introspect"))
	require.Equal(t, "https://id.example.com", buildURL("https://id.example.com/", ""))
}

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/awap-platform/internal/config"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
	"github.com/riskibarqy/awap-platform/internal/platform/resilience"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:                     config.EnvDev,
		ServiceName:                "awap-platform-api",
		HTTPAddr:                   ":0",
		ReadTimeout:                time.Second,
		WriteTimeout:               time.Second,
		CORSAllowedOrigins:         []string{"*"},
		StoreDriver:                config.StoreMemory,
		ObjectStoreDriver:          config.ObjectStoreStatic,
		S3UploadBucket:             "awap-bots",
		CacheEnabled:               true,
		CacheTTL:                   time.Second,
		AuthProvider:               config.AuthLocal,
		AuthJWTSecret:              "test-secret",
		AuthTokenTTL:               time.Hour,
		MatchmakerBaseURL:          "http://127.0.0.1:1",
		MatchmakerTimeout:          time.Second,
		MatchmakerEngineName:       "awap-engine",
		MatchmakerTournamentSlots:  8,
		MatchmakerScrimmagePayload: config.ScrimmagePayloadRoster,
		MatchmakerCircuit:          resilience.DefaultCircuitBreakerConfig(),
		MatchCooldown:              30 * time.Minute,
		SubmissionVerifyOwnership:  true,
		MetricsEnabled:             true,
	}
}

func serve(t *testing.T, a *App, method, path string) int {
	t.Helper()
	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec.Code
}

func TestNew_MemoryStackServesRoutes(t *testing.T) {
	a, err := New(context.Background(), testConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	if got := serve(t, a, http.MethodGet, "/healthz"); got != http.StatusOK {
		t.Fatalf("expected 200 from /healthz, got %d", got)
	}
	if got := serve(t, a, http.MethodGet, "/metrics"); got != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", got)
	}
	if got := serve(t, a, http.MethodGet, "/v1/leaderboard"); got != http.StatusOK {
		t.Fatalf("expected 200 from /v1/leaderboard, got %d", got)
	}
	if got := serve(t, a, http.MethodPost, "/v1/matches/requests"); got != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", got)
	}
	if a.MetricsHandler() == nil {
		t.Fatalf("expected metrics handler when METRICS_ENABLED=true")
	}
}

func TestNew_RemoteProviderHidesLocalAuthRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.AuthProvider = config.AuthRemote
	cfg.AuthRemoteBaseURL = "http://127.0.0.1:1"
	cfg.AuthRemoteIntrospectPath = "/v1/auth/introspect"
	cfg.AuthRemoteTimeout = time.Second
	cfg.MetricsEnabled = false

	a, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	if got := serve(t, a, http.MethodPost, "/v1/auth/login"); got != http.StatusNotFound {
		t.Fatalf("expected 404 for login under remote provider, got %d", got)
	}
	if got := serve(t, a, http.MethodGet, "/metrics"); got != http.StatusNotFound {
		t.Fatalf("expected 404 for /metrics when disabled, got %d", got)
	}
	if a.MetricsHandler() != nil {
		t.Fatalf("expected nil metrics handler when disabled")
	}
}

func TestNew_RejectsBadInputs(t *testing.T) {
	t.Run("empty addr", func(t *testing.T) {
		cfg := testConfig()
		cfg.HTTPAddr = ""
		if _, err := New(context.Background(), cfg, nil); err == nil {
			t.Fatalf("expected error for empty HTTPAddr")
		}
	})

	t.Run("invalid matchmaker url", func(t *testing.T) {
		cfg := testConfig()
		cfg.MatchmakerBaseURL = "ftp://matchmaker"
		if _, err := New(context.Background(), cfg, nil); err == nil {
			t.Fatalf("expected error for non-http matchmaker url")
		}
	})

	t.Run("unknown store", func(t *testing.T) {
		cfg := testConfig()
		cfg.StoreDriver = "mongo"
		if _, err := New(context.Background(), cfg, nil); err == nil {
			t.Fatalf("expected error for unknown store driver")
		}
	})
}

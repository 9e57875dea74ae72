package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/awap-platform/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-other=1, uptrace-dsn='https://token@api.uptrace.dev/1'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MatchCooldown != 30*time.Minute {
		t.Fatalf("expected MatchCooldown=30m, got %s", cfg.MatchCooldown)
	}
	if !cfg.SubmissionVerifyOwnership {
		t.Fatalf("expected SubmissionVerifyOwnership=true by default")
	}
	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("expected memory store by default, got %q", cfg.StoreDriver)
	}
	if cfg.ObjectStoreDriver != ObjectStoreStatic {
		t.Fatalf("expected static object store by default, got %q", cfg.ObjectStoreDriver)
	}
	if cfg.AuthProvider != AuthLocal || cfg.AuthJWTSecret == "" {
		t.Fatalf("expected local auth with dev secret, got provider=%q", cfg.AuthProvider)
	}
	if cfg.MatchmakerTimeout != 15*time.Second {
		t.Fatalf("expected MatchmakerTimeout=15s, got %s", cfg.MatchmakerTimeout)
	}
	if cfg.MatchmakerScrimmagePayload != ScrimmagePayloadRoster {
		t.Fatalf("expected roster scrimmage payload, got %q", cfg.MatchmakerScrimmagePayload)
	}
	if cfg.MatchmakerMatchPath != "/match/new" {
		t.Fatalf("unexpected MatchmakerMatchPath: %q", cfg.MatchmakerMatchPath)
	}
	if cfg.DynamoDBScanSegments != 4 {
		t.Fatalf("expected 4 scan segments, got %d", cfg.DynamoDBScanSegments)
	}
	if !cfg.MatchmakerCircuit.Enabled || cfg.MatchmakerCircuit.FailureThreshold != 5 {
		t.Fatalf("unexpected matchmaker circuit defaults: %+v", cfg.MatchmakerCircuit)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("expected info log level, got %s", cfg.LogLevel)
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("AUTH_JWT_SECRET", "prod-secret")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})

	t.Run("prod requires jwt secret for local auth", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("AUTH_PROVIDER", AuthLocal)
		t.Setenv("AUTH_JWT_SECRET", "")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error without AUTH_JWT_SECRET in prod")
		}
	})
}

func TestLoad_MatchmakerTimeoutBounds(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Setenv("MATCHMAKER_TIMEOUT", "45s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for MATCHMAKER_TIMEOUT above 30s")
	}

	t.Setenv("MATCHMAKER_TIMEOUT", "0s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero MATCHMAKER_TIMEOUT")
	}

	t.Setenv("MATCHMAKER_TIMEOUT", "30s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MatchmakerTimeout != 30*time.Second {
		t.Fatalf("unexpected MatchmakerTimeout: %s", cfg.MatchmakerTimeout)
	}
}

func TestLoad_MatchmakerConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("MATCHMAKER_BASE_URL", "http://matchmaker:9000")
	t.Setenv("MATCHMAKER_ENGINE_NAME", "awap-2026")
	t.Setenv("MATCHMAKER_TOURNAMENT_SLOTS", "32")
	t.Setenv("MATCHMAKER_SCRIMMAGE_PAYLOAD", "TRIGGER")
	t.Setenv("MATCH_COOLDOWN", "10m")
	t.Setenv("MATCHMAKER_CIRCUIT_ENABLED", "false")
	t.Setenv("MATCHMAKER_CIRCUIT_FAILURE_COUNT", "3")
	t.Setenv("MATCHMAKER_CIRCUIT_OPEN_TIMEOUT", "5s")
	t.Setenv("MATCHMAKER_CIRCUIT_HALF_OPEN_MAX_REQ", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MatchmakerBaseURL != "http://matchmaker:9000" {
		t.Fatalf("unexpected MatchmakerBaseURL: %q", cfg.MatchmakerBaseURL)
	}
	if cfg.MatchmakerEngineName != "awap-2026" {
		t.Fatalf("unexpected MatchmakerEngineName: %q", cfg.MatchmakerEngineName)
	}
	if cfg.MatchmakerTournamentSlots != 32 {
		t.Fatalf("unexpected MatchmakerTournamentSlots: %d", cfg.MatchmakerTournamentSlots)
	}
	if cfg.MatchmakerScrimmagePayload != ScrimmagePayloadTrigger {
		t.Fatalf("unexpected MatchmakerScrimmagePayload: %q", cfg.MatchmakerScrimmagePayload)
	}
	if cfg.MatchCooldown != 10*time.Minute {
		t.Fatalf("unexpected MatchCooldown: %s", cfg.MatchCooldown)
	}
	if cfg.MatchmakerCircuit.Enabled || cfg.MatchmakerCircuit.FailureThreshold != 3 ||
		cfg.MatchmakerCircuit.OpenTimeout != 5*time.Second || cfg.MatchmakerCircuit.HalfOpenMaxReq != 1 {
		t.Fatalf("unexpected MatchmakerCircuit: %+v", cfg.MatchmakerCircuit)
	}
}

func TestLoad_InvalidEnums(t *testing.T) {
	cases := map[string]string{
		"STORE_DRIVER":                 "mongo",
		"OBJECT_STORE_DRIVER":          "gcs",
		"AUTH_PROVIDER":                "ldap",
		"MATCHMAKER_SCRIMMAGE_PAYLOAD": "everyone",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoad_StoreRequirements(t *testing.T) {
	t.Run("dynamodb requires table", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("STORE_DRIVER", StoreDynamoDB)
		t.Setenv("DYNAMODB_TABLE", " ")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when DYNAMODB_TABLE is empty")
		}
	})

	t.Run("dynamodb segments bounded", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("DYNAMODB_SCAN_SEGMENTS", "64")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for DYNAMODB_SCAN_SEGMENTS=64")
		}
	})

	t.Run("remote auth requires base url", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("AUTH_PROVIDER", AuthRemote)
		t.Setenv("AUTH_REMOTE_BASE_URL", "")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when AUTH_REMOTE_BASE_URL is empty")
		}
	})

	t.Run("s3 store parsing", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("OBJECT_STORE_DRIVER", ObjectStoreS3)
		t.Setenv("S3_UPLOAD_BUCKET", "bots-2026")
		t.Setenv("S3_REPLAY_BUCKET", "replays-2026")
		t.Setenv("S3_PRESIGN_TTL", "5m")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.S3UploadBucket != "bots-2026" || cfg.S3ReplayBucket != "replays-2026" {
			t.Fatalf("unexpected buckets: %q %q", cfg.S3UploadBucket, cfg.S3ReplayBucket)
		}
		if cfg.S3PresignTTL != 5*time.Minute {
			t.Fatalf("unexpected S3PresignTTL: %s", cfg.S3PresignTTL)
		}
	})
}

func TestLoad_PprofRequiresAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default PprofAddr, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "awap-staging")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "awap-staging" {
		t.Fatalf("unexpected PyroscopeAppName: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://awap.example.com, ,https://admin.awap.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.CORSAllowedOrigins[1] != "https://admin.awap.example.com" {
		t.Fatalf("unexpected origin parsing: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_TTL", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CacheEnabled {
		t.Fatalf("expected CacheEnabled=false")
	}
	if cfg.CacheTTL != 2*time.Minute {
		t.Fatalf("unexpected CacheTTL: %s", cfg.CacheTTL)
	}

	t.Setenv("CACHE_TTL", "-1s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative CACHE_TTL")
	}
}

func TestLoad_LogLevelParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_LOG_LEVEL", "WARNING")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel != logging.LevelWarn {
		t.Fatalf("expected warn level, got %s", cfg.LogLevel)
	}
}

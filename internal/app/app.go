package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/awap-platform/external/matchmaker"
	"github.com/riskibarqy/awap-platform/internal/config"
	"github.com/riskibarqy/awap-platform/internal/interfaces/httpapi"
	"github.com/riskibarqy/awap-platform/internal/observability"
	idgen "github.com/riskibarqy/awap-platform/internal/platform/id"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
	"github.com/riskibarqy/awap-platform/internal/usecase"
)

// App is the assembled API process.
type App struct {
	Server  *http.Server
	Metrics *observability.DispatchMetrics
	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{}
	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if repos.close != nil {
		a.closers = append(a.closers, repos.close)
	}

	objectStore, err := buildObjectStore(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	verifier, hasher, issuer, err := buildIdentity(cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	mm, err := matchmaker.NewClient(matchmaker.Config{
		BaseURL:        cfg.MatchmakerBaseURL,
		Timeout:        cfg.MatchmakerTimeout,
		MatchPath:      cfg.MatchmakerMatchPath,
		TournamentPath: cfg.MatchmakerTournamentPath,
		ScrimmagePath:  cfg.MatchmakerScrimmagePath,
		CircuitBreaker: cfg.MatchmakerCircuit,
	}, logger.Named("matchmaker"))
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	scrimmagePayload, err := usecase.ParseScrimmagePayloadMode(cfg.MatchmakerScrimmagePayload)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var dispatchMetrics usecase.DispatchMetrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		a.Metrics = observability.NewDispatchMetrics("awap")
		dispatchMetrics = a.Metrics
		metricsHandler = a.Metrics.Handler()
	}

	ids := idgen.NewUUIDGenerator()
	permissionSvc := usecase.NewPermissionService(repos.permissions, logger.Named("permission"))
	teamSvc := usecase.NewTeamService(repos.teams, repos.users, permissionSvc, logger.Named("team"))
	submissionSvc := usecase.NewSubmissionService(
		repos.submissions,
		repos.teams,
		teamSvc,
		permissionSvc,
		objectStore,
		ids,
		usecase.SubmissionConfig{VerifyOwnership: cfg.SubmissionVerifyOwnership},
		logger.Named("submission"),
	)
	dispatchSvc := usecase.NewDispatchService(
		repos.teams,
		repos.matches,
		repos.reservations,
		repos.dispatches,
		permissionSvc,
		mm,
		objectStore,
		ids,
		dispatchMetrics,
		usecase.DispatchConfig{
			EngineName:       cfg.MatchmakerEngineName,
			TournamentSlots:  cfg.MatchmakerTournamentSlots,
			ScrimmagePayload: scrimmagePayload,
			Cooldown:         cfg.MatchCooldown,
		},
		logger.Named("dispatch"),
	)
	historySvc := usecase.NewMatchHistoryService(repos.matches, teamSvc, objectStore, logger.Named("history"))
	leaderboardSvc := usecase.NewLeaderboardService(repos.ratings, logger.Named("leaderboard"))
	dispatchLogSvc := usecase.NewDispatchLogService(repos.dispatches)

	var accountSvc *usecase.AccountService
	if hasher != nil && issuer != nil {
		accountSvc = usecase.NewAccountService(repos.users, hasher, issuer, logger.Named("account"))
	}

	handler := httpapi.NewHandler(
		accountSvc,
		teamSvc,
		submissionSvc,
		dispatchSvc,
		permissionSvc,
		historySvc,
		leaderboardSvc,
		dispatchLogSvc,
		logger,
	)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, metricsHandler)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("app assembled",
		"store", cfg.StoreDriver,
		"object_store", cfg.ObjectStoreDriver,
		"auth_provider", cfg.AuthProvider,
		"cache_enabled", cfg.CacheEnabled,
		"metrics_enabled", cfg.MetricsEnabled,
	)

	return a, nil
}

// MetricsHandler is nil when METRICS_ENABLED=false.
func (a *App) MetricsHandler() http.Handler {
	if a.Metrics == nil {
		return nil
	}
	return a.Metrics.Handler()
}

// Close releases store connections in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

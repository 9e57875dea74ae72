package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/awap-platform/internal/domain/user"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
	"github.com/riskibarqy/awap-platform/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	accountService     *usecase.AccountService
	teamService        *usecase.TeamService
	submissionService  *usecase.SubmissionService
	dispatchService    *usecase.DispatchService
	permissionService  *usecase.PermissionService
	matchHistory       *usecase.MatchHistoryService
	leaderboardService *usecase.LeaderboardService
	dispatchLog        *usecase.DispatchLogService
	logger             *logging.Logger
	validator          *validator.Validate
}

// NewHandler wires the HTTP handlers. accountService is nil when identities
// come from a remote provider; the register and login routes are then absent.
func NewHandler(
	accountService *usecase.AccountService,
	teamService *usecase.TeamService,
	submissionService *usecase.SubmissionService,
	dispatchService *usecase.DispatchService,
	permissionService *usecase.PermissionService,
	matchHistory *usecase.MatchHistoryService,
	leaderboardService *usecase.LeaderboardService,
	dispatchLog *usecase.DispatchLogService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		accountService:     accountService,
		teamService:        teamService,
		submissionService:  submissionService,
		dispatchService:    dispatchService,
		permissionService:  permissionService,
		matchHistory:       matchHistory,
		leaderboardService: leaderboardService,
		dispatchLog:        dispatchLog,
		logger:             logger.Named("httpapi"),
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, "ok", map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) decodeAndValidate(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	return h.validateRequest(ctx, dst)
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized)
	}
	return principal, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}

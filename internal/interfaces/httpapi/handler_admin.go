package httpapi

import (
	"net/http"

	"github.com/riskibarqy/awap-platform/internal/domain/permission"
)

func (h *Handler) StartTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartTournament")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req startTournamentRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.dispatchService.StartBracketTournament(ctx, principal, req.Bracket)
	if err != nil {
		h.logger.WarnContext(ctx, "start tournament failed", "bracket", req.Bracket, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "tournament started", dispatchResultToDTO(result))
}

func (h *Handler) StartScrimmages(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartScrimmages")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.dispatchService.StartRankedScrimmageRound(ctx, principal)
	if err != nil {
		h.logger.WarnContext(ctx, "start ranked scrimmages failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "ranked scrimmages started", dispatchResultToDTO(result))
}

func (h *Handler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPermissions")
	defer span.End()

	flags, err := h.permissionService.Flags(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "ok", permissionsToDTO(flags))
}

// SetPermissions applies a partial {flag: bool} update in a single write.
func (h *Handler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetPermissions")
	defer span.End()

	var req map[string]bool
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var (
		updated permission.Flags
		err     error
	)
	if len(req) == 1 {
		for name, enabled := range req {
			updated, err = h.permissionService.SetPermission(ctx, name, enabled)
		}
	} else {
		updated, err = h.permissionService.SetPermissions(ctx, req)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "update permissions failed", "flags", len(req), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "permissions updated", permissionsToDTO(updated))
}

func (h *Handler) ListAdminMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAdminMatches")
	defer span.End()

	items, err := h.matchHistory.ForAdmin(ctx, r.URL.Query().Get("category"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]adminMatchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, adminMatchDTO{
			ID:        item.Match.ID,
			Category:  string(item.Match.Category),
			Team1:     item.Match.Team1,
			Team2:     item.Match.Team2,
			Status:    string(item.Match.Status),
			Outcome:   string(item.Match.Outcome),
			ReplayURL: item.ReplayURL,
			CreatedAt: item.Match.CreatedAt,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, "ok", out)
}

func (h *Handler) ListDispatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDispatches")
	defer span.End()

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.dispatchLog.Recent(ctx, limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]dispatchEventDTO, 0, len(items))
	for _, item := range items {
		out = append(out, dispatchEventDTO{
			DispatchID:   item.DispatchID,
			Kind:         item.Kind,
			Path:         item.Path,
			RequestedBy:  item.RequestedBy,
			Participants: item.Participants,
			Status:       item.Status,
			ResponseCode: item.ResponseCode,
			ErrorMessage: item.ErrorMessage,
			OccurredAt:   item.OccurredAt,
			TraceID:      item.TraceID,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, "ok", out)
}

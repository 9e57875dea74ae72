package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/awap-platform/internal/usecase"
)

// RequestMatch asks for a direct match. The requesting side defaults to the
// caller's own team when player is omitted.
func (h *Handler) RequestMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestMatch")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req matchRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	requester := strings.TrimSpace(req.Player)
	if requester == "" {
		own, err := h.teamService.TeamOf(ctx, principal)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		requester = own.Name
	}

	result, err := h.dispatchService.RequestDirectMatch(ctx, principal, requester, req.Opp)
	if err != nil {
		h.logger.WarnContext(ctx, "match request rejected",
			"user", principal.Name,
			"player", requester,
			"opp", req.Opp,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "match requested", dispatchResultToDTO(result))
}

func (h *Handler) ListMatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchHistory")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.matchHistory.ForTeam(ctx, principal)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]teamMatchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, teamMatchDTO{
			ID:        item.ID,
			Category:  string(item.Category),
			Opponent:  item.Opponent,
			Status:    string(item.Status),
			Result:    string(item.Result),
			ReplayURL: item.ReplayURL,
			CreatedAt: item.CreatedAt,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, "ok", out)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Leaderboard")
	defer span.End()

	page, err := queryInt(r, "page")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	perPage, err := queryInt(r, "per_page")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.leaderboardService.Leaderboard(ctx, usecase.LeaderboardQuery{
		Page:    page,
		PerPage: perPage,
		Sort:    r.URL.Query().Get("sort"),
		Order:   r.URL.Query().Get("order"),
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows := make([]leaderboardRowDTO, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, leaderboardRowDTO{
			Ranking:   row.Ranking,
			TeamName:  row.Team,
			Rating:    row.Rating,
			UpdatedAt: row.UpdatedAt,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, "ok", leaderboardDTO{
		Items: rows,
		Meta: pageMetaDTO{
			CurrentPage: result.Meta.CurrentPage,
			LastPage:    result.Meta.LastPage,
			From:        result.Meta.From,
			To:          result.Meta.To,
			PerPage:     result.Meta.PerPage,
			Total:       result.Meta.Total,
		},
	})
}

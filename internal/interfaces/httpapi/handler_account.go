package httpapi

import (
	"errors"
	"net/http"

	"github.com/riskibarqy/awap-platform/internal/domain/user"
	"github.com/riskibarqy/awap-platform/internal/usecase"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Register")
	defer span.End()

	var req registerRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.accountService.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "register failed", "user", req.Username, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, "account created", userToDTO(created))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Login")
	defer span.End()

	var req loginRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	session, err := h.accountService.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "logged in", sessionDTO{
		AccessToken: session.Token,
		TokenType:   "Bearer",
		ExpiresAt:   session.ExpiresAt,
		User:        userToDTO(session.User),
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Me")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	account := user.User{Username: principal.Name, Role: principal.Role}
	if h.accountService != nil {
		account, err = h.accountService.Me(ctx, principal)
		if err != nil {
			h.logger.ErrorContext(ctx, "get account failed", "user", principal.Name, "error", err)
			writeError(ctx, w, err)
			return
		}
	}

	out := meDTO{User: userToDTO(account)}
	own, err := h.teamService.TeamOf(ctx, principal)
	switch {
	case err == nil:
		dto := teamToDTO(own)
		out.Team = &dto
	case errors.Is(err, usecase.ErrNotFound):
	default:
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "ok", out)
}

package httpapi

import "net/http"

func (h *Handler) RequestUploadURL(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestUploadURL")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req uploadURLRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	ticket, err := h.submissionService.RequestUpload(ctx, principal, req.FileName, req.ContentType)
	if err != nil {
		h.logger.WarnContext(ctx, "request upload url failed", "user", principal.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "upload url issued", uploadTicketDTO{
		ObjectKey:   ticket.ObjectKey,
		UploadURL:   ticket.UploadURL,
		ContentType: ticket.ContentType,
	})
}

func (h *Handler) RecordSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordSubmission")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req recordSubmissionRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.submissionService.RecordSubmission(ctx, principal, req.ObjectKey, req.FileName)
	if err != nil {
		h.logger.WarnContext(ctx, "record submission failed", "user", principal.Name, "object_key", req.ObjectKey, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, "submission recorded", submissionDTO{
		ObjectKey:    created.ObjectKey,
		Team:         created.Team,
		UploadedName: created.UploadedName,
		Active:       true,
		CreatedAt:    created.CreatedAt,
	})
}

func (h *Handler) ActivateSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ActivateSubmission")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req activateSubmissionRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.submissionService.ActivateSubmission(ctx, principal, req.Team, req.ObjectKey)
	if err != nil {
		h.logger.WarnContext(ctx, "activate submission failed", "user", principal.Name, "object_key", req.ObjectKey, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "submission activated", teamToDTO(updated))
}

func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSubmissions")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.submissionService.ListSubmissions(ctx, principal)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "ok", submissionsToDTO(items))
}

func (h *Handler) ListAllSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAllSubmissions")
	defer span.End()

	items, err := h.submissionService.ListAllSubmissions(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list all submissions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, "ok", submissionsToDTO(items))
}

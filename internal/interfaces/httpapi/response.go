package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/awap-platform/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "awap-platform"

	// Replaces the error text of every 500 response.
	retryLaterMessage = "something went wrong, please try again later"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Message    string           `json:"message,omitempty"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

// errorTable is checked in order; the first sentinel err wraps wins.
var errorTable = []struct {
	target error
	mapped mappedError
}{
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNoBotUploaded, mappedError{http.StatusBadRequest, "noBotUploaded", "FAILED_PRECONDITION"}},
	{usecase.ErrNoEligiblePlayers, mappedError{http.StatusBadRequest, "noEligiblePlayers", "FAILED_PRECONDITION"}},
	{usecase.ErrAlreadyExists, mappedError{http.StatusBadRequest, "alreadyExists", "ALREADY_EXISTS"}},
	{usecase.ErrUnauthorized, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrForbidden, mappedError{http.StatusForbidden, "forbidden", "PERMISSION_DENIED"}},
	{usecase.ErrActionDisabled, mappedError{http.StatusForbidden, "actionDisabled", "PERMISSION_DENIED"}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrDuplicateRequest, mappedError{http.StatusPreconditionFailed, "duplicateRequest", "FAILED_PRECONDITION"}},
	{usecase.ErrUpstream, mappedError{http.StatusInternalServerError, "upstreamError", "INTERNAL"}},
	{usecase.ErrConfigUpdateFailed, mappedError{http.StatusInternalServerError, "configUpdateFailed", "INTERNAL"}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
}

var internalMappedError = mappedError{
	HTTPStatus: http.StatusInternalServerError,
	Reason:     "internalError",
	Status:     "INTERNAL",
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Message:    message,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	message := err.Error()
	if mapped.HTTPStatus == http.StatusInternalServerError {
		message = retryLaterMessage
	}

	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Message:    message,
		Data:       upstreamData(err),
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: message,
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Message:    retryLaterMessage,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: retryLaterMessage,
			Status:  internalMappedError.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  internalMappedError.Reason,
					Message: retryLaterMessage,
				},
			},
		},
	})
}

func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	for _, row := range errorTable {
		if errors.Is(err, row.target) {
			return row.mapped
		}
	}
	return internalMappedError
}

// upstreamData is the matchmaker's answer for a refused job, nil otherwise.
func upstreamData(err error) any {
	var upstream *usecase.UpstreamError
	if !errors.As(err, &upstream) || len(upstream.Body) == 0 {
		return nil
	}

	var decoded any
	if sonic.Unmarshal(upstream.Body, &decoded) == nil {
		return map[string]any{"upstream_status": upstream.StatusCode, "upstream_body": decoded}
	}
	return map[string]any{"upstream_status": upstream.StatusCode, "upstream_body": string(upstream.Body)}
}

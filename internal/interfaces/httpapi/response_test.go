package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/awap-platform/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, "ok", map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if got, _ := body["message"].(string); got != "ok" {
		t.Fatalf("expected message=ok, got %v", body["message"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if got, _ := body["message"].(string); got != "invalid input: bad payload" {
		t.Fatalf("expected error text as message, got %v", body["message"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestWriteError_InternalErrorsUseGenericMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: dial tcp 10.0.0.4:5432: refused", usecase.ErrConfigUpdateFailed))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if got, _ := body["message"].(string); got != retryLaterMessage {
		t.Fatalf("expected generic message, got %v", body["message"])
	}
	if _, ok := body["data"]; ok {
		t.Fatalf("did not expect data for a non-upstream error")
	}
}

func TestMapError_StatusTable(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "invalid input", err: usecase.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "no bot uploaded", err: usecase.ErrNoBotUploaded, status: http.StatusBadRequest},
		{name: "no eligible players", err: usecase.ErrNoEligiblePlayers, status: http.StatusBadRequest},
		{name: "already exists", err: usecase.ErrAlreadyExists, status: http.StatusBadRequest},
		{name: "unauthorized", err: usecase.ErrUnauthorized, status: http.StatusUnauthorized},
		{name: "forbidden", err: usecase.ErrForbidden, status: http.StatusForbidden},
		{name: "action disabled", err: usecase.ErrActionDisabled, status: http.StatusForbidden},
		{name: "not found", err: usecase.ErrNotFound, status: http.StatusNotFound},
		{name: "duplicate request", err: usecase.ErrDuplicateRequest, status: http.StatusPreconditionFailed},
		{name: "upstream", err: &usecase.UpstreamError{StatusCode: 502}, status: http.StatusInternalServerError},
		{name: "config update failed", err: usecase.ErrConfigUpdateFailed, status: http.StatusInternalServerError},
		{name: "dependency unavailable", err: usecase.ErrDependencyUnavailable, status: http.StatusServiceUnavailable},
		{name: "unknown", err: fmt.Errorf("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(context.Background(), fmt.Errorf("wrapped: %w", tt.err))
			if got.HTTPStatus != tt.status {
				t.Fatalf("mapError(%v) status=%d want=%d", tt.err, got.HTTPStatus, tt.status)
			}
		})
	}
}

func TestUpstreamData_KeepsRawTextWhenNotJSON(t *testing.T) {
	data, ok := upstreamData(&usecase.UpstreamError{StatusCode: 503, Body: []byte("service unavailable")}).(map[string]any)
	if !ok {
		t.Fatalf("expected upstream data map")
	}
	if got, _ := data["upstream_body"].(string); got != "service unavailable" {
		t.Fatalf("expected raw upstream body, got %v", data["upstream_body"])
	}
	if upstreamData(fmt.Errorf("plain")) != nil {
		t.Fatalf("expected nil data for non-upstream error")
	}
}

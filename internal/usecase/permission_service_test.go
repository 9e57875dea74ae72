package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/permission"
	"github.com/riskibarqy/awap-platform/internal/infrastructure/repository/memory"
	permissionmock "github.com/riskibarqy/awap-platform/internal/mocks/domain/permission"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestPermissionService_MissingRecordReadsAsDefaults(t *testing.T) {
	service := NewPermissionService(memory.NewPermissionRepository(), logging.NewNop())

	flags, err := service.Flags(t.Context())
	if err != nil {
		t.Fatalf("read flags: %v", err)
	}
	for _, flag := range permission.AllFlags() {
		if !flags.Enabled(flag) {
			t.Fatalf("expected %s enabled by default", flag)
		}
	}
}

func TestPermissionService_SetPermission_OnlyTouchesNamedFlag(t *testing.T) {
	service := NewPermissionService(memory.NewPermissionRepository(), logging.NewNop())
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	if _, err := service.SetPermission(t.Context(), "code_submissions", false); err != nil {
		t.Fatalf("disable code submissions: %v", err)
	}
	flags, err := service.SetPermission(t.Context(), "BRACKET_SWITCHING", false)
	if err != nil {
		t.Fatalf("disable bracket switching: %v", err)
	}

	if flags.CodeSubmissions || flags.BracketSwitching {
		t.Fatalf("expected both disabled flags to stay off: %#v", flags)
	}
	if !flags.TeamModifications || !flags.ScrimmageRequests {
		t.Fatalf("untouched flags must keep their value: %#v", flags)
	}
	if !flags.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected updated_at: %s", flags.UpdatedAt)
	}
}

func TestPermissionService_SetPermissions_Validation(t *testing.T) {
	service := NewPermissionService(memory.NewPermissionRepository(), logging.NewNop())

	if _, err := service.SetPermissions(t.Context(), nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty update, got %v", err)
	}
	if _, err := service.SetPermissions(t.Context(), map[string]bool{"scrimmage_requests": false, "ranked": true}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown flag, got %v", err)
	}

	flags, err := service.Flags(t.Context())
	if err != nil {
		t.Fatalf("read flags: %v", err)
	}
	if !flags.ScrimmageRequests {
		t.Fatalf("rejected update must not be partially applied")
	}

	flags, err = service.SetPermissions(t.Context(), map[string]bool{"scrimmage_requests": false, "team_modifications": false})
	if err != nil {
		t.Fatalf("set permissions: %v", err)
	}
	if flags.ScrimmageRequests || flags.TeamModifications || !flags.CodeSubmissions {
		t.Fatalf("unexpected flags: %#v", flags)
	}
}

func TestPermissionService_SetPermission_StoreFailureUsingMockery(t *testing.T) {
	repo := permissionmock.NewRepository(t)
	service := NewPermissionService(repo, logging.NewNop())

	repo.
		On("Update", mock.Anything, map[permission.Flag]bool{permission.FlagScrimmageRequests: false}, mock.Anything).
		Return(errors.New("conditional check failed")).
		Once()

	_, err := service.SetPermission(t.Context(), "scrimmage_requests", false)
	if !errors.Is(err, ErrConfigUpdateFailed) {
		t.Fatalf("expected ErrConfigUpdateFailed, got %v", err)
	}
}

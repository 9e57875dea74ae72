package local

import (
	"testing"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/user"
	"github.com/riskibarqy/awap-platform/internal/usecase"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	hasher := NewBcryptHasher(4)

	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct-horse", hash)

	require.NoError(t, hasher.Compare(hash, "correct-horse"))
	require.ErrorIs(t, hasher.Compare(hash, "wrong"), usecase.ErrUnauthorized)
	require.ErrorIs(t, hasher.Compare("not-a-hash", "wrong"), usecase.ErrUnauthorized)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	service, err := NewTokenService("0123456789abcdef", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := service.Issue(user.Principal{Name: "root", Role: user.RoleAdmin})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	principal, err := service.VerifyAccessToken(t.Context(), token)
	require.NoError(t, err)
	require.Equal(t, user.Principal{Name: "root", Role: user.RoleAdmin}, principal)
}

func TestTokenService_RejectsExpiredAndForeignTokens(t *testing.T) {
	service, err := NewTokenService("0123456789abcdef", time.Minute)
	require.NoError(t, err)

	issuedAt := time.Now().Add(-time.Hour)
	service.now = func() time.Time { return issuedAt }
	token, _, err := service.Issue(user.Principal{Name: "ana", Role: user.RoleUser})
	require.NoError(t, err)

	service.now = time.Now
	_, err = service.VerifyAccessToken(t.Context(), token)
	require.ErrorIs(t, err, usecase.ErrUnauthorized)

	other, err := NewTokenService("fedcba9876543210", time.Minute)
	require.NoError(t, err)
	foreign, _, err := other.Issue(user.Principal{Name: "ana", Role: user.RoleUser})
	require.NoError(t, err)
	_, err = service.VerifyAccessToken(t.Context(), foreign)
	require.ErrorIs(t, err, usecase.ErrUnauthorized)

	_, err = service.VerifyAccessToken(t.Context(), " ")
	require.ErrorIs(t, err, usecase.ErrUnauthorized)
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	require.Error(t, err)
}

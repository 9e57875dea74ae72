package app

import (
	"github.com/riskibarqy/awap-platform/internal/config"
	"github.com/riskibarqy/awap-platform/internal/infrastructure/account/local"
	"github.com/riskibarqy/awap-platform/internal/infrastructure/account/remote"
	"github.com/riskibarqy/awap-platform/internal/interfaces/httpapi"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
	"github.com/riskibarqy/awap-platform/internal/usecase"
)

const remotePrincipalCacheItems = 10000

// buildIdentity returns the token verifier for AUTH_PROVIDER. Hasher and
// issuer are nil for the remote provider, which owns registration itself.
func buildIdentity(cfg config.Config, logger *logging.Logger) (httpapi.TokenVerifier, usecase.PasswordHasher, usecase.TokenIssuer, error) {
	if cfg.AuthProvider == config.AuthRemote {
		client := remote.NewClient(remote.Config{
			BaseURL:        cfg.AuthRemoteBaseURL,
			IntrospectPath: cfg.AuthRemoteIntrospectPath,
			Timeout:        cfg.AuthRemoteTimeout,
			CacheTTL:       cfg.CacheTTL,
			CacheMaxItems:  remotePrincipalCacheItems,
			CircuitBreaker: cfg.AuthCircuit,
		}, logger.Named("identity"))
		return client, nil, nil, nil
	}

	tokens, err := local.NewTokenService(cfg.AuthJWTSecret, cfg.AuthTokenTTL)
	if err != nil {
		return nil, nil, nil, err
	}
	return tokens, local.NewBcryptHasher(local.DefaultBcryptCost), tokens, nil
}

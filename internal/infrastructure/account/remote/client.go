package remote

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/awap-platform/internal/domain/user"
	"github.com/riskibarqy/awap-platform/internal/platform/cache"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
	"github.com/riskibarqy/awap-platform/internal/platform/resilience"
	"github.com/riskibarqy/awap-platform/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var errIdentityTransient = stderrors.New("identity provider transient failure")

type Config struct {
	BaseURL        string
	IntrospectPath string
	Timeout        time.Duration
	CacheTTL       time.Duration
	CacheMaxItems  int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client verifies bearer tokens against an external identity provider's
// introspection endpoint. Verified principals are cached by token hash.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	cache         *cache.Store[user.Principal]
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger
}

func NewClient(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	maxItems := cfg.CacheMaxItems
	if maxItems <= 0 {
		maxItems = 10000
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		introspectURL: buildURL(cfg.BaseURL, cfg.IntrospectPath),
		breaker:       resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		logger:        logger.Named("identity"),
	}
	if cfg.CacheTTL > 0 {
		client.cache = cache.NewStore[user.Principal](cfg.CacheTTL, maxItems)
	}
	return client
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	if c.cache == nil {
		return c.verify(ctx, token)
	}
	return c.cache.GetOrLoad(ctx, hashToken(token), func(ctx context.Context) (user.Principal, error) {
		return c.verify(ctx, token)
	})
}

func (c *Client) verify(ctx context.Context, token string) (user.Principal, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "identity provider circuit breaker rejected request", "state", c.breaker.State())
		return user.Principal{}, fmt.Errorf("%w: identity provider: %v", usecase.ErrDependencyUnavailable, err)
	}

	principal, err := c.introspect(ctx, token)
	c.breaker.Record(err, isCircuitFailure)
	return principal, err
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %w: request introspection: %v", usecase.ErrDependencyUnavailable, errIdentityTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %w: read introspect response: %v", usecase.ErrDependencyUnavailable, errIdentityTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "identity provider introspection non-200", "status_code", resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return user.Principal{}, fmt.Errorf("%w: %w: introspection status %d", usecase.ErrDependencyUnavailable, errIdentityTransient, resp.StatusCode)
		}
		return user.Principal{}, fmt.Errorf("%w: introspection status %d", usecase.ErrDependencyUnavailable, resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}
	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.Username) == "" {
		return user.Principal{}, fmt.Errorf("%w: introspect response has no username", usecase.ErrUnauthorized)
	}

	role := user.RoleUser
	if slices.Contains(decoded.Roles, string(user.RoleAdmin)) {
		role = user.RoleAdmin
	}
	return user.Principal{Name: decoded.Username, Role: role}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active   bool     `json:"active"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, errIdentityTransient)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return baseURL + path
}

package matchmaker

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/awap-platform/internal/domain/dispatch"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
	"github.com/riskibarqy/awap-platform/internal/platform/resilience"
	"github.com/riskibarqy/awap-platform/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout  = 15 * time.Second
	maxTimeout      = 30 * time.Second
	maxResponseBody = 1 << 20
	maxLoggedBody   = 4096
)

var errMatchmakerTransient = crerr.New("matchmaker transient failure")

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MatchPath      string
	TournamentPath string
	ScrimmagePath  string
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client posts jobs to the matchmaking service. It never retries.
type Client struct {
	client  *http.Client
	baseURL string
	paths   map[dispatch.Kind]string
	logger  *logging.Logger
	breaker *resilience.CircuitBreaker
}

func NewClient(cfg Config, logger *logging.Logger) (*Client, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid MATCHMAKER_BASE_URL")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if timeout > maxTimeout {
		timeout = maxTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
		paths: map[dispatch.Kind]string{
			dispatch.KindMatch:      normalizePath(cfg.MatchPath, "/match/new"),
			dispatch.KindTournament: normalizePath(cfg.TournamentPath, "/tournament/"),
			dispatch.KindScrimmage:  normalizePath(cfg.ScrimmagePath, "/scrimmage/"),
		},
		logger:  logger.Named("matchmaker"),
		breaker: resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}, nil
}

func (c *Client) Path(kind dispatch.Kind) string {
	return c.paths[kind]
}

// Submit posts job to the endpoint for kind. Only HTTP 200 counts as accepted;
// every other outcome is returned as *usecase.UpstreamError.
func (c *Client) Submit(ctx context.Context, kind dispatch.Kind, job *usecase.MatchmakerJob) (usecase.MatchmakerResponse, error) {
	path, ok := c.paths[kind]
	if !ok {
		return usecase.MatchmakerResponse{}, crerr.Newf("unknown dispatch kind %q", kind)
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "matchmaker circuit breaker rejected request", "kind", kind, "state", c.breaker.State())
		return usecase.MatchmakerResponse{}, &usecase.UpstreamError{Err: fmt.Errorf("matchmaker is temporarily unavailable: %w", err)}
	}

	var payload any = map[string]any{}
	if job != nil {
		payload = job
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return usecase.MatchmakerResponse{}, crerr.Wrap(err, "marshal matchmaker job")
	}

	endpoint := c.baseURL + path
	bodyText := truncateForLog(string(body), maxLoggedBody)
	curlPreview := buildCurlPreview(endpoint, bodyText)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("matchmaker.url", endpoint),
			attribute.String("matchmaker.kind", string(kind)),
			attribute.String("matchmaker.request_body", bodyText),
		)
	}
	c.logger.DebugContext(ctx, "matchmaker request", "kind", kind, "url", endpoint, "curl_preview", curlPreview)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return usecase.MatchmakerResponse{}, crerr.Wrap(err, "create matchmaker request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		callErr := &usecase.UpstreamError{Err: fmt.Errorf("%w: post %s: %v", errMatchmakerTransient, endpoint, err)}
		c.breaker.Record(callErr, isCircuitFailure)
		return usecase.MatchmakerResponse{}, callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		callErr := &usecase.UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: read response: %v", errMatchmakerTransient, err)}
		c.breaker.Record(callErr, isCircuitFailure)
		return usecase.MatchmakerResponse{}, callErr
	}
	if span.IsRecording() {
		span.SetAttributes(attribute.Int("matchmaker.status_code", resp.StatusCode))
	}

	if resp.StatusCode != http.StatusOK {
		cause := fmt.Errorf("post %s status=%d body=%s", endpoint, resp.StatusCode, truncateForLog(strings.TrimSpace(string(raw)), maxLoggedBody))
		if isRetryableStatus(resp.StatusCode) {
			cause = fmt.Errorf("%w: %v", errMatchmakerTransient, cause)
		}
		callErr := &usecase.UpstreamError{StatusCode: resp.StatusCode, Body: raw, Err: cause}
		c.breaker.Record(callErr, isCircuitFailure)
		c.logger.WarnContext(ctx, "matchmaker rejected job", "kind", kind, "status_code", resp.StatusCode, "curl_preview", curlPreview)
		return usecase.MatchmakerResponse{}, callErr
	}

	c.breaker.RecordSuccess()
	return usecase.MatchmakerResponse{StatusCode: resp.StatusCode, Body: raw}, nil
}

func normalizePath(path, fallback string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = fallback
	}
	return "/" + strings.TrimLeft(path, "/")
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildCurlPreview(endpoint, body string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(endpoint))
	appendPart("-H")
	appendPart(shellQuote("Content-Type: application/json"))
	appendPart("-d")
	appendPart(shellQuote(body))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, errMatchmakerTransient)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

package bcapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
)

// DefaultEndpoint is the production API host. Paths below it start with /v1.
const DefaultEndpoint = "https://businesscommunications.googleapis.com"

// Scope is the OAuth2 scope every Business Communications call requires.
const Scope = "https://www.googleapis.com/auth/businesscommunications"

const defaultUserAgent = "bcctl/0.1"

// Client is an HTTP client for the Business Communications API. Each call is
// attempted exactly once; there is no retry layer. Failures surface as
// *RemoteOperationError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      oauth2.TokenSource
	logger     *slog.Logger
	userAgent  string

	// limiter paces outgoing requests. Nil disables pacing.
	limiter *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit paces requests to at most rps per second. rps <= 0 leaves
// the client unpaced.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewClient creates a Business Communications API client.
// baseURL is typically DefaultEndpoint.
func NewClient(baseURL string, httpClient *http.Client, token oauth2.TokenSource, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		token:      token,
		logger:     logger,
		userAgent:  defaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes one request against the API. The path is appended to the
// client's base URL. A non-nil body is JSON-encoded. When out is non-nil the
// 2xx response body is decoded into it. op and resource only label errors
// and log lines.
func (c *Client) Do(ctx context.Context, op, resource, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &RemoteOperationError{Op: op, Resource: resource, Err: fmt.Errorf("waiting for rate limiter: %w", err)}
		}
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return &RemoteOperationError{Op: op, Resource: resource, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("request canceled: %w", ctx.Err())
		}

		c.logger.Warn("request failed",
			slog.String("op", op),
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return &RemoteOperationError{Op: op, Resource: resource, Err: err}
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		c.logger.Debug("request rejected",
			slog.String("op", op),
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)

		return &RemoteOperationError{
			Op:         op,
			Resource:   resource,
			StatusCode: resp.StatusCode,
			Err:        err,
			sentinel:   classifyStatus(resp.StatusCode),
		}
	}

	c.logger.Debug("request succeeded",
		slog.String("op", op),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteOperationError{
			Op:         op,
			Resource:   resource,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decoding response: %w", err),
		}
	}

	return nil
}

// newRequest builds an authenticated request. The token source is consulted
// on every call; oauth2's reuse wrapper keeps that cheap until expiry.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	tok, err := c.token.Token()
	if err != nil {
		return nil, fmt.Errorf("obtaining token: %w", err)
	}

	tok.SetAuthHeader(req)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

package github

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v70/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/solidify-labs/gl2gh/pkg/logger"
)

// ErrNotFound reports a 404 from the GitHub API for lookups where callers
// treat a missing entity as a per-record condition rather than a failure.
var ErrNotFound = errors.New("not found on GitHub")

// Client wraps the GitHub REST and GraphQL clients with retry capabilities.
type Client struct {
	inner *github.Client
	v4    *githubv4.Client
}

// NewClientByPAT creates a GitHub client authenticated with a personal
// access token.
func NewClientByPAT(token string) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		inner: github.NewClient(tc),
		v4:    githubv4.NewClient(tc),
	}
}

// NewClientByApp creates a GitHub client authenticated as a GitHub App
// installation.
func NewClientByApp(appID, installationID int, privateKey string) (*Client, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, int64(appID), int64(installationID), []byte(privateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}
	return &Client{
		inner: github.NewClient(&http.Client{Transport: itr}),
		v4:    githubv4.NewClient(&http.Client{Transport: itr}),
	}, nil
}

// NewClientFromHTTP wraps an existing HTTP client. Used by tests to point the
// client at a local server.
func NewClientFromHTTP(httpClient *http.Client, baseURL string) (*Client, error) {
	inner, err := github.NewClient(httpClient).WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		inner: inner,
		v4:    githubv4.NewEnterpriseClient(baseURL, httpClient),
	}, nil
}

// GetInner returns the underlying GitHub REST client.
func (client *Client) GetInner() *github.Client {
	return client.inner
}

// GetV4 returns the underlying GitHub GraphQL client.
func (client *Client) GetV4() *githubv4.Client {
	return client.v4
}

// RetryableOperation retries a GitHub API operation. Rate limits are handled
// by sleeping until the limit resets and retrying the same call; transient
// errors back off exponentially with jitter. Both waits respect ctx.
func RetryableOperation(ctx context.Context, operation func() error) error {
	var err error
	maxRetries := 5
	backoffFactor := 2.0
	initialDelay := 1 * time.Second
	maxDelay := 60 * time.Second

	for attempt := 0; attempt < maxRetries; attempt++ {
		err = operation()
		if err == nil {
			return nil
		}

		if wait, limited := rateLimitWait(err); limited {
			logger.Info(fmt.Sprintf("Rate limited by GitHub API. Waiting %s before retrying (attempt %d/%d)", wait, attempt+1, maxRetries))
			if sleepErr := sleepCtx(ctx, wait); sleepErr != nil {
				return sleepErr
			}
			continue
		}

		if isRetryableError(err) {
			delay := calculateBackoff(attempt, initialDelay, backoffFactor, maxDelay)
			logger.Info(fmt.Sprintf("Retryable error: %v. Retrying after %s (attempt %d/%d)", err, delay, attempt+1, maxRetries))
			if sleepErr := sleepCtx(ctx, delay); sleepErr != nil {
				return sleepErr
			}
			continue
		}

		return err
	}

	return fmt.Errorf("operation failed after %d attempts: %w", maxRetries, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// rateLimitWait reports whether err is a rate-limit rejection, and for how
// long to wait before retrying. The reset timestamp from the API is honored
// with a one minute floor.
func rateLimitWait(err error) (time.Duration, bool) {
	const floor = time.Minute

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		wait := time.Until(rateErr.Rate.Reset.Time)
		if wait < floor {
			wait = floor
		}
		return wait, true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		if abuseErr.RetryAfter != nil && *abuseErr.RetryAfter > 0 {
			return *abuseErr.RetryAfter, true
		}
		return floor, true
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		status := errResp.Response.StatusCode
		if status == http.StatusTooManyRequests ||
			(status == http.StatusForbidden && errResp.Message == "rate limit") {
			return floor, true
		}
	}

	return 0, false
}

// isRetryableError determines if an error should be retried with backoff.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		code := errResp.Response.StatusCode
		return code == http.StatusInternalServerError ||
			code == http.StatusBadGateway ||
			code == http.StatusServiceUnavailable ||
			code == http.StatusGatewayTimeout
	}

	// Also retry on network/transport errors.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// calculateBackoff computes the backoff duration using exponential backoff
// with jitter.
func calculateBackoff(attempt int, initialDelay time.Duration, factor float64, maxDelay time.Duration) time.Duration {
	backoff := float64(initialDelay) * math.Pow(factor, float64(attempt))

	// ±20% jitter
	jitter := backoff * 0.2 * (rand.Float64()*2 - 1)
	backoff = backoff + jitter

	if backoff > float64(maxDelay) {
		backoff = float64(maxDelay)
	}
	return time.Duration(backoff)
}

// isNotFound reports whether err carries a 404 response.
func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}

package github

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	githublib "github.com/google/go-github/v70/github"
	"github.com/stretchr/testify/require"
)

func errorResponse(statusCode int, message string) *githublib.ErrorResponse {
	return &githublib.ErrorResponse{
		Response: &http.Response{StatusCode: statusCode},
		Message:  message,
	}
}

func TestRateLimitWaitPrimaryLimit(t *testing.T) {
	err := &githublib.RateLimitError{
		Rate: githublib.Rate{Reset: githublib.Timestamp{Time: time.Now().Add(5 * time.Minute)}},
	}
	wait, limited := rateLimitWait(err)
	require.True(t, limited)
	require.Greater(t, wait, 4*time.Minute)
}

func TestRateLimitWaitFloorsShortResets(t *testing.T) {
	err := &githublib.RateLimitError{
		Rate: githublib.Rate{Reset: githublib.Timestamp{Time: time.Now().Add(5 * time.Second)}},
	}
	wait, limited := rateLimitWait(err)
	require.True(t, limited)
	require.Equal(t, time.Minute, wait)
}

func TestRateLimitWaitSecondaryLimit(t *testing.T) {
	retryAfter := 30 * time.Second
	err := &githublib.AbuseRateLimitError{RetryAfter: &retryAfter}
	wait, limited := rateLimitWait(err)
	require.True(t, limited)
	require.Equal(t, retryAfter, wait)
}

func TestRateLimitWaitSecondaryLimitWithoutRetryAfter(t *testing.T) {
	wait, limited := rateLimitWait(&githublib.AbuseRateLimitError{})
	require.True(t, limited)
	require.Equal(t, time.Minute, wait)
}

func TestRateLimitWaitStatusCodes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		limited bool
	}{
		{"429", errorResponse(http.StatusTooManyRequests, ""), true},
		{"403 rate limit", errorResponse(http.StatusForbidden, "rate limit"), true},
		{"403 other", errorResponse(http.StatusForbidden, "resource not accessible"), false},
		{"404", errorResponse(http.StatusNotFound, ""), false},
		{"wrapped 429", fmt.Errorf("request: %w", errorResponse(http.StatusTooManyRequests, "")), true},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, limited := rateLimitWait(tt.err)
			require.Equal(t, tt.limited, limited)
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"500", errorResponse(http.StatusInternalServerError, ""), true},
		{"502", errorResponse(http.StatusBadGateway, ""), true},
		{"503", errorResponse(http.StatusServiceUnavailable, ""), true},
		{"504", errorResponse(http.StatusGatewayTimeout, ""), true},
		{"404", errorResponse(http.StatusNotFound, ""), false},
		{"422", errorResponse(http.StatusUnprocessableEntity, ""), false},
		{"network error", &url.Error{Op: "Get", URL: "https://api.github.com", Err: errors.New("connection reset")}, true},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestCalculateBackoffGrowsAndCaps(t *testing.T) {
	initial := 1 * time.Second
	max := 60 * time.Second

	for attempt := 0; attempt < 10; attempt++ {
		delay := calculateBackoff(attempt, initial, 2.0, max)
		require.LessOrEqual(t, delay, max)
		require.Positive(t, delay)
	}

	// Expected value doubles per attempt; the jitter stays within ±20%.
	for attempt := 0; attempt < 5; attempt++ {
		expected := float64(initial) * float64(int(1)<<attempt)
		delay := float64(calculateBackoff(attempt, initial, 2.0, max))
		require.GreaterOrEqual(t, delay, expected*0.8)
		require.LessOrEqual(t, delay, expected*1.2)
	}
}

func TestIsNotFound(t *testing.T) {
	require.True(t, isNotFound(errorResponse(http.StatusNotFound, "Not Found")))
	require.True(t, isNotFound(fmt.Errorf("get issue: %w", errorResponse(http.StatusNotFound, ""))))
	require.False(t, isNotFound(errorResponse(http.StatusForbidden, "")))
	require.False(t, isNotFound(errors.New("boom")))
}

package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClientFromHTTP(server.Client(), server.URL)
	require.NoError(t, err)
	return client
}

func TestGetIssue(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/repos/solidify-labs/migration-test/issues/4", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"number": 4, "title": "Broken build", "body": "see gitlab"}`)
	}))

	issue, err := client.GetIssue(context.Background(), "solidify-labs", "migration-test", 4)
	require.NoError(t, err)
	require.Equal(t, 4, issue.GetNumber())
	require.Equal(t, "Broken build", issue.GetTitle())
}

func TestGetIssueNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	}))

	_, err := client.GetIssue(context.Background(), "solidify-labs", "migration-test", 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListIssuesPaginates(t *testing.T) {
	var baseURL string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v3/repos/o/r/issues?page=2>; rel="next"`, baseURL))
			fmt.Fprint(w, `[{"number": 1}, {"number": 2}]`)
			return
		}
		fmt.Fprint(w, `[{"number": 3}]`)
	}))
	baseURL = client.GetInner().BaseURL.Scheme + "://" + client.GetInner().BaseURL.Host

	issues, err := client.ListIssues(context.Background(), "o", "r")
	require.NoError(t, err)
	require.Len(t, issues, 3)
	require.Equal(t, 3, issues[2].GetNumber())
}

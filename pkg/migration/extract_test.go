package migration

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	githubClient "github.com/solidify-labs/gl2gh/pkg/github"
)

func newGitHubTestClient(t *testing.T, handler http.Handler) *githubClient.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := githubClient.NewClientFromHTTP(server.Client(), server.URL)
	require.NoError(t, err)
	return client
}

func readReport(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExtractOrgUsers(t *testing.T) {
	client := newGitHubTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v3/orgs/acme/members":
			fmt.Fprint(w, `[{"login": "alice"}, {"login": "bob"}]`)
		case "/api/v3/users/alice":
			fmt.Fprint(w, `{"login": "alice", "name": "Alice A", "email": "alice@acme.example", "company": "Acme", "created_at": "2019-03-04T12:00:00Z"}`)
		case "/api/v3/users/bob":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}))

	output := filepath.Join(t.TempDir(), "users.csv")
	err := ExtractOrgUsers(context.Background(), client, "acme", output)
	require.NoError(t, err)

	rows := readReport(t, output)
	require.Equal(t, []string{"login", "name", "email", "company", "created_at"}, rows[0])
	require.Equal(t, []string{"alice", "Alice A", "alice@acme.example", "Acme", "2019-03-04"}, rows[1])
	// A failed profile lookup keeps the login and leaves the rest empty.
	require.Equal(t, []string{"bob", "", "", "", ""}, rows[2])
	require.Len(t, rows, 3)
}

func TestExtractOrgTeams(t *testing.T) {
	client := newGitHubTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v3/orgs/acme/teams":
			fmt.Fprint(w, `[
				{"slug": "platform", "name": "Platform", "description": "Infra owners", "privacy": "closed"},
				{"slug": "empty-team", "name": "Empty Team", "privacy": "secret"}
			]`)
		case "/api/v3/orgs/acme/teams/platform/members":
			fmt.Fprint(w, `[{"login": "alice"}, {"login": "bob"}]`)
		case "/api/v3/orgs/acme/teams/empty-team/members":
			fmt.Fprint(w, `[]`)
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}))

	output := filepath.Join(t.TempDir(), "teams.csv")
	err := ExtractOrgTeams(context.Background(), client, "acme", output)
	require.NoError(t, err)

	rows := readReport(t, output)
	require.Equal(t, []string{"team_slug", "team_name", "description", "privacy", "member_login"}, rows[0])
	// Teams come out sorted by slug; an empty team still gets a row.
	require.Equal(t, []string{"empty-team", "Empty Team", "", "secret", ""}, rows[1])
	require.Equal(t, []string{"platform", "Platform", "Infra owners", "closed", "alice"}, rows[2])
	require.Equal(t, []string{"platform", "Platform", "Infra owners", "closed", "bob"}, rows[3])
	require.Len(t, rows, 4)
}

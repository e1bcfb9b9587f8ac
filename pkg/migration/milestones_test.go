package migration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	xgitlab "github.com/xanzy/go-gitlab"

	"github.com/solidify-labs/gl2gh/pkg/config"
	"github.com/solidify-labs/gl2gh/pkg/mapping"
)

func TestMilestoneState(t *testing.T) {
	require.Equal(t, "open", milestoneState("active"))
	require.Equal(t, "closed", milestoneState("closed"))
	require.Equal(t, "closed", milestoneState("expired"))
}

func TestMilestoneDueOn(t *testing.T) {
	dueOn, formatted, err := milestoneDueOn("2024-03-15")
	require.NoError(t, err)
	require.NotNil(t, dueOn)
	require.Equal(t, time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC), *dueOn)
	require.Equal(t, "2024-03-15T23:59:59Z", formatted)
}

func TestMilestoneDueOnEmpty(t *testing.T) {
	dueOn, formatted, err := milestoneDueOn("")
	require.NoError(t, err)
	require.Nil(t, dueOn)
	require.Empty(t, formatted)
}

func TestMilestoneDueOnInvalid(t *testing.T) {
	_, _, err := milestoneDueOn("15/03/2024")
	require.Error(t, err)
}

func TestApplyMilestonesReusesExistingByTitle(t *testing.T) {
	ghc := newGitHubTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			t.Errorf("unexpected milestone creation: %s %s", r.Method, r.URL.Path)
			return
		}
		require.Equal(t, "/api/v3/repos/acme/proj/milestones", r.URL.Path)
		fmt.Fprint(w, `[{"number": 3, "title": "v1.0", "state": "open"}]`)
	}))

	gitlabServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.True(t, strings.HasSuffix(r.URL.Path, "/issues"), "unexpected request %s", r.URL.Path)
		fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(gitlabServer.Close)
	glc, err := xgitlab.NewClient("token", xgitlab.WithBaseURL(gitlabServer.URL))
	require.NoError(t, err)

	mapFile := filepath.Join(t.TempDir(), "milestones-map.csv")
	store := MilestoneStore(mapFile)
	require.NoError(t, store.Save([]*MilestoneRecord{
		{GitLabID: 11, Title: "v1.0", State: "active", Status: mapping.StatusPending},
	}))

	project := config.GitLabProject{Namespace: "grp", Name: "proj", Group: "grp"}
	repo := config.GitHubRepo{Owner: "acme", Name: "proj"}
	require.NoError(t, ApplyMilestones(context.Background(), glc, ghc, project, repo, mapFile, false))

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, mapping.StatusApplied, records[0].Status)
	require.Equal(t, 3, records[0].GitHubNumber)
}

func TestMilestoneAssignmentTargets(t *testing.T) {
	records := []*MilestoneRecord{
		{GitLabID: 1, Title: "created", GitHubNumber: 7, Status: mapping.StatusApplied},
		{GitLabID: 2, Title: "pending", Status: mapping.StatusPending},
		{GitLabID: 3, Title: "skipped", Status: mapping.StatusSkipped},
	}

	applied := milestoneAssignmentTargets(records, false)
	require.Len(t, applied, 1)
	require.Contains(t, applied, 1)

	// A dry run previews assignments for milestones it would have created.
	preview := milestoneAssignmentTargets(records, true)
	require.Len(t, preview, 2)
	require.Contains(t, preview, 1)
	require.Contains(t, preview, 2)
	require.NotContains(t, preview, 3)
}

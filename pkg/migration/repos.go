package migration

import (
	"context"
	"fmt"
	"regexp"
	"time"

	xgitlab "github.com/xanzy/go-gitlab"

	"github.com/solidify-labs/gl2gh/pkg/git"
	githubClient "github.com/solidify-labs/gl2gh/pkg/github"
	gitlabClient "github.com/solidify-labs/gl2gh/pkg/gitlab"
	"github.com/solidify-labs/gl2gh/pkg/logger"
)

const (
	// repoCreatePollInterval is how often the target repository is probed
	// after the create call, which completes asynchronously on the backend.
	repoCreatePollInterval = 5 * time.Second
	repoCreateTimeout      = 2 * time.Minute
)

// RepoMigrationOptions configure a batch repository migration run.
type RepoMigrationOptions struct {
	// Pattern filters GitLab projects by path, nil migrates everything
	// visible to the token.
	Pattern *regexp.Regexp
	Org     string
	// Team receives admin access on every migrated repository. Empty skips
	// the grant.
	Team          string
	Visibility    string // public, private or internal
	DefaultBranch string
	Topics        []string
	WorkingDir    string

	GitLabToken string
	GitHubToken string

	DryRun bool
}

// MigrateRepos migrates every matching GitLab project to a fresh GitHub
// repository: create, wait for the backend, mirror the git content, then
// apply settings, topics, team access and branch protection. A failing
// project marks its job failed and the run continues.
func MigrateRepos(ctx context.Context, ghc *githubClient.Client, glc *xgitlab.Client, opts RepoMigrationOptions) ([]*Job, error) {
	if opts.Team != "" {
		if _, err := ghc.GetTeam(ctx, opts.Org, opts.Team); err != nil {
			return nil, err
		}
	}

	projects, err := gitlabClient.ListProjects(glc, opts.Pattern)
	if err != nil {
		return nil, err
	}
	logger.Info("Found GitLab projects to migrate", "count", len(projects))

	var jobs []*Job
	for _, project := range projects {
		job := &Job{
			SourceProject: project.PathWithNamespace,
			TargetRepo:    fmt.Sprintf("%s/%s", opts.Org, project.Path),
			State:         JobQueued,
		}
		jobs = append(jobs, job)

		if err := ctx.Err(); err != nil {
			job.State = JobFailed
			job.Err = err
			return jobs, err
		}

		job.State = JobInProgress
		logger.Info("Migrating repository", "source", job.SourceProject, "target", job.TargetRepo)

		if opts.DryRun {
			logger.Info("Would migrate repository", "source", job.SourceProject, "target", job.TargetRepo)
			job.State = JobSucceeded
			continue
		}

		if err := migrateOneRepo(ctx, ghc, project, opts); err != nil {
			logger.Error("Repository migration failed", "source", job.SourceProject, "error", err)
			job.State = JobFailed
			job.Err = err
			continue
		}
		job.State = JobSucceeded
	}

	summarizeJobs(jobs)
	return jobs, nil
}

func migrateOneRepo(ctx context.Context, ghc *githubClient.Client, project *xgitlab.Project, opts RepoMigrationOptions) error {
	repoName := project.Path

	exists, err := ghc.RepositoryExists(ctx, opts.Org, repoName)
	if err != nil {
		return err
	}
	if exists {
		logger.Warn("GitHub repository already exists, reusing it", "repo", repoName)
	} else {
		err := ghc.CreateRepository(ctx, opts.Org, &githubClient.CreateRepositoryOptions{
			Name:        repoName,
			Description: project.Description,
			Visibility:  opts.Visibility,
		})
		if err != nil {
			return err
		}
		if err := waitForRepository(ctx, ghc, opts.Org, repoName); err != nil {
			return err
		}
	}

	githubCloneURL := fmt.Sprintf("https://github.com/%s/%s.git", opts.Org, repoName)
	mirror := git.NewMirror(opts.WorkingDir)
	if err := mirror.Run(project.HTTPURLToRepo, opts.GitLabToken, githubCloneURL, opts.GitHubToken); err != nil {
		return err
	}

	settings := &githubClient.RepositorySettings{
		Description:      fmt.Sprintf("%s (moved to GitHub on %s)", project.Description, time.Now().Format("2006-01-02")),
		AllowSquashMerge: true,
		AllowMergeCommit: false,
		AllowRebaseMerge: true,
		HasIssues:        false,
		HasProjects:      false,
		HasWiki:          false,
	}
	if err := ghc.UpdateRepositorySettings(ctx, opts.Org, repoName, settings); err != nil {
		return err
	}

	if len(opts.Topics) > 0 {
		if err := ghc.ReplaceTopics(ctx, opts.Org, repoName, opts.Topics); err != nil {
			return err
		}
	}

	if opts.Team != "" {
		if err := ghc.AddTeamRepository(ctx, opts.Org, opts.Team, opts.Org, repoName); err != nil {
			return err
		}
	}

	if opts.DefaultBranch != "" {
		if err := ghc.ProtectBranch(ctx, opts.Org, repoName, opts.DefaultBranch); err != nil {
			return err
		}
	}

	return nil
}

// waitForRepository polls until the created repository is visible, since
// repository creation completes asynchronously.
func waitForRepository(ctx context.Context, ghc *githubClient.Client, owner, repo string) error {
	pollCtx, cancel := context.WithTimeout(ctx, repoCreateTimeout)
	defer cancel()

	state, err := PollUntil(pollCtx, repoCreatePollInterval, func(ctx context.Context) (JobState, error) {
		exists, err := ghc.RepositoryExists(ctx, owner, repo)
		if err != nil {
			return JobFailed, err
		}
		if exists {
			return JobSucceeded, nil
		}
		return JobInProgress, nil
	})
	if err != nil {
		return fmt.Errorf("repository %s/%s did not appear: %w", owner, repo, err)
	}
	if state != JobSucceeded {
		return fmt.Errorf("repository %s/%s did not appear", owner, repo)
	}
	return nil
}

func summarizeJobs(jobs []*Job) {
	var succeeded, failed int
	for _, job := range jobs {
		switch job.State {
		case JobSucceeded:
			succeeded++
		case JobFailed:
			failed++
		}
	}
	logger.Info("Repository migration finished", "total", len(jobs), "succeeded", succeeded, "failed", failed)
}

// SetOrgRepositoryVisibility changes every repository of type fromType in
// the organization to the given visibility.
func SetOrgRepositoryVisibility(ctx context.Context, ghc *githubClient.Client, org, fromType, visibility string, dryRun bool) error {
	repos, err := ghc.ListOrgRepositoriesByType(ctx, org, fromType)
	if err != nil {
		return err
	}
	logger.Info("Found repositories to update", "org", org, "type", fromType, "count", len(repos))

	var failed int
	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return err
		}
		if dryRun {
			logger.Info("Would change visibility", "repo", repo.GetFullName(), "visibility", visibility)
			continue
		}
		if err := ghc.SetRepositoryVisibility(ctx, org, repo.GetName(), visibility); err != nil {
			logger.Error("Failed to change visibility", "repo", repo.GetFullName(), "error", err)
			failed++
			continue
		}
		logger.Info("Changed visibility", "repo", repo.GetFullName(), "visibility", visibility)
	}
	if failed > 0 {
		return fmt.Errorf("failed to change visibility of %d repositories", failed)
	}
	return nil
}

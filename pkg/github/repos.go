package github

import (
	"context"
	"fmt"
	"net/url"

	githublib "github.com/google/go-github/v70/github"
	"github.com/shurcooL/githubv4"

	"github.com/solidify-labs/gl2gh/pkg/logger"
)

// CreateRepositoryOptions contains the fields for creating a repository.
type CreateRepositoryOptions struct {
	Name        string
	Description string
	Visibility  string // public, private or internal
	HomepageURL *url.URL
}

// RepositoryExists checks whether the repository exists on GitHub.
func (client *Client) RepositoryExists(ctx context.Context, owner, repo string) (bool, error) {
	var exists bool
	err := RetryableOperation(ctx, func() error {
		_, resp, err := client.GetInner().Repositories.Get(ctx, owner, repo)
		if err != nil {
			if resp != nil && resp.StatusCode == 404 {
				exists = false
				return nil
			}
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to check GitHub repository: %w", err)
	}
	return exists, nil
}

// CreateRepository creates a repository under owner. The GraphQL API is used
// instead of REST because only it accepts visibility=internal.
func (client *Client) CreateRepository(ctx context.Context, owner string, opts *CreateRepositoryOptions) error {
	logger.Debug("Creating GitHub repository", "owner", owner, "repo", opts.Name, "visibility", opts.Visibility)

	ownerDetail, _, err := client.GetInner().Users.Get(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to get owner detail: %w", err)
	}

	visibility, err := repositoryVisibility(opts.Visibility)
	if err != nil {
		return err
	}

	var mutation struct {
		CreateRepository struct {
			Repository struct {
				ID    githubv4.ID
				Name  githubv4.String
				Owner struct {
					Login githubv4.String
				}
			}
		} `graphql:"createRepository(input: $input)"`
	}
	input := githubv4.CreateRepositoryInput{
		Name:           githubv4.String(opts.Name),
		Visibility:     visibility,
		OwnerID:        githubv4.NewID(ownerDetail.GetNodeID()),
		Description:    githubv4.NewString(githubv4.String(opts.Description)),
		HasWikiEnabled: githubv4.NewBoolean(false),
	}
	if opts.HomepageURL != nil {
		input.HomepageURL = githubv4.NewURI(githubv4.URI{URL: opts.HomepageURL})
	}
	err = RetryableOperation(ctx, func() error {
		return client.GetV4().Mutate(ctx, &mutation, input, nil)
	})
	if err != nil {
		logger.Error("Failed to create GitHub repository", "owner", owner, "repo", opts.Name, "error", err)
		return fmt.Errorf("failed to create GitHub repository: %w", err)
	}

	logger.Debug("Successfully created GitHub repository", "owner", owner, "repo", opts.Name)
	return nil
}

func repositoryVisibility(visibility string) (githubv4.RepositoryVisibility, error) {
	switch visibility {
	case "public":
		return githubv4.RepositoryVisibilityPublic, nil
	case "private":
		return githubv4.RepositoryVisibilityPrivate, nil
	case "internal", "":
		return githubv4.RepositoryVisibilityInternal, nil
	default:
		return "", fmt.Errorf("unsupported repository visibility %q", visibility)
	}
}

// RepositorySettings are the post-migration settings applied to a repository.
type RepositorySettings struct {
	Description      string
	AllowSquashMerge bool
	AllowMergeCommit bool
	AllowRebaseMerge bool
	HasIssues        bool
	HasProjects      bool
	HasWiki          bool
}

// UpdateRepositorySettings applies merge-method and feature settings.
func (client *Client) UpdateRepositorySettings(ctx context.Context, owner, repo string, settings *RepositorySettings) error {
	logger.Debug("Updating repository settings", "owner", owner, "repo", repo)

	err := RetryableOperation(ctx, func() error {
		_, _, err := client.GetInner().Repositories.Edit(ctx, owner, repo, &githublib.Repository{
			Description:      githublib.String(settings.Description),
			AllowSquashMerge: githublib.Bool(settings.AllowSquashMerge),
			AllowMergeCommit: githublib.Bool(settings.AllowMergeCommit),
			AllowRebaseMerge: githublib.Bool(settings.AllowRebaseMerge),
			HasIssues:        githublib.Bool(settings.HasIssues),
			HasProjects:      githublib.Bool(settings.HasProjects),
			HasWiki:          githublib.Bool(settings.HasWiki),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update repository settings: %w", err)
	}
	return nil
}

// SetRepositoryVisibility changes the visibility of an existing repository.
func (client *Client) SetRepositoryVisibility(ctx context.Context, owner, repo, visibility string) error {
	logger.Debug("Changing repository visibility", "owner", owner, "repo", repo, "visibility", visibility)

	err := RetryableOperation(ctx, func() error {
		_, _, err := client.GetInner().Repositories.Edit(ctx, owner, repo, &githublib.Repository{
			Visibility: githublib.String(visibility),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to change visibility of %s/%s: %w", owner, repo, err)
	}
	return nil
}

// ReplaceTopics replaces the repository topics.
func (client *Client) ReplaceTopics(ctx context.Context, owner, repo string, topics []string) error {
	logger.Debug("Replacing repository topics", "owner", owner, "repo", repo, "topics", topics)

	err := RetryableOperation(ctx, func() error {
		_, _, err := client.GetInner().Repositories.ReplaceAllTopics(ctx, owner, repo, topics)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to replace topics: %w", err)
	}
	return nil
}

// ProtectBranch enables a basic protection rule requiring one approving
// review on the given branch.
func (client *Client) ProtectBranch(ctx context.Context, owner, repo, branch string) error {
	logger.Debug("Protecting branch", "owner", owner, "repo", repo, "branch", branch)

	err := RetryableOperation(ctx, func() error {
		_, _, err := client.GetInner().Repositories.UpdateBranchProtection(ctx, owner, repo, branch, &githublib.ProtectionRequest{
			RequiredPullRequestReviews: &githublib.PullRequestReviewsEnforcementRequest{
				RequiredApprovingReviewCount: 1,
			},
			EnforceAdmins: false,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to protect branch %s: %w", branch, err)
	}
	return nil
}

// AddTeamRepository grants a team admin permission on the repository.
func (client *Client) AddTeamRepository(ctx context.Context, org, teamSlug, owner, repo string) error {
	logger.Debug("Granting team access", "org", org, "team", teamSlug, "repo", repo)

	err := RetryableOperation(ctx, func() error {
		_, err := client.GetInner().Teams.AddTeamRepoBySlug(ctx, org, teamSlug, owner, repo, &githublib.TeamAddTeamRepoOptions{
			Permission: "admin",
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to grant team %s access to %s/%s: %w", teamSlug, owner, repo, err)
	}
	return nil
}

// GetTeam resolves a team by slug. A missing team returns ErrNotFound.
func (client *Client) GetTeam(ctx context.Context, org, teamSlug string) (*githublib.Team, error) {
	var team *githublib.Team
	err := RetryableOperation(ctx, func() error {
		var err error
		team, _, err = client.GetInner().Teams.GetTeamBySlug(ctx, org, teamSlug)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("team %s in org %s: %w", teamSlug, org, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get team %s: %w", teamSlug, err)
	}
	return team, nil
}

// ListOrgRepositoriesByType lists the repositories of an organization with
// the given type filter (all, public, private, internal, ...).
func (client *Client) ListOrgRepositoriesByType(ctx context.Context, org, repoType string) ([]*githublib.Repository, error) {
	var all []*githublib.Repository
	opts := &githublib.RepositoryListByOrgOptions{
		Type:        repoType,
		ListOptions: githublib.ListOptions{PerPage: 100},
	}
	for {
		repos, resp, err := client.GetInner().Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories of org %s: %w", org, err)
		}
		all = append(all, repos...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

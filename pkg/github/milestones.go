package github

import (
	"context"
	"fmt"
	"time"

	githublib "github.com/google/go-github/v70/github"

	"github.com/solidify-labs/gl2gh/pkg/logger"
)

// MilestoneOptions contains the fields for creating a milestone.
type MilestoneOptions struct {
	Title       string
	Description string
	State       string // open or closed
	DueOn       *time.Time
}

// CreateMilestone creates a milestone and returns its number.
func (client *Client) CreateMilestone(ctx context.Context, owner, repo string, opts *MilestoneOptions) (int, error) {
	logger.Debug("Creating GitHub milestone",
		"owner", owner,
		"repo", repo,
		"title", opts.Title,
		"state", opts.State)

	milestone := &githublib.Milestone{
		Title:       githublib.String(opts.Title),
		Description: githublib.String(opts.Description),
		State:       githublib.String(opts.State),
	}
	if opts.DueOn != nil {
		milestone.DueOn = &githublib.Timestamp{Time: *opts.DueOn}
	}

	var created *githublib.Milestone
	err := RetryableOperation(ctx, func() error {
		var err error
		created, _, err = client.GetInner().Issues.CreateMilestone(ctx, owner, repo, milestone)
		return err
	})
	if err != nil {
		logger.Error("Failed to create GitHub milestone",
			"owner", owner,
			"repo", repo,
			"title", opts.Title,
			"error", err)
		return 0, fmt.Errorf("failed to create GitHub milestone: %w", err)
	}

	return created.GetNumber(), nil
}

// ListMilestones returns all milestones of the repository, any state.
func (client *Client) ListMilestones(ctx context.Context, owner, repo string) ([]*githublib.Milestone, error) {
	var all []*githublib.Milestone
	opts := &githublib.MilestoneListOptions{
		State:       "all",
		ListOptions: githublib.ListOptions{PerPage: 100},
	}
	for {
		milestones, resp, err := client.GetInner().Issues.ListMilestones(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list GitHub milestones: %w", err)
		}
		all = append(all, milestones...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// SetIssueMilestone assigns a milestone to an issue.
func (client *Client) SetIssueMilestone(ctx context.Context, owner, repo string, issueNumber, milestoneNumber int) error {
	logger.Debug("Assigning milestone to issue",
		"owner", owner,
		"repo", repo,
		"issueNumber", issueNumber,
		"milestoneNumber", milestoneNumber)

	err := RetryableOperation(ctx, func() error {
		_, _, err := client.GetInner().Issues.Edit(ctx, owner, repo, issueNumber, &githublib.IssueRequest{
			Milestone: githublib.Int(milestoneNumber),
		})
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("issue #%d: %w", issueNumber, ErrNotFound)
		}
		return fmt.Errorf("failed to assign milestone to issue #%d: %w", issueNumber, err)
	}
	return nil
}

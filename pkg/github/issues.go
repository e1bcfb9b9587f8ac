package github

import (
	"context"
	"fmt"
	"time"

	githublib "github.com/google/go-github/v70/github"

	"github.com/solidify-labs/gl2gh/pkg/logger"
	"github.com/solidify-labs/gl2gh/pkg/utils"
)

// GetIssue fetches one issue by number. A missing issue returns ErrNotFound.
func (client *Client) GetIssue(ctx context.Context, owner, repo string, issueNumber int) (*githublib.Issue, error) {
	var issue *githublib.Issue
	err := RetryableOperation(ctx, func() error {
		var err error
		issue, _, err = client.GetInner().Issues.Get(ctx, owner, repo, issueNumber)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("issue #%d: %w", issueNumber, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get issue #%d: %w", issueNumber, err)
	}
	return issue, nil
}

// ListIssues returns every issue of the repository including pull requests,
// any state. Callers distinguish pull requests via IsPullRequest.
func (client *Client) ListIssues(ctx context.Context, owner, repo string) ([]*githublib.Issue, error) {
	var all []*githublib.Issue
	opts := &githublib.IssueListByRepoOptions{
		State:       "all",
		ListOptions: githublib.ListOptions{PerPage: 100},
	}
	for {
		issues, resp, err := client.GetInner().Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list GitHub issues: %w", err)
		}
		all = append(all, issues...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// ListIssueComments returns every comment of an issue or pull request.
func (client *Client) ListIssueComments(ctx context.Context, owner, repo string, issueNumber int) ([]*githublib.IssueComment, error) {
	var all []*githublib.IssueComment
	opts := &githublib.IssueListCommentsOptions{
		ListOptions: githublib.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := client.GetInner().Issues.ListComments(ctx, owner, repo, issueNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments of issue #%d: %w", issueNumber, err)
		}
		all = append(all, comments...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// CreateIssueComment posts a comment on an issue and returns the comment ID.
// The body is truncated to the GitHub comment length limit.
func (client *Client) CreateIssueComment(ctx context.Context, owner, repo string, issueNumber int, body string) (int64, error) {
	truncatedBody := utils.TruncateText(body, utils.MaxCommentLength)

	var comment *githublib.IssueComment
	err := RetryableOperation(ctx, func() error {
		// https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api?apiVersion=2022-11-28#calculating-points-for-the-secondary-rate-limit
		time.Sleep(1 * time.Second) // In general, no more than 80 content-generating requests per minute
		c, resp, err := client.GetInner().Issues.CreateComment(ctx, owner, repo, issueNumber,
			&githublib.IssueComment{Body: &truncatedBody})
		comment = c
		if err != nil && resp != nil {
			err = fmt.Errorf("%w, x-github-request-id: %s", err, resp.Header.Get("x-github-request-id"))
		}
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("issue #%d: %w", issueNumber, ErrNotFound)
		}
		return 0, fmt.Errorf("failed to create comment on issue #%d: %w", issueNumber, err)
	}
	return comment.GetID(), nil
}

// EditIssueBody replaces the body of an issue or pull request.
func (client *Client) EditIssueBody(ctx context.Context, owner, repo string, issueNumber int, body string) error {
	logger.Debug("Editing issue body", "owner", owner, "repo", repo, "issueNumber", issueNumber)

	err := RetryableOperation(ctx, func() error {
		time.Sleep(1 * time.Second)
		_, _, err := client.GetInner().Issues.Edit(ctx, owner, repo, issueNumber, &githublib.IssueRequest{
			Body: githublib.String(body),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to edit issue #%d: %w", issueNumber, err)
	}
	return nil
}

// EditIssueComment replaces the body of an issue comment.
func (client *Client) EditIssueComment(ctx context.Context, owner, repo string, commentID int64, body string) error {
	logger.Debug("Editing issue comment", "owner", owner, "repo", repo, "commentID", commentID)

	err := RetryableOperation(ctx, func() error {
		time.Sleep(1 * time.Second)
		_, _, err := client.GetInner().Issues.EditComment(ctx, owner, repo, commentID, &githublib.IssueComment{
			Body: githublib.String(body),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to edit comment %d: %w", commentID, err)
	}
	return nil
}

// AddIssueDependency marks blockedIssue as blocked by the issue with the
// given global ID. The dependency endpoint is not covered by the client
// library, so the request is issued directly.
func (client *Client) AddIssueDependency(ctx context.Context, owner, repo string, blockedIssue int, blockingIssueID int64) error {
	logger.Debug("Adding issue dependency",
		"owner", owner,
		"repo", repo,
		"blockedIssue", blockedIssue,
		"blockingIssueID", blockingIssueID)

	err := RetryableOperation(ctx, func() error {
		payload := &struct {
			IssueID int64 `json:"issue_id"`
		}{
			IssueID: blockingIssueID,
		}
		u := fmt.Sprintf("repos/%v/%v/issues/%d/dependencies/blocked_by", owner, repo, blockedIssue)
		req, err := client.GetInner().NewRequest("POST", u, payload)
		if err != nil {
			return err
		}
		_, err = client.GetInner().Do(ctx, req, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add dependency to issue #%d: %w", blockedIssue, err)
	}
	return nil
}

package github

import (
	"context"
	"fmt"

	githublib "github.com/google/go-github/v70/github"
)

// ListOrgMembers returns every member of the organization.
func (client *Client) ListOrgMembers(ctx context.Context, org string) ([]*githublib.User, error) {
	var all []*githublib.User
	opts := &githublib.ListMembersOptions{
		ListOptions: githublib.ListOptions{PerPage: 100},
	}
	for {
		members, resp, err := client.GetInner().Organizations.ListMembers(ctx, org, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list members of org %s: %w", org, err)
		}
		all = append(all, members...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// GetUser fetches one user profile. Member listings carry only the login, so
// name and email need a profile lookup per user.
func (client *Client) GetUser(ctx context.Context, login string) (*githublib.User, error) {
	var user *githublib.User
	err := RetryableOperation(ctx, func() error {
		var err error
		user, _, err = client.GetInner().Users.Get(ctx, login)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", login, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", login, err)
	}
	return user, nil
}

// ListOrgTeams returns every team of the organization.
func (client *Client) ListOrgTeams(ctx context.Context, org string) ([]*githublib.Team, error) {
	var all []*githublib.Team
	opts := &githublib.ListOptions{PerPage: 100}
	for {
		teams, resp, err := client.GetInner().Teams.ListTeams(ctx, org, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list teams of org %s: %w", org, err)
		}
		all = append(all, teams...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// ListTeamMembers returns every member of a team.
func (client *Client) ListTeamMembers(ctx context.Context, org, teamSlug string) ([]*githublib.User, error) {
	var all []*githublib.User
	opts := &githublib.TeamListTeamMembersOptions{
		ListOptions: githublib.ListOptions{PerPage: 100},
	}
	for {
		members, resp, err := client.GetInner().Teams.ListTeamMembersBySlug(ctx, org, teamSlug, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list members of team %s: %w", teamSlug, err)
		}
		all = append(all, members...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

package gitlab

import (
	"fmt"
	"regexp"

	"github.com/xanzy/go-gitlab"
)

// ListProjects retrieves the projects visible to the token, filtered by an
// optional regular expression on the project path.
func ListProjects(client *gitlab.Client, pattern *regexp.Regexp) ([]*gitlab.Project, error) {
	var all []*gitlab.Project
	opts := &gitlab.ListProjectsOptions{
		Membership:  gitlab.Bool(true),
		Archived:    gitlab.Bool(false),
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	for {
		projects, resp, err := client.Projects.ListProjects(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list GitLab projects: %w", err)
		}
		for _, project := range projects {
			if pattern != nil && !pattern.MatchString(project.PathWithNamespace) {
				continue
			}
			all = append(all, project)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// ListGroups retrieves every group visible to the token.
func ListGroups(client *gitlab.Client) ([]*gitlab.Group, error) {
	var all []*gitlab.Group
	opts := &gitlab.ListGroupsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	for {
		groups, resp, err := client.Groups.ListGroups(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list GitLab groups: %w", err)
		}
		all = append(all, groups...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

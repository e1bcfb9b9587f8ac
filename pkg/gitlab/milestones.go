package gitlab

import (
	"fmt"
	"time"

	"github.com/xanzy/go-gitlab"
)

// Milestone is a project or group milestone flattened into the fields the
// mapping workflow needs. Source records where it came from, because group
// milestones can also be attached to project issues.
type Milestone struct {
	ID          int
	IID         int
	Title       string
	Description string
	State       string // active or closed
	DueDate     string // date only, YYYY-MM-DD, empty when unset
	WebURL      string
	Source      string // project or group
	SourceName  string
}

// GetProjectMilestones retrieves every milestone of the project, any state.
func GetProjectMilestones(client *gitlab.Client, projectID string) ([]Milestone, error) {
	var all []Milestone
	opts := &gitlab.ListMilestonesOptions{
		State:       gitlab.String("all"),
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	for {
		milestones, resp, err := client.Milestones.ListMilestones(projectID, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list GitLab project milestones: %w", err)
		}
		for _, m := range milestones {
			all = append(all, Milestone{
				ID:          m.ID,
				IID:         m.IID,
				Title:       m.Title,
				Description: m.Description,
				State:       m.State,
				DueDate:     isoDate(m.DueDate),
				WebURL:      m.WebURL,
				Source:      "project",
				SourceName:  projectID,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// GetGroupMilestones retrieves every milestone of the group, any state.
func GetGroupMilestones(client *gitlab.Client, group string) ([]Milestone, error) {
	var all []Milestone
	opts := &gitlab.ListGroupMilestonesOptions{
		State:       gitlab.String("all"),
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	for {
		milestones, resp, err := client.GroupMilestones.ListGroupMilestones(group, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list GitLab group milestones: %w", err)
		}
		for _, m := range milestones {
			all = append(all, Milestone{
				ID:          m.ID,
				IID:         m.IID,
				Title:       m.Title,
				Description: m.Description,
				State:       m.State,
				DueDate:     isoDate(m.DueDate),
				WebURL:      m.WebURL,
				Source:      "group",
				SourceName:  group,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

func isoDate(t *gitlab.ISOTime) string {
	if t == nil {
		return ""
	}
	return time.Time(*t).Format("2006-01-02")
}

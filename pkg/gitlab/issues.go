package gitlab

import (
	"fmt"

	"github.com/xanzy/go-gitlab"
)

// GetIssues retrieves the project issues with the given state (opened or
// closed). The issues API caps state filters to one state per call, so
// callers wanting everything fetch both.
func GetIssues(client *gitlab.Client, projectID, state string) ([]*gitlab.Issue, error) {
	var all []*gitlab.Issue
	opts := &gitlab.ListProjectIssuesOptions{
		State:       gitlab.String(state),
		Scope:       gitlab.String("all"),
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	for {
		issues, resp, err := client.Issues.ListProjectIssues(projectID, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list GitLab %s issues: %w", state, err)
		}
		all = append(all, issues...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// GetAllIssues retrieves opened and closed issues of the project.
func GetAllIssues(client *gitlab.Client, projectID string) ([]*gitlab.Issue, error) {
	opened, err := GetIssues(client, projectID, "opened")
	if err != nil {
		return nil, err
	}
	closed, err := GetIssues(client, projectID, "closed")
	if err != nil {
		return nil, err
	}
	return append(opened, closed...), nil
}

// IssueNote is a note of an issue together with its discussion position.
// ParentID is the note ID of the discussion root, zero for root notes.
type IssueNote struct {
	Note         *gitlab.Note
	ParentID     int
	DiscussionID string
}

// GetIssueNotes retrieves the notes of an issue grouped by discussion so
// replies keep a reference to their parent note.
func GetIssueNotes(client *gitlab.Client, projectID string, issueIID int) ([]IssueNote, error) {
	var all []IssueNote
	opts := &gitlab.ListIssueDiscussionsOptions{PerPage: 100}
	for {
		discussions, resp, err := client.Discussions.ListIssueDiscussions(projectID, issueIID, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list discussions of issue #%d: %w", issueIID, err)
		}
		for _, discussion := range discussions {
			var rootID int
			for i, note := range discussion.Notes {
				parentID := 0
				if i > 0 {
					parentID = rootID
				} else {
					rootID = note.ID
				}
				all = append(all, IssueNote{
					Note:         note,
					ParentID:     parentID,
					DiscussionID: discussion.ID,
				})
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

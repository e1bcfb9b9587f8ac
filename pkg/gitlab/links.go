package gitlab

import (
	"fmt"

	"github.com/xanzy/go-gitlab"
)

// IssueLink is one directed relationship between two issues as seen from the
// source issue.
type IssueLink struct {
	SourceIID       int
	TargetIID       int
	TargetProjectID int
	TargetTitle     string
	TargetWebURL    string
	LinkType        string // relates_to, blocks or is_blocked_by
}

// GetIssueLinks retrieves the relationships of one issue.
func GetIssueLinks(client *gitlab.Client, projectID string, issueIID int) ([]IssueLink, error) {
	relations, _, err := client.IssueLinks.ListIssueRelations(projectID, issueIID)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations of issue #%d: %w", issueIID, err)
	}

	links := make([]IssueLink, 0, len(relations))
	for _, relation := range relations {
		linkType := relation.LinkType
		if linkType == "" {
			linkType = "relates_to"
		}
		links = append(links, IssueLink{
			SourceIID:       issueIID,
			TargetIID:       relation.IID,
			TargetProjectID: relation.ProjectID,
			TargetTitle:     relation.Title,
			TargetWebURL:    relation.WebURL,
			LinkType:        linkType,
		})
	}
	return links, nil
}

package migration

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	githublib "github.com/google/go-github/v70/github"
	"github.com/xanzy/go-gitlab"

	"github.com/solidify-labs/gl2gh/pkg/config"
	githubClient "github.com/solidify-labs/gl2gh/pkg/github"
	gitlabClient "github.com/solidify-labs/gl2gh/pkg/gitlab"
	"github.com/solidify-labs/gl2gh/pkg/logger"
	"github.com/solidify-labs/gl2gh/pkg/mapping"
)

// GitHub-side actions a relationship maps to. blocks / is_blocked_by use the
// issue dependency API; everything else falls back to cross-reference
// comments on both issues.
const (
	relationshipActionDependency = "dependency"
	relationshipActionComment    = "comment"
)

// RelationshipRecord correlates one GitLab issue link with the GitHub action
// that reproduces it.
type RelationshipRecord struct {
	SourceIID       int
	TargetIID       int
	LinkType        string
	GitHubAction    string
	TargetProjectID int

	GitLabSourceURL string
	GitLabTargetURL string
	GitHubSourceURL string
	GitHubTargetURL string
	TargetURLValid  bool

	Status mapping.Status
}

func (r *RelationshipRecord) GetStatus() mapping.Status  { return r.Status }
func (r *RelationshipRecord) SetStatus(s mapping.Status) { r.Status = s }

type relationshipCodec struct{}

func (relationshipCodec) Header() []string {
	return []string{
		"gitlab_source_issue_iid", "gitlab_target_issue_iid", "gitlab_relationship_type",
		"github_relationship_action", "target_project_id",
		"gitlab_source_url", "gitlab_target_url",
		"github_source_url", "github_target_url",
		"target_url_valid", "status",
	}
}

func (relationshipCodec) Encode(r *RelationshipRecord) []string {
	return []string{
		strconv.Itoa(r.SourceIID), strconv.Itoa(r.TargetIID), r.LinkType,
		r.GitHubAction, encodeInt(r.TargetProjectID),
		r.GitLabSourceURL, r.GitLabTargetURL,
		r.GitHubSourceURL, r.GitHubTargetURL,
		strconv.FormatBool(r.TargetURLValid), string(r.Status),
	}
}

func (relationshipCodec) Decode(row []string) (*RelationshipRecord, error) {
	sourceIID, err := strconv.Atoi(row[0])
	if err != nil {
		return nil, fmt.Errorf("invalid gitlab_source_issue_iid %q", row[0])
	}
	targetIID, err := strconv.Atoi(row[1])
	if err != nil {
		return nil, fmt.Errorf("invalid gitlab_target_issue_iid %q", row[1])
	}
	return &RelationshipRecord{
		SourceIID:       sourceIID,
		TargetIID:       targetIID,
		LinkType:        row[2],
		GitHubAction:    row[3],
		TargetProjectID: decodeInt(row[4]),
		GitLabSourceURL: row[5],
		GitLabTargetURL: row[6],
		GitHubSourceURL: row[7],
		GitHubTargetURL: row[8],
		TargetURLValid:  row[9] == "true",
		Status:          mapping.ParseStatus(row[10]),
	}, nil
}

// RelationshipStore opens the relationship mapping file at path.
func RelationshipStore(path string) *mapping.Store[*RelationshipRecord] {
	return mapping.NewStore[*RelationshipRecord](path, relationshipCodec{})
}

// RelationshipMapOptions control the create-map pass.
type RelationshipMapOptions struct {
	// SkipGitHubValidation leaves target_url_valid false instead of probing
	// GitHub for every target issue, useful without GitHub credentials.
	SkipGitHubValidation bool
}

// CreateRelationshipMap enumerates the issue links of every project issue
// and writes one pending record per link. Links are symmetric in GitLab, so
// each pair is recorded once, from the side GitLab reports first.
func CreateRelationshipMap(ctx context.Context, glc *gitlab.Client, ghc *githubClient.Client, project config.GitLabProject, repo config.GitHubRepo, outputFile string, opts RelationshipMapOptions) error {
	issues, err := gitlabClient.GetAllIssues(glc, project.Path())
	if err != nil {
		return err
	}
	logger.Info("Fetched GitLab issues", "count", len(issues))

	githubBase := fmt.Sprintf("https://github.com/%s/%s", repo.Owner, repo.Name)

	seen := make(map[string]bool)
	var records []*RelationshipRecord
	var failedIssues int
	for _, issue := range issues {
		links, err := gitlabClient.GetIssueLinks(glc, project.Path(), issue.IID)
		if err != nil {
			logger.Error("Failed to fetch links, skipping issue", "issueIID", issue.IID, "error", err)
			failedIssues++
			continue
		}
		for _, link := range links {
			if seen[relationshipKey(link)] {
				continue
			}
			seen[relationshipKey(link)] = true

			records = append(records, &RelationshipRecord{
				SourceIID:       link.SourceIID,
				TargetIID:       link.TargetIID,
				LinkType:        link.LinkType,
				GitHubAction:    relationshipAction(link.LinkType),
				TargetProjectID: link.TargetProjectID,
				GitLabSourceURL: issue.WebURL,
				GitLabTargetURL: link.TargetWebURL,
				GitHubSourceURL: fmt.Sprintf("%s/issues/%d", githubBase, link.SourceIID),
				GitHubTargetURL: fmt.Sprintf("%s/issues/%d", githubBase, link.TargetIID),
				Status:          mapping.StatusPending,
			})
		}
	}

	if !opts.SkipGitHubValidation {
		for _, record := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := ghc.GetIssue(ctx, repo.Owner, repo.Name, record.TargetIID)
			record.TargetURLValid = err == nil
		}
	}

	store := RelationshipStore(outputFile)
	if err := store.Save(records); err != nil {
		return err
	}
	logger.Info("Saved relationship map", "file", outputFile, "relationships", len(records), "failedIssues", failedIssues)
	return nil
}

// relationshipKey canonicalizes a link so the same pair reported from both
// sides is recorded once. Directional types are flipped onto blocks.
func relationshipKey(link gitlabClient.IssueLink) string {
	source, target, linkType := link.SourceIID, link.TargetIID, link.LinkType
	if linkType == "is_blocked_by" {
		source, target, linkType = target, source, "blocks"
	}
	if linkType != "blocks" && source > target {
		source, target = target, source
	}
	return fmt.Sprintf("%d:%d:%s:%d", source, target, linkType, link.TargetProjectID)
}

func relationshipAction(linkType string) string {
	switch linkType {
	case "blocks", "is_blocked_by":
		return relationshipActionDependency
	default:
		return relationshipActionComment
	}
}

// ApplyRelationships replays the mapped links onto GitHub.
func ApplyRelationships(ctx context.Context, ghc *githubClient.Client, repo config.GitHubRepo, inputFile string, dryRun bool) error {
	store := RelationshipStore(inputFile)
	records, err := store.Load()
	if err != nil {
		return err
	}

	runner := &mapping.Runner[*RelationshipRecord]{Store: store, DryRun: dryRun}
	summary, err := runner.Apply(ctx, records, func(ctx context.Context, record *RelationshipRecord, dryRun bool) error {
		switch record.GitHubAction {
		case relationshipActionDependency:
			return applyDependency(ctx, ghc, repo, record, dryRun)
		default:
			return applyCrossReference(ctx, ghc, repo, record, dryRun)
		}
	})
	if err != nil {
		return err
	}

	logger.Info("Relationship apply pass finished", "summary", summary.String(), "dryRun", dryRun)
	return nil
}

// applyDependency wires blocks / is_blocked_by links through the issue
// dependency API. Dependencies are issue-to-issue only.
func applyDependency(ctx context.Context, ghc *githubClient.Client, repo config.GitHubRepo, record *RelationshipRecord, dryRun bool) error {
	blocked, blocking := record.SourceIID, record.TargetIID
	if record.LinkType == "blocks" {
		blocked, blocking = record.TargetIID, record.SourceIID
	}

	blockedIssue, err := lookupRelationshipIssue(ctx, ghc, repo, blocked)
	if err != nil {
		return err
	}
	blockingIssue, err := lookupRelationshipIssue(ctx, ghc, repo, blocking)
	if err != nil {
		return err
	}
	if blockedIssue.IsPullRequest() || blockingIssue.IsPullRequest() {
		return fmt.Errorf("dependencies can only link issues, #%d or #%d is a pull request", blocked, blocking)
	}

	if dryRun {
		logger.Info("Would add dependency", "blocked", blocked, "blockedBy", blocking)
		return nil
	}
	return ghc.AddIssueDependency(ctx, repo.Owner, repo.Name, blocked, blockingIssue.GetID())
}

// applyCrossReference posts reference comments on both issues for link types
// the dependency API does not cover.
func applyCrossReference(ctx context.Context, ghc *githubClient.Client, repo config.GitHubRepo, record *RelationshipRecord, dryRun bool) error {
	if _, err := lookupRelationshipIssue(ctx, ghc, repo, record.SourceIID); err != nil {
		return err
	}
	if _, err := lookupRelationshipIssue(ctx, ghc, repo, record.TargetIID); err != nil {
		return err
	}

	if dryRun {
		logger.Info("Would cross-reference issues", "source", record.SourceIID, "target", record.TargetIID, "type", record.LinkType)
		return nil
	}

	sourceBody := fmt.Sprintf("Related to #%d (GitLab relationship: %s)", record.TargetIID, record.LinkType)
	if _, err := ghc.CreateIssueComment(ctx, repo.Owner, repo.Name, record.SourceIID, sourceBody); err != nil {
		return err
	}
	targetBody := fmt.Sprintf("Related to #%d (GitLab relationship: %s)", record.SourceIID, record.LinkType)
	if _, err := ghc.CreateIssueComment(ctx, repo.Owner, repo.Name, record.TargetIID, targetBody); err != nil {
		return err
	}
	return nil
}

func lookupRelationshipIssue(ctx context.Context, ghc *githubClient.Client, repo config.GitHubRepo, number int) (*githublib.Issue, error) {
	issue, err := ghc.GetIssue(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		if errors.Is(err, githubClient.ErrNotFound) {
			return nil, fmt.Errorf("%w: no GitHub issue #%d", mapping.ErrSkip, number)
		}
		return nil, err
	}
	return issue, nil
}

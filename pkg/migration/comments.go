package migration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/xanzy/go-gitlab"

	"github.com/solidify-labs/gl2gh/pkg/config"
	githubClient "github.com/solidify-labs/gl2gh/pkg/github"
	gitlabClient "github.com/solidify-labs/gl2gh/pkg/gitlab"
	"github.com/solidify-labs/gl2gh/pkg/logger"
	"github.com/solidify-labs/gl2gh/pkg/mapping"
	"github.com/solidify-labs/gl2gh/pkg/utils"
)

// CommentRecord correlates a GitLab issue note with the GitHub issue comment
// created from it. ParentCommentID preserves the discussion nesting GitLab
// has and GitHub lacks.
type CommentRecord struct {
	GitLabIssueID   int
	GitLabIssueIID  int
	GitLabIssueName string

	CommentID       int
	ParentCommentID int
	Body            string
	Author          string
	CreatedAt       string
	UpdatedAt       string
	System          bool

	GitHubIssueNumber int
	GitHubCommentID   int64

	Status mapping.Status
}

func (r *CommentRecord) GetStatus() mapping.Status  { return r.Status }
func (r *CommentRecord) SetStatus(s mapping.Status) { r.Status = s }

type commentCodec struct{}

func (commentCodec) Header() []string {
	return []string{
		"gitlab_issue_id", "gitlab_issue_iid", "gitlab_issue_title",
		"gitlab_comment_id", "gitlab_parent_comment_id", "gitlab_comment_body",
		"gitlab_comment_author", "gitlab_comment_created_at", "gitlab_comment_updated_at",
		"gitlab_comment_system", "github_issue_number", "github_comment_id",
		"status",
	}
}

func (commentCodec) Encode(r *CommentRecord) []string {
	return []string{
		strconv.Itoa(r.GitLabIssueID), strconv.Itoa(r.GitLabIssueIID), r.GitLabIssueName,
		strconv.Itoa(r.CommentID), encodeInt(r.ParentCommentID), r.Body,
		r.Author, r.CreatedAt, r.UpdatedAt,
		strconv.FormatBool(r.System), encodeInt(r.GitHubIssueNumber), encodeInt64(r.GitHubCommentID),
		string(r.Status),
	}
}

func (commentCodec) Decode(row []string) (*CommentRecord, error) {
	commentID, err := strconv.Atoi(row[3])
	if err != nil {
		return nil, fmt.Errorf("invalid gitlab_comment_id %q", row[3])
	}
	return &CommentRecord{
		GitLabIssueID:     decodeInt(row[0]),
		GitLabIssueIID:    decodeInt(row[1]),
		GitLabIssueName:   row[2],
		CommentID:         commentID,
		ParentCommentID:   decodeInt(row[4]),
		Body:              row[5],
		Author:            row[6],
		CreatedAt:         row[7],
		UpdatedAt:         row[8],
		System:            row[9] == "true",
		GitHubIssueNumber: decodeInt(row[10]),
		GitHubCommentID:   decodeInt64(row[11]),
		Status:            mapping.ParseStatus(row[12]),
	}, nil
}

func encodeInt64(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func decodeInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

// CommentStore opens the comment mapping file at path.
func CommentStore(path string) *mapping.Store[*CommentRecord] {
	return mapping.NewStore[*CommentRecord](path, commentCodec{})
}

// CreateCommentMap enumerates the notes of every project issue, keeping
// discussion nesting, and writes one pending record per non-system note.
// Note enumeration failures on a single issue are logged and the remaining
// issues continue.
func CreateCommentMap(glc *gitlab.Client, project config.GitLabProject, outputFile string) error {
	issues, err := gitlabClient.GetAllIssues(glc, project.Path())
	if err != nil {
		return err
	}
	logger.Info("Fetched GitLab issues", "count", len(issues))

	var records []*CommentRecord
	var failedIssues int
	for _, issue := range issues {
		notes, err := gitlabClient.GetIssueNotes(glc, project.Path(), issue.IID)
		if err != nil {
			logger.Error("Failed to fetch notes, skipping issue", "issueIID", issue.IID, "error", err)
			failedIssues++
			continue
		}
		for _, note := range notes {
			if note.Note.System {
				continue
			}
			record := &CommentRecord{
				GitLabIssueID:   issue.ID,
				GitLabIssueIID:  issue.IID,
				GitLabIssueName: issue.Title,
				CommentID:       note.Note.ID,
				ParentCommentID: note.ParentID,
				Body:            note.Note.Body,
				Author:          note.Note.Author.Username,
				Status:          mapping.StatusPending,
			}
			if note.Note.CreatedAt != nil {
				record.CreatedAt = note.Note.CreatedAt.Format(time.RFC3339)
			}
			if note.Note.UpdatedAt != nil {
				record.UpdatedAt = note.Note.UpdatedAt.Format(time.RFC3339)
			}
			records = append(records, record)
		}
	}

	store := CommentStore(outputFile)
	if err := store.Save(records); err != nil {
		return err
	}
	logger.Info("Saved comment map", "file", outputFile, "comments", len(records), "failedIssues", failedIssues)
	return nil
}

// ApplyCommentNesting replays the mapped notes as GitHub issue comments.
// GitHub issue comments are flat, so a reply is rendered with a quote block
// naming the parent author and timestamp.
func ApplyCommentNesting(ctx context.Context, ghc *githubClient.Client, repo config.GitHubRepo, inputFile string, dryRun bool) error {
	store := CommentStore(inputFile)
	records, err := store.Load()
	if err != nil {
		return err
	}

	byCommentID := make(map[int]*CommentRecord, len(records))
	for _, record := range records {
		byCommentID[record.CommentID] = record
	}

	runner := &mapping.Runner[*CommentRecord]{Store: store, DryRun: dryRun}
	summary, err := runner.Apply(ctx, records, func(ctx context.Context, record *CommentRecord, dryRun bool) error {
		body := formatMigratedComment(record, byCommentID[record.ParentCommentID])
		if dryRun {
			logger.Info("Would post comment", "issue", record.GitLabIssueIID, "author", record.Author)
			return nil
		}
		commentID, err := ghc.CreateIssueComment(ctx, repo.Owner, repo.Name, record.GitLabIssueIID, body)
		if err != nil {
			if errors.Is(err, githubClient.ErrNotFound) {
				return fmt.Errorf("%w: no GitHub issue #%d", mapping.ErrSkip, record.GitLabIssueIID)
			}
			return err
		}
		record.GitHubIssueNumber = record.GitLabIssueIID
		record.GitHubCommentID = commentID
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Comment apply pass finished", "summary", summary.String(), "dryRun", dryRun)
	return nil
}

// formatMigratedComment renders a note body with its GitLab attribution. A
// reply carries the parent comment folded into a collapsible block so the
// thread reads in context without inflating the visible comment.
func formatMigratedComment(record, parent *CommentRecord) string {
	header := fmt.Sprintf("**%s** commented on %s (migrated from GitLab):", record.Author, record.CreatedAt)
	body := utils.TruncateText(record.Body, utils.MaxCommentLength)
	if parent != nil {
		quote := utils.WrapComment(
			fmt.Sprintf("In reply to **%s**'s comment from %s", parent.Author, parent.CreatedAt),
			parent.Body)
		return fmt.Sprintf("%s\n\n%s\n\n%s", header, quote, body)
	}
	return fmt.Sprintf("%s\n\n%s", header, body)
}

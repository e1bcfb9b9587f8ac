package migration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	githublib "github.com/google/go-github/v70/github"
	"github.com/xanzy/go-gitlab"

	"github.com/solidify-labs/gl2gh/pkg/config"
	githubClient "github.com/solidify-labs/gl2gh/pkg/github"
	gitlabClient "github.com/solidify-labs/gl2gh/pkg/gitlab"
	"github.com/solidify-labs/gl2gh/pkg/logger"
	"github.com/solidify-labs/gl2gh/pkg/mapping"
)

// MilestoneRecord correlates a GitLab milestone with the GitHub milestone
// created from it. GitHub fields stay empty until the apply pass.
type MilestoneRecord struct {
	GitLabID    int
	GitLabIID   int
	Title       string
	Description string
	State       string // GitLab state: active or closed
	DueDate     string // date only

	GitHubNumber int
	GitHubTitle  string
	GitHubState  string
	GitHubDueOn  string

	Status     mapping.Status
	Source     string // project or group
	SourceName string
	WebURL     string
}

func (r *MilestoneRecord) GetStatus() mapping.Status  { return r.Status }
func (r *MilestoneRecord) SetStatus(s mapping.Status) { r.Status = s }

type milestoneCodec struct{}

func (milestoneCodec) Header() []string {
	return []string{
		"gitlab_id", "gitlab_iid", "gitlab_title", "gitlab_description",
		"gitlab_state", "gitlab_due_date", "github_number", "github_title",
		"github_state", "github_due_on", "status", "gitlab_source",
		"gitlab_source_name", "gitlab_web_url",
	}
}

func (milestoneCodec) Encode(r *MilestoneRecord) []string {
	return []string{
		strconv.Itoa(r.GitLabID), strconv.Itoa(r.GitLabIID), r.Title, r.Description,
		r.State, r.DueDate, encodeInt(r.GitHubNumber), r.GitHubTitle,
		r.GitHubState, r.GitHubDueOn, string(r.Status), r.Source,
		r.SourceName, r.WebURL,
	}
}

func (milestoneCodec) Decode(row []string) (*MilestoneRecord, error) {
	gitlabID, err := strconv.Atoi(row[0])
	if err != nil {
		return nil, fmt.Errorf("invalid gitlab_id %q", row[0])
	}
	return &MilestoneRecord{
		GitLabID:     gitlabID,
		GitLabIID:    decodeInt(row[1]),
		Title:        row[2],
		Description:  row[3],
		State:        row[4],
		DueDate:      row[5],
		GitHubNumber: decodeInt(row[6]),
		GitHubTitle:  row[7],
		GitHubState:  row[8],
		GitHubDueOn:  row[9],
		Status:       mapping.ParseStatus(row[10]),
		Source:       row[11],
		SourceName:   row[12],
		WebURL:       row[13],
	}, nil
}

func encodeInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func decodeInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

// MilestoneStore opens the milestone mapping file at path.
func MilestoneStore(path string) *mapping.Store[*MilestoneRecord] {
	return mapping.NewStore[*MilestoneRecord](path, milestoneCodec{})
}

// CreateMilestoneMap enumerates the project and group milestones and writes
// one pending record per milestone. The target system is not contacted.
func CreateMilestoneMap(glc *gitlab.Client, project config.GitLabProject, outputFile string) error {
	logger.Info("Fetching project milestones...", "project", project.Path())
	var milestones []gitlabClient.Milestone

	projectMilestones, err := gitlabClient.GetProjectMilestones(glc, project.Path())
	if err != nil {
		return err
	}
	milestones = append(milestones, projectMilestones...)
	logger.Info("Found project milestones", "count", len(projectMilestones))

	groupMilestones, err := gitlabClient.GetGroupMilestones(glc, project.Group)
	if err != nil {
		// Group milestones need group access; a project token may lack it.
		logger.Warn("Failed to fetch group milestones, continuing with project milestones only", "group", project.Group, "error", err)
	} else {
		milestones = append(milestones, groupMilestones...)
		logger.Info("Found group milestones", "count", len(groupMilestones))
	}

	records := make([]*MilestoneRecord, 0, len(milestones))
	for _, m := range milestones {
		records = append(records, &MilestoneRecord{
			GitLabID:    m.ID,
			GitLabIID:   m.IID,
			Title:       m.Title,
			Description: m.Description,
			State:       m.State,
			DueDate:     m.DueDate,
			Status:      mapping.StatusPending,
			Source:      m.Source,
			SourceName:  m.SourceName,
			WebURL:      m.WebURL,
		})
	}

	store := MilestoneStore(outputFile)
	if err := store.Save(records); err != nil {
		return err
	}
	logger.Info("Saved milestone map", "file", outputFile, "count", len(records))
	return nil
}

// ApplyMilestones creates the mapped milestones on GitHub and then assigns
// them to the GitHub issues matching GitLab issues by iid.
func ApplyMilestones(ctx context.Context, glc *gitlab.Client, ghc *githubClient.Client, project config.GitLabProject, repo config.GitHubRepo, inputFile string, dryRun bool) error {
	store := MilestoneStore(inputFile)
	records, err := store.Load()
	if err != nil {
		return err
	}

	existing, err := ghc.ListMilestones(ctx, repo.Owner, repo.Name)
	if err != nil {
		return err
	}
	existingByTitle := milestoneNumbersByTitle(existing)

	runner := &mapping.Runner[*MilestoneRecord]{Store: store, DryRun: dryRun}
	summary, err := runner.Apply(ctx, records, func(ctx context.Context, record *MilestoneRecord, dryRun bool) error {
		state := milestoneState(record.State)
		dueOn, dueOnText, err := milestoneDueOn(record.DueDate)
		if err != nil {
			return err
		}
		if number, ok := existingByTitle[record.Title]; ok {
			logger.Info("GitHub milestone already exists, reusing it", "title", record.Title, "number", number)
			record.GitHubNumber = number
			record.GitHubTitle = record.Title
			record.GitHubState = state
			record.GitHubDueOn = dueOnText
			return nil
		}
		if dryRun {
			logger.Info("Would create GitHub milestone", "title", record.Title, "state", state, "dueOn", dueOnText)
			return nil
		}
		number, err := ghc.CreateMilestone(ctx, repo.Owner, repo.Name, &githubClient.MilestoneOptions{
			Title:       record.Title,
			Description: record.Description,
			State:       state,
			DueOn:       dueOn,
		})
		if err != nil {
			return err
		}
		record.GitHubNumber = number
		record.GitHubTitle = record.Title
		record.GitHubState = state
		record.GitHubDueOn = dueOnText
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("Milestone creation pass finished", "summary", summary.String())

	return assignMilestones(ctx, glc, ghc, project, repo, records, dryRun)
}

// assignMilestones walks the GitLab issues carrying milestones and sets the
// mapped milestone on the GitHub issue with the same number.
func assignMilestones(ctx context.Context, glc *gitlab.Client, ghc *githubClient.Client, project config.GitLabProject, repo config.GitHubRepo, records []*MilestoneRecord, dryRun bool) error {
	byGitLabID := milestoneAssignmentTargets(records, dryRun)

	issues, err := gitlabClient.GetAllIssues(glc, project.Path())
	if err != nil {
		return err
	}

	var updated, failed, notFound int
	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			return err
		}
		if issue.Milestone == nil {
			continue
		}
		record, ok := byGitLabID[issue.Milestone.ID]
		if !ok {
			logger.Debug("No milestone mapping for issue", "issueIID", issue.IID, "milestone", issue.Milestone.Title)
			notFound++
			continue
		}

		if _, err := ghc.GetIssue(ctx, repo.Owner, repo.Name, issue.IID); err != nil {
			if errors.Is(err, githubClient.ErrNotFound) {
				logger.Debug("No GitHub issue for GitLab issue", "issueIID", issue.IID)
				notFound++
				continue
			}
			logger.Error("Failed to look up GitHub issue", "issueIID", issue.IID, "error", err)
			failed++
			continue
		}

		if dryRun {
			logger.Info("Would assign milestone", "issue", issue.IID, "milestone", record.Title)
			updated++
			continue
		}
		if err := ghc.SetIssueMilestone(ctx, repo.Owner, repo.Name, issue.IID, record.GitHubNumber); err != nil {
			logger.Error("Failed to assign milestone", "issue", issue.IID, "error", err)
			failed++
			continue
		}
		updated++
	}

	logger.Info("Milestone assignment pass finished",
		"updated", updated,
		"failed", failed,
		"notFound", notFound,
		"dryRun", dryRun)
	return nil
}

// milestoneAssignmentTargets maps GitLab milestone ids to the records whose
// assignments the second pass should attempt. A run that writes to GitHub
// needs the created milestone number; a dry run has not created anything yet,
// so it also previews the records it would have created.
func milestoneAssignmentTargets(records []*MilestoneRecord, dryRun bool) map[int]*MilestoneRecord {
	byGitLabID := make(map[int]*MilestoneRecord, len(records))
	for _, record := range records {
		if record.GitHubNumber > 0 || (dryRun && !record.GetStatus().Resolved()) {
			byGitLabID[record.GitLabID] = record
		}
	}
	return byGitLabID
}

// milestoneNumbersByTitle indexes existing GitHub milestones so a re-run can
// reuse them instead of creating duplicates.
func milestoneNumbersByTitle(milestones []*githublib.Milestone) map[string]int {
	byTitle := make(map[string]int, len(milestones))
	for _, m := range milestones {
		byTitle[m.GetTitle()] = m.GetNumber()
	}
	return byTitle
}

// milestoneState converts a GitLab milestone state to the GitHub one.
func milestoneState(gitlabState string) string {
	if gitlabState == "active" {
		return "open"
	}
	return "closed"
}

// milestoneDueOn converts a GitLab date-only due date into the timestamp
// GitHub requires, pinned to the end of the day.
func milestoneDueOn(dueDate string) (*time.Time, string, error) {
	if dueDate == "" {
		return nil, "", nil
	}
	day, err := time.Parse("2006-01-02", dueDate)
	if err != nil {
		return nil, "", fmt.Errorf("invalid due date %q: %w", dueDate, err)
	}
	dueOn := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, time.UTC)
	return &dueOn, dueOn.Format(time.RFC3339), nil
}

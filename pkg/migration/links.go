package migration

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/solidify-labs/gl2gh/pkg/config"
	githubClient "github.com/solidify-labs/gl2gh/pkg/github"
	"github.com/solidify-labs/gl2gh/pkg/logger"
	"github.com/solidify-labs/gl2gh/pkg/mapping"
	"github.com/solidify-labs/gl2gh/pkg/utils"
)

const (
	linkRefTypeGitLabURL = "gitlab-url"
	linkRefTypeRepoRef   = "repo-ref"

	linkItemTypeIssue = "issue"
	linkItemTypePR    = "pr"

	linkLocationBody = "body"
)

// gitlabURLPattern matches GitLab URLs embedded in markdown text. Trailing
// punctuation that commonly closes a markdown link is excluded.
var gitlabURLPattern = regexp.MustCompile(`https?://[^/\s]*gitlab[^\s)\]>]*`)

// LinkRecord is one GitLab URL or short repository reference found in a
// GitHub issue or pull request, together with the GitHub URL replacing it.
type LinkRecord struct {
	ItemType     string // issue or pr
	ItemNumber   int
	Location     string // body or comment-<id>
	OriginalText string
	GitHubURL    string
	URLExists    bool
	RefType      string // gitlab-url or repo-ref

	Status mapping.Status
}

func (r *LinkRecord) GetStatus() mapping.Status  { return r.Status }
func (r *LinkRecord) SetStatus(s mapping.Status) { r.Status = s }

type linkCodec struct{}

func (linkCodec) Header() []string {
	return []string{
		"type", "item_number", "location", "original_text",
		"github_url", "url_exists", "reference_type", "status",
	}
}

func (linkCodec) Encode(r *LinkRecord) []string {
	return []string{
		r.ItemType, strconv.Itoa(r.ItemNumber), r.Location, r.OriginalText,
		r.GitHubURL, strconv.FormatBool(r.URLExists), r.RefType, string(r.Status),
	}
}

func (linkCodec) Decode(row []string) (*LinkRecord, error) {
	itemNumber, err := strconv.Atoi(row[1])
	if err != nil {
		return nil, fmt.Errorf("invalid item_number %q", row[1])
	}
	return &LinkRecord{
		ItemType:     row[0],
		ItemNumber:   itemNumber,
		Location:     row[2],
		OriginalText: row[3],
		GitHubURL:    row[4],
		URLExists:    row[5] == "true",
		RefType:      row[6],
		Status:       mapping.ParseStatus(row[7]),
	}, nil
}

// LinkStore opens the link mapping file at path.
func LinkStore(path string) *mapping.Store[*LinkRecord] {
	return mapping.NewStore[*LinkRecord](path, linkCodec{})
}

// FindGitLabURLs returns every GitLab URL occurring in text.
func FindGitLabURLs(text string) []string {
	return gitlabURLPattern.FindAllString(text, -1)
}

// RepoRef is a short reference like migration-test#2.
type RepoRef struct {
	Text   string
	Number int
}

// FindRepoRefs returns every short reference to the repository in text.
// baseName is matched with word boundaries on both sides so path segments
// and longer names do not match.
func FindRepoRefs(text, baseName string) []RepoRef {
	if baseName == "" {
		return nil
	}
	pattern := regexp.MustCompile(regexp.QuoteMeta(baseName) + `#(\d+)`)
	var refs []RepoRef
	for _, match := range pattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := match[0], match[1]
		if start > 0 && isRefWordChar(rune(text[start-1])) {
			continue
		}
		if end < len(text) && isRefWordChar(rune(text[end])) {
			continue
		}
		number, _ := strconv.Atoi(text[match[2]:match[3]])
		refs = append(refs, RepoRef{Text: text[start:end], Number: number})
	}
	return refs
}

func isRefWordChar(r rune) bool {
	return r == '/' || r == '_' || r == '-' ||
		(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// ConvertGitLabURL rewrites a GitLab URL under gitlabRepoURL into the
// corresponding GitHub URL. The /-/ path marker is dropped and merge
// requests become pull requests. Returns false when the URL points outside
// the migrated repository.
func ConvertGitLabURL(gitlabURL, gitlabRepoURL, githubRepoURL string) (string, bool) {
	gitlabRepoURL = strings.TrimSuffix(gitlabRepoURL, "/")
	if !strings.HasPrefix(gitlabURL, gitlabRepoURL) {
		return "", false
	}
	rest := strings.TrimPrefix(gitlabURL, gitlabRepoURL)
	if rest != "" && !strings.HasPrefix(rest, "/") {
		return "", false
	}
	rest = strings.TrimPrefix(rest, "/-")
	rest = strings.Replace(rest, "/merge_requests/", "/pull/", 1)
	return strings.TrimSuffix(githubRepoURL, "/") + rest, true
}

// CreateLinkMap sweeps the bodies and comments of every GitHub issue and
// pull request for GitLab URLs and short repo references and writes one
// pending record per hit.
func CreateLinkMap(ctx context.Context, ghc *githubClient.Client, repo config.GitHubRepo, gitlabRepoURL, outputFile string, validate bool) error {
	issues, err := ghc.ListIssues(ctx, repo.Owner, repo.Name)
	if err != nil {
		return err
	}
	logger.Info("Fetched GitHub issues and pull requests", "count", len(issues))

	githubRepoURL := fmt.Sprintf("https://github.com/%s/%s", repo.Owner, repo.Name)
	baseName := utils.BaseRepoName(repo.Name)

	var records []*LinkRecord
	var failedItems int
	for _, issue := range issues {
		itemType := linkItemTypeIssue
		if issue.IsPullRequest() {
			itemType = linkItemTypePR
		}

		records = append(records, scanLinkText(issue.GetBody(), itemType, issue.GetNumber(), linkLocationBody, baseName, gitlabRepoURL, githubRepoURL)...)

		comments, err := ghc.ListIssueComments(ctx, repo.Owner, repo.Name, issue.GetNumber())
		if err != nil {
			logger.Error("Failed to fetch comments, skipping item", "item", issue.GetNumber(), "error", err)
			failedItems++
			continue
		}
		for _, comment := range comments {
			location := fmt.Sprintf("comment-%d", comment.GetID())
			records = append(records, scanLinkText(comment.GetBody(), itemType, issue.GetNumber(), location, baseName, gitlabRepoURL, githubRepoURL)...)
		}
	}

	if validate {
		if err := validateLinkRecords(ctx, ghc, repo, records); err != nil {
			return err
		}
	}

	store := LinkStore(outputFile)
	if err := store.Save(records); err != nil {
		return err
	}
	logger.Info("Saved link map", "file", outputFile, "hits", len(records), "failedItems", failedItems)
	return nil
}

// scanLinkText extracts both kinds of hits from one text blob.
func scanLinkText(text, itemType string, itemNumber int, location, baseName, gitlabRepoURL, githubRepoURL string) []*LinkRecord {
	var records []*LinkRecord

	for _, gitlabURL := range FindGitLabURLs(text) {
		githubURL, ok := ConvertGitLabURL(gitlabURL, gitlabRepoURL, githubRepoURL)
		if !ok {
			logger.Debug("GitLab URL outside the migrated repository", "url", gitlabURL)
		}
		records = append(records, &LinkRecord{
			ItemType:     itemType,
			ItemNumber:   itemNumber,
			Location:     location,
			OriginalText: gitlabURL,
			GitHubURL:    githubURL,
			RefType:      linkRefTypeGitLabURL,
			Status:       mapping.StatusPending,
		})
	}

	for _, ref := range FindRepoRefs(text, baseName) {
		records = append(records, &LinkRecord{
			ItemType:     itemType,
			ItemNumber:   itemNumber,
			Location:     location,
			OriginalText: ref.Text,
			GitHubURL:    fmt.Sprintf("%s/issues/%d", githubRepoURL, ref.Number),
			RefType:      linkRefTypeRepoRef,
			Status:       mapping.StatusPending,
		})
	}

	return records
}

// validateLinkRecords probes GitHub for every computed target URL and sets
// url_exists. Issue and pull URLs both resolve through the issues API.
func validateLinkRecords(ctx context.Context, ghc *githubClient.Client, repo config.GitHubRepo, records []*LinkRecord) error {
	checked := make(map[int]bool)
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		number, ok := targetIssueNumber(record.GitHubURL)
		if !ok {
			record.URLExists = false
			continue
		}
		exists, probed := checked[number]
		if !probed {
			_, err := ghc.GetIssue(ctx, repo.Owner, repo.Name, number)
			if err != nil && !errors.Is(err, githubClient.ErrNotFound) {
				return err
			}
			exists = err == nil
			checked[number] = exists
		}
		record.URLExists = exists
	}
	return nil
}

// targetIssueNumber extracts the trailing issue or pull number of a GitHub
// URL.
func targetIssueNumber(githubURL string) (int, bool) {
	for _, marker := range []string{"/issues/", "/pull/"} {
		if idx := strings.LastIndex(githubURL, marker); idx >= 0 {
			number, err := strconv.Atoi(strings.TrimSuffix(githubURL[idx+len(marker):], "/"))
			if err == nil {
				return number, true
			}
		}
	}
	return 0, false
}

// ExecuteLinkOptions control the execute pass.
type ExecuteLinkOptions struct {
	DryRun bool
	// Force replaces hits whose target URL failed validation.
	Force bool
}

// ExecuteLinkReplacements rewrites the recorded hits in place on GitHub.
func ExecuteLinkReplacements(ctx context.Context, ghc *githubClient.Client, repo config.GitHubRepo, inputFile string, opts ExecuteLinkOptions) error {
	store := LinkStore(inputFile)
	records, err := store.Load()
	if err != nil {
		return err
	}

	runner := &mapping.Runner[*LinkRecord]{Store: store, DryRun: opts.DryRun}
	summary, err := runner.Apply(ctx, records, func(ctx context.Context, record *LinkRecord, dryRun bool) error {
		if record.GitHubURL == "" {
			return fmt.Errorf("%w: no GitHub URL mapped for %q", mapping.ErrSkip, record.OriginalText)
		}
		if !record.URLExists && !opts.Force {
			return fmt.Errorf("%w: target URL not validated: %s", mapping.ErrSkip, record.GitHubURL)
		}

		text, writeBack, err := loadLinkLocation(ctx, ghc, repo, record)
		if err != nil {
			return err
		}
		if !strings.Contains(text, record.OriginalText) {
			return fmt.Errorf("%w: text %q no longer present in %s #%d %s", mapping.ErrSkip, record.OriginalText, record.ItemType, record.ItemNumber, record.Location)
		}

		if dryRun {
			logger.Info("Would replace link", "item", record.ItemNumber, "location", record.Location, "from", record.OriginalText, "to", record.GitHubURL)
			return nil
		}
		return writeBack(ctx, strings.ReplaceAll(text, record.OriginalText, record.GitHubURL))
	})
	if err != nil {
		return err
	}

	logger.Info("Link replacement pass finished", "summary", summary.String(), "dryRun", opts.DryRun)
	return nil
}

// loadLinkLocation fetches the current text of the record's location and
// returns a writer that stores the replacement.
func loadLinkLocation(ctx context.Context, ghc *githubClient.Client, repo config.GitHubRepo, record *LinkRecord) (string, func(context.Context, string) error, error) {
	if record.Location == linkLocationBody {
		issue, err := ghc.GetIssue(ctx, repo.Owner, repo.Name, record.ItemNumber)
		if err != nil {
			if errors.Is(err, githubClient.ErrNotFound) {
				return "", nil, fmt.Errorf("%w: %s #%d not found", mapping.ErrSkip, record.ItemType, record.ItemNumber)
			}
			return "", nil, err
		}
		return issue.GetBody(), func(ctx context.Context, body string) error {
			return ghc.EditIssueBody(ctx, repo.Owner, repo.Name, record.ItemNumber, body)
		}, nil
	}

	commentID, err := strconv.ParseInt(strings.TrimPrefix(record.Location, "comment-"), 10, 64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid location %q", record.Location)
	}
	comments, err := ghc.ListIssueComments(ctx, repo.Owner, repo.Name, record.ItemNumber)
	if err != nil {
		return "", nil, err
	}
	for _, comment := range comments {
		if comment.GetID() == commentID {
			return comment.GetBody(), func(ctx context.Context, body string) error {
				return ghc.EditIssueComment(ctx, repo.Owner, repo.Name, commentID, body)
			}, nil
		}
	}
	return "", nil, fmt.Errorf("%w: comment %d not found on %s #%d", mapping.ErrSkip, commentID, record.ItemType, record.ItemNumber)
}

// RevalidateLinks re-checks url_exists for every record and rewrites the
// mapping file. Statuses are left untouched.
func RevalidateLinks(ctx context.Context, ghc *githubClient.Client, repo config.GitHubRepo, inputFile, outputFile string) error {
	store := LinkStore(inputFile)
	records, err := store.Load()
	if err != nil {
		return err
	}

	if err := validateLinkRecords(ctx, ghc, repo, records); err != nil {
		return err
	}

	out := LinkStore(outputFile)
	if err := out.Save(records); err != nil {
		return err
	}
	logger.Info("Revalidated link map", "file", outputFile, "records", len(records))
	return nil
}

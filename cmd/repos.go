package cmd

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/solidify-labs/gl2gh/pkg/config"
	"github.com/solidify-labs/gl2gh/pkg/migration"
)

func NewReposCommand(cfg *config.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "Migrate GitLab repositories to GitHub and manage the results",
	}
	cmd.AddCommand(newReposMigrateCommand(cfg))
	cmd.AddCommand(newReposVisibilityCommand(cfg))
	return cmd
}

func newReposMigrateCommand(cfg *config.GlobalConfig) *cobra.Command {
	var (
		filter        string
		org           string
		team          string
		visibility    string
		defaultBranch string
		topics        []string
		workingDir    string
		dryRun        bool
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Mirror matching GitLab projects into fresh GitHub repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			glc, err := newGitLabClient(cfg)
			if err != nil {
				return err
			}
			ghc, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			if org == "" {
				return fmt.Errorf("--org is required")
			}

			var pattern *regexp.Regexp
			if filter != "" {
				pattern, err = regexp.Compile(filter)
				if err != nil {
					return fmt.Errorf("invalid --filter pattern: %w", err)
				}
			}

			jobs, err := migration.MigrateRepos(cmd.Context(), ghc, glc, migration.RepoMigrationOptions{
				Pattern:       pattern,
				Org:           org,
				Team:          team,
				Visibility:    visibility,
				DefaultBranch: defaultBranch,
				Topics:        topics,
				WorkingDir:    workingDir,
				GitLabToken:   cfg.GitLabToken,
				GitHubToken:   cfg.GitHubToken,
				DryRun:        dryRun,
			})
			if err != nil {
				return err
			}

			var failed int
			for _, job := range jobs {
				if job.State == migration.JobFailed {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d repository migrations failed", failed, len(jobs))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Regular expression on the GitLab project path")
	cmd.Flags().StringVar(&org, "org", "", "GitHub organization receiving the repositories")
	cmd.Flags().StringVar(&team, "team", "", "GitHub team slug granted admin access")
	cmd.Flags().StringVar(&visibility, "visibility", "internal", "Visibility of the created repositories (public, private, internal)")
	cmd.Flags().StringVar(&defaultBranch, "default-branch", "main", "Branch to protect after the mirror push")
	cmd.Flags().StringSliceVar(&topics, "topics", nil, "Topics set on every created repository")
	cmd.Flags().StringVar(&workingDir, "working-dir", "./tmp", "Working directory for git operations")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the affected projects without migrating")
	return cmd
}

func newReposVisibilityCommand(cfg *config.GlobalConfig) *cobra.Command {
	var (
		org      string
		fromType string
		to       string
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "visibility",
		Short: "Change the visibility of every org repository of a given type",
		RunE: func(cmd *cobra.Command, args []string) error {
			ghc, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			if org == "" {
				return fmt.Errorf("--org is required")
			}
			return migration.SetOrgRepositoryVisibility(cmd.Context(), ghc, org, fromType, to, dryRun)
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "GitHub organization")
	cmd.Flags().StringVar(&fromType, "from", "private", "Repository type to select (all, public, private, internal)")
	cmd.Flags().StringVar(&to, "to", "internal", "Visibility to apply")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the affected repositories without changing them")
	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	xgitlab "github.com/xanzy/go-gitlab"

	"github.com/solidify-labs/gl2gh/pkg/config"
	"github.com/solidify-labs/gl2gh/pkg/github"
	"github.com/solidify-labs/gl2gh/pkg/gitlab"
	"github.com/solidify-labs/gl2gh/pkg/logger"
)

func NewRootCommand() *cobra.Command {
	var cfg config.GlobalConfig

	rootCmd := &cobra.Command{
		Use:   "gl2gh",
		Short: "Migrate GitLab projects to GitHub",
		Long: `Migrate GitLab projects to GitHub in resumable batches.
Each workflow writes a mapping file correlating source and target entities,
then applies it record by record, so interrupted runs pick up where they left
off. Covered: repositories, milestones, issue comments, issue relationships,
cross-reference link rewriting, repo secrets, org custom properties.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.LoadEnv(); err != nil {
				return err
			}
			if cfg.LogLevel != "" {
				logger.SetLevel(cfg.LogLevel)
			}
			return nil
		},
	}

	// Global flags, environment variables fill whatever is left empty
	rootCmd.PersistentFlags().StringVar(&cfg.GitLabToken, "gitlab-token", "", "GitLab API token (or set GITLAB_API_PRIVATE_TOKEN env)")
	rootCmd.PersistentFlags().StringVar(&cfg.GitLabEndpoint, "gitlab-endpoint", "", "GitLab API endpoint (or set GITLAB_API_ENDPOINT env)")
	rootCmd.PersistentFlags().StringVar(&cfg.GitLabRepoURL, "gitlab-repo-url", "", "GitLab repository URL (or set GITLAB_REPO_URL env)")
	rootCmd.PersistentFlags().StringVar(&cfg.GitHubToken, "github-token", "", "GitHub API token (or set GITHUB_TOKEN / GH_PAT env)")
	rootCmd.PersistentFlags().StringVar(&cfg.GitHubRepoURL, "github-repo-url", "", "GitHub repository URL (or set GITHUB_REPO_URL env)")
	rootCmd.PersistentFlags().IntVar(&cfg.GitHubAppID, "github-app-id", 0, "GitHub App ID (or set GITHUB_APP_ID env)")
	rootCmd.PersistentFlags().IntVar(&cfg.GitHubAppInstallationID, "github-app-installation-id", 0, "GitHub App installation ID (or set GITHUB_APP_INSTALLATION_ID env)")
	rootCmd.PersistentFlags().StringVar(&cfg.GitHubAppPrivateKey, "github-app-private-key", "", "GitHub App private key (or set GITHUB_APP_PRIVATE_KEY env)")
	rootCmd.PersistentFlags().BoolVar(&cfg.GitHubAppPrivateKeyAsFile, "github-app-private-key-as-file", false, "Treat the private key value as a file path")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error, fatal)")

	rootCmd.AddCommand(NewMilestonesCommand(&cfg))
	rootCmd.AddCommand(NewCommentsCommand(&cfg))
	rootCmd.AddCommand(NewRelationshipsCommand(&cfg))
	rootCmd.AddCommand(NewLinksCommand(&cfg))
	rootCmd.AddCommand(NewReposCommand(&cfg))
	rootCmd.AddCommand(NewSecretsCommand(&cfg))
	rootCmd.AddCommand(NewPropsCommand(&cfg))
	rootCmd.AddCommand(NewGroupsCommand(&cfg))
	rootCmd.AddCommand(NewExtractCommand(&cfg))
	rootCmd.AddCommand(NewKeyVaultCommand(&cfg))

	return rootCmd
}

// newGitHubClient builds a client from the PAT or the App credentials,
// whichever is configured.
func newGitHubClient(cfg *config.GlobalConfig) (*github.Client, error) {
	if cfg.GitHubToken != "" {
		return github.NewClientByPAT(cfg.GitHubToken), nil
	}
	if cfg.GitHubAppID > 0 && cfg.GitHubAppInstallationID > 0 && cfg.GitHubAppPrivateKey != "" {
		return github.NewClientByApp(cfg.GitHubAppID, cfg.GitHubAppInstallationID, cfg.GitHubAppPrivateKey)
	}
	return nil, fmt.Errorf("GitHub token or GitHub App settings are required")
}

func newGitLabClient(cfg *config.GlobalConfig) (*xgitlab.Client, error) {
	if err := cfg.Require("GITLAB_API_PRIVATE_TOKEN", "GITLAB_API_ENDPOINT"); err != nil {
		return nil, err
	}
	return gitlab.NewClient(cfg.GitLabToken, cfg.GitLabEndpoint)
}

func gitlabProjectFromConfig(cfg *config.GlobalConfig) (config.GitLabProject, error) {
	if err := cfg.Require("GITLAB_REPO_URL"); err != nil {
		return config.GitLabProject{}, err
	}
	return config.ParseGitLabRepoURL(cfg.GitLabRepoURL)
}

func githubRepoFromConfig(cfg *config.GlobalConfig) (config.GitHubRepo, error) {
	if err := cfg.Require("GITHUB_REPO_URL"); err != nil {
		return config.GitHubRepo{}, err
	}
	return config.ParseGitHubRepoURL(cfg.GitHubRepoURL)
}

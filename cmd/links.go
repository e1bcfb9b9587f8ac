package cmd

import (
	"github.com/spf13/cobra"

	"github.com/solidify-labs/gl2gh/pkg/config"
	"github.com/solidify-labs/gl2gh/pkg/migration"
)

func NewLinksCommand(cfg *config.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Rewrite GitLab URLs and short repo references in migrated GitHub content",
	}
	cmd.AddCommand(newLinksCreateMapCommand(cfg))
	cmd.AddCommand(newLinksExecuteCommand(cfg))
	cmd.AddCommand(newLinksRevalidateCommand(cfg))
	return cmd
}

func newLinksCreateMapCommand(cfg *config.GlobalConfig) *cobra.Command {
	var outputFile string
	var skipValidation bool
	cmd := &cobra.Command{
		Use:   "create-map",
		Short: "Scan GitHub issue and PR bodies and comments for GitLab links and write the mapping file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ghc, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			repo, err := githubRepoFromConfig(cfg)
			if err != nil {
				return err
			}
			if err := cfg.Require("GITLAB_REPO_URL"); err != nil {
				return err
			}
			return migration.CreateLinkMap(cmd.Context(), ghc, repo, cfg.GitLabRepoURL, outputFile, !skipValidation)
		},
	}
	cmd.Flags().StringVar(&outputFile, "output", "links-map.csv", "Mapping file to write")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Do not probe GitHub for the replacement URLs while mapping")
	return cmd
}

func newLinksExecuteCommand(cfg *config.GlobalConfig) *cobra.Command {
	var inputFile string
	var dryRun, force bool
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Replace the mapped links in place on GitHub",
		RunE: func(cmd *cobra.Command, args []string) error {
			ghc, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			repo, err := githubRepoFromConfig(cfg)
			if err != nil {
				return err
			}
			return migration.ExecuteLinkReplacements(cmd.Context(), ghc, repo, inputFile, migration.ExecuteLinkOptions{
				DryRun: dryRun,
				Force:  force,
			})
		},
	}
	cmd.Flags().StringVar(&inputFile, "input", "links-map.csv", "Mapping file to apply")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the replacements without editing GitHub")
	cmd.Flags().BoolVar(&force, "force", false, "Replace links whose target URL failed validation")
	return cmd
}

func newLinksRevalidateCommand(cfg *config.GlobalConfig) *cobra.Command {
	var inputFile, outputFile string
	cmd := &cobra.Command{
		Use:   "revalidate",
		Short: "Re-check the validated flag of every record and rewrite the mapping file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ghc, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			repo, err := githubRepoFromConfig(cfg)
			if err != nil {
				return err
			}
			if outputFile == "" {
				outputFile = inputFile
			}
			return migration.RevalidateLinks(cmd.Context(), ghc, repo, inputFile, outputFile)
		},
	}
	cmd.Flags().StringVar(&inputFile, "input", "links-map.csv", "Mapping file to revalidate")
	cmd.Flags().StringVar(&outputFile, "output", "", "Mapping file to write (defaults to --input)")
	return cmd
}

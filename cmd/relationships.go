package cmd

import (
	"github.com/spf13/cobra"

	"github.com/solidify-labs/gl2gh/pkg/config"
	"github.com/solidify-labs/gl2gh/pkg/migration"
)

func NewRelationshipsCommand(cfg *config.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relationships",
		Short: "Migrate GitLab issue links to GitHub dependencies or cross-references",
	}
	cmd.AddCommand(newRelationshipsCreateMapCommand(cfg))
	cmd.AddCommand(newRelationshipsApplyCommand(cfg))
	return cmd
}

func newRelationshipsCreateMapCommand(cfg *config.GlobalConfig) *cobra.Command {
	var outputFile string
	var skipGitHubValidation bool
	cmd := &cobra.Command{
		Use:   "create-map",
		Short: "Enumerate GitLab issue links and write the mapping file",
		RunE: func(cmd *cobra.Command, args []string) error {
			glc, err := newGitLabClient(cfg)
			if err != nil {
				return err
			}
			ghc, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			project, err := gitlabProjectFromConfig(cfg)
			if err != nil {
				return err
			}
			repo, err := githubRepoFromConfig(cfg)
			if err != nil {
				return err
			}
			return migration.CreateRelationshipMap(cmd.Context(), glc, ghc, project, repo, outputFile, migration.RelationshipMapOptions{
				SkipGitHubValidation: skipGitHubValidation,
			})
		},
	}
	cmd.Flags().StringVar(&outputFile, "output", "relationships-map.csv", "Mapping file to write")
	cmd.Flags().BoolVar(&skipGitHubValidation, "skip-github-validation", false, "Do not probe GitHub for the target issues while mapping")
	return cmd
}

func newRelationshipsApplyCommand(cfg *config.GlobalConfig) *cobra.Command {
	var inputFile string
	var diagnostic bool
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create the mapped dependencies and cross-reference comments on GitHub",
		RunE: func(cmd *cobra.Command, args []string) error {
			ghc, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			repo, err := githubRepoFromConfig(cfg)
			if err != nil {
				return err
			}
			return migration.ApplyRelationships(cmd.Context(), ghc, repo, inputFile, diagnostic)
		},
	}
	cmd.Flags().StringVar(&inputFile, "input", "relationships-map.csv", "Mapping file to apply")
	cmd.Flags().BoolVar(&diagnostic, "diagnostic", false, "Log what would happen without writing to GitHub")
	return cmd
}

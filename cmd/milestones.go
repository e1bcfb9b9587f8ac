package cmd

import (
	"github.com/spf13/cobra"

	"github.com/solidify-labs/gl2gh/pkg/config"
	"github.com/solidify-labs/gl2gh/pkg/migration"
)

func NewMilestonesCommand(cfg *config.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestones",
		Short: "Migrate GitLab milestones to GitHub",
	}
	cmd.AddCommand(newMilestonesCreateMapCommand(cfg))
	cmd.AddCommand(newMilestonesApplyCommand(cfg))
	return cmd
}

func newMilestonesCreateMapCommand(cfg *config.GlobalConfig) *cobra.Command {
	var outputFile string
	cmd := &cobra.Command{
		Use:   "create-map",
		Short: "Fetch project and group milestones from GitLab and write the mapping file",
		RunE: func(cmd *cobra.Command, args []string) error {
			glc, err := newGitLabClient(cfg)
			if err != nil {
				return err
			}
			project, err := gitlabProjectFromConfig(cfg)
			if err != nil {
				return err
			}
			return migration.CreateMilestoneMap(glc, project, outputFile)
		},
	}
	cmd.Flags().StringVar(&outputFile, "output", "milestones-map.csv", "Mapping file to write")
	return cmd
}

func newMilestonesApplyCommand(cfg *config.GlobalConfig) *cobra.Command {
	var inputFile string
	var diagnostic bool
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create the mapped milestones on GitHub and assign them to issues",
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
			return migration.ApplyMilestones(cmd.Context(), glc, ghc, project, repo, inputFile, diagnostic)
		},
	}
	cmd.Flags().StringVar(&inputFile, "input", "milestones-map.csv", "Mapping file to apply")
	cmd.Flags().BoolVar(&diagnostic, "diagnostic", false, "Log what would happen without writing to GitHub")
	return cmd
}

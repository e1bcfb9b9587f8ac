package cmd

import (
	"github.com/spf13/cobra"

	"github.com/solidify-labs/gl2gh/pkg/config"
	"github.com/solidify-labs/gl2gh/pkg/migration"
)

func NewCommentsCommand(cfg *config.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Migrate GitLab issue comments to GitHub with discussion nesting",
	}
	cmd.AddCommand(newCommentsCreateMapCommand(cfg))
	cmd.AddCommand(newCommentsApplyNestingCommand(cfg))
	return cmd
}

func newCommentsCreateMapCommand(cfg *config.GlobalConfig) *cobra.Command {
	var outputFile string
	cmd := &cobra.Command{
		Use:   "create-map",
		Short: "Enumerate GitLab issue notes with their discussion structure and write the mapping file",
		RunE: func(cmd *cobra.Command, args []string) error {
			glc, err := newGitLabClient(cfg)
			if err != nil {
				return err
			}
			project, err := gitlabProjectFromConfig(cfg)
			if err != nil {
				return err
			}
			return migration.CreateCommentMap(glc, project, outputFile)
		},
	}
	cmd.Flags().StringVar(&outputFile, "output", "comments-map.csv", "Mapping file to write")
	return cmd
}

func newCommentsApplyNestingCommand(cfg *config.GlobalConfig) *cobra.Command {
	var inputFile string
	var diagnostic bool
	cmd := &cobra.Command{
		Use:   "apply-nesting",
		Short: "Post the mapped comments on GitHub, quoting the parent note for replies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ghc, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			repo, err := githubRepoFromConfig(cfg)
			if err != nil {
				return err
			}
			return migration.ApplyCommentNesting(cmd.Context(), ghc, repo, inputFile, diagnostic)
		},
	}
	cmd.Flags().StringVar(&inputFile, "input", "comments-map.csv", "Mapping file to apply")
	cmd.Flags().BoolVar(&diagnostic, "diagnostic", false, "Log what would happen without writing to GitHub")
	return cmd
}

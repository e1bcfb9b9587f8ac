package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/solidify-labs/gl2gh/pkg/config"
	"github.com/solidify-labs/gl2gh/pkg/migration"
)

func NewExtractCommand(cfg *config.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Write CSV reports about a GitHub organization",
	}
	cmd.AddCommand(newExtractUsersCommand(cfg))
	cmd.AddCommand(newExtractTeamsCommand(cfg))
	return cmd
}

func newExtractUsersCommand(cfg *config.GlobalConfig) *cobra.Command {
	var org string
	var outputFile string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Report every organization member with their profile details",
		RunE: func(cmd *cobra.Command, args []string) error {
			if org == "" {
				return errors.New("an organization is required (--org)")
			}
			ghc, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			return migration.ExtractOrgUsers(cmd.Context(), ghc, org, outputFile)
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "GitHub organization to report on")
	cmd.Flags().StringVar(&outputFile, "output", "users.csv", "Report file to write")
	return cmd
}

func newExtractTeamsCommand(cfg *config.GlobalConfig) *cobra.Command {
	var org string
	var outputFile string
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Report every team and its memberships",
		RunE: func(cmd *cobra.Command, args []string) error {
			if org == "" {
				return errors.New("an organization is required (--org)")
			}
			ghc, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			return migration.ExtractOrgTeams(cmd.Context(), ghc, org, outputFile)
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "GitHub organization to report on")
	cmd.Flags().StringVar(&outputFile, "output", "teams.csv", "Report file to write")
	return cmd
}

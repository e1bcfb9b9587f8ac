package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solidify-labs/gl2gh/pkg/config"
	"github.com/solidify-labs/gl2gh/pkg/gitlab"
)

func NewGroupsCommand(cfg *config.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Inspect GitLab groups",
	}
	cmd.AddCommand(newGroupsListCommand(cfg))
	return cmd
}

func newGroupsListCommand(cfg *config.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every GitLab group visible to the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			glc, err := newGitLabClient(cfg)
			if err != nil {
				return err
			}
			groups, err := gitlab.ListGroups(glc)
			if err != nil {
				return err
			}
			for _, group := range groups {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", group.ID, group.Name, group.FullPath)
			}
			return nil
		},
	}
	return cmd
}

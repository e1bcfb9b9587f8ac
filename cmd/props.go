package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solidify-labs/gl2gh/pkg/config"
	"github.com/solidify-labs/gl2gh/pkg/logger"
)

func NewPropsCommand(cfg *config.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "props",
		Short: "Manage GitHub organization custom properties",
	}
	cmd.AddCommand(newPropsMigrateCommand(cfg))
	return cmd
}

func newPropsMigrateCommand(cfg *config.GlobalConfig) *cobra.Command {
	var (
		sourceOrg string
		targetOrg string
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy custom property schemas from one organization to another",
		RunE: func(cmd *cobra.Command, args []string) error {
			ghc, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			if sourceOrg == "" || targetOrg == "" {
				return fmt.Errorf("--source-org and --target-org are required")
			}

			ctx := cmd.Context()
			properties, err := ghc.ListOrgCustomProperties(ctx, sourceOrg)
			if err != nil {
				return err
			}
			logger.Info("Found custom properties", "org", sourceOrg, "count", len(properties))

			for _, property := range properties {
				if dryRun {
					logger.Info("Would create or update custom property", "org", targetOrg, "property", property.GetPropertyName())
					continue
				}
				if err := ghc.CreateOrUpdateOrgCustomProperty(ctx, targetOrg, property); err != nil {
					return err
				}
				logger.Info("Created or updated custom property", "org", targetOrg, "property", property.GetPropertyName())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sourceOrg, "source-org", "", "Organization to read the property schemas from")
	cmd.Flags().StringVar(&targetOrg, "target-org", "", "Organization to write the property schemas to")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the properties without writing")
	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solidify-labs/gl2gh/pkg/config"
	"github.com/solidify-labs/gl2gh/pkg/github"
	"github.com/solidify-labs/gl2gh/pkg/keyvault"
	"github.com/solidify-labs/gl2gh/pkg/logger"
)

func NewSecretsCommand(cfg *config.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage GitHub Actions repository secrets",
	}
	cmd.AddCommand(newSecretsUpdateCommand(cfg))
	return cmd
}

func newSecretsUpdateCommand(cfg *config.GlobalConfig) *cobra.Command {
	var (
		org         string
		repos       []string
		name        string
		value       string
		vaultName   string
		vaultSecret string
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Seal a secret value and store it on the named repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			ghc, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			if org == "" || name == "" || len(repos) == 0 {
				return fmt.Errorf("--org, --name and at least one --repo are required")
			}

			if vaultSecret != "" {
				if vaultName == "" {
					vaultName = cfg.AzureKeyVaultName
				}
				if vaultName == "" {
					return fmt.Errorf("a Key Vault name is required with --from-keyvault (--vault or AZURE_KEYVAULT_NAME)")
				}
				kv, err := keyvault.NewClient(vaultName)
				if err != nil {
					return err
				}
				value, err = kv.Get(cmd.Context(), vaultSecret)
				if err != nil {
					return err
				}
			}
			if value == "" {
				return fmt.Errorf("a secret value is required (--value or --from-keyvault)")
			}

			ctx := cmd.Context()
			for _, repo := range repos {
				publicKey, err := ghc.GetRepoPublicKey(ctx, org, repo)
				if err != nil {
					return err
				}
				sealed, err := github.EncryptSecret(publicKey, value)
				if err != nil {
					return err
				}
				if err := ghc.PutRepoSecret(ctx, org, repo, name, sealed, publicKey.GetKeyID()); err != nil {
					return err
				}
				logger.Info("Updated repository secret", "repo", org+"/"+repo, "secret", name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "GitHub organization owning the repositories")
	cmd.Flags().StringSliceVar(&repos, "repo", nil, "Repository to update (repeatable)")
	cmd.Flags().StringVar(&name, "name", "", "Secret name")
	cmd.Flags().StringVar(&value, "value", "", "Secret value")
	cmd.Flags().StringVar(&vaultName, "vault", "", "Azure Key Vault name (or set AZURE_KEYVAULT_NAME env)")
	cmd.Flags().StringVar(&vaultSecret, "from-keyvault", "", "Fetch the secret value from this Key Vault secret")
	return cmd
}

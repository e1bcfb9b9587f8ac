package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solidify-labs/gl2gh/pkg/config"
	"github.com/solidify-labs/gl2gh/pkg/keyvault"
)

func NewKeyVaultCommand(cfg *config.GlobalConfig) *cobra.Command {
	var vaultName string
	cmd := &cobra.Command{
		Use:   "keyvault",
		Short: "Look up secrets in an Azure Key Vault",
	}
	cmd.PersistentFlags().StringVar(&vaultName, "vault", "", "Key Vault name (or set AZURE_KEYVAULT_NAME env)")

	newKeyVaultClient := func() (*keyvault.Client, error) {
		if vaultName == "" {
			vaultName = cfg.AzureKeyVaultName
		}
		if vaultName == "" {
			return nil, fmt.Errorf("a Key Vault name is required (--vault or AZURE_KEYVAULT_NAME)")
		}
		return keyvault.NewClient(vaultName)
	}

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "List secret names containing the query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := newKeyVaultClient()
			if err != nil {
				return err
			}
			names, err := kv.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Print the current value of a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := newKeyVaultClient()
			if err != nil {
				return err
			}
			value, err := kv.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	cmd.AddCommand(searchCmd)
	cmd.AddCommand(getCmd)
	return cmd
}

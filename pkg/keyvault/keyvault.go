package keyvault

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// Client is a thin wrapper over the Key Vault secrets SDK. Authentication
// goes through the default Azure credential chain, so an az CLI session is
// enough locally.
type Client struct {
	secrets *azsecrets.Client
}

func NewClient(vaultName string) (*Client, error) {
	if vaultName == "" {
		return nil, fmt.Errorf("vault name is required (set AZURE_KEYVAULT_NAME)")
	}
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire Azure credential: %w", err)
	}
	vaultURL := fmt.Sprintf("https://%s.vault.azure.net", vaultName)
	secrets, err := azsecrets.NewClient(vaultURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}
	return &Client{secrets: secrets}, nil
}

// Search lists the names of secrets containing the query, case-insensitive.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	query = strings.ToLower(query)
	var names []string

	pager := c.secrets.NewListSecretPropertiesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list secrets: %w", err)
		}
		for _, secret := range page.Value {
			if secret.ID == nil {
				continue
			}
			name := secret.ID.Name()
			if query == "" || strings.Contains(strings.ToLower(name), query) {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// Get fetches the current version of one secret.
func (c *Client) Get(ctx context.Context, name string) (string, error) {
	resp, err := c.secrets.GetSecret(ctx, name, "", nil)
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret %s has no value", name)
	}
	return *resp.Value, nil
}

package github

import (
	"context"
	"fmt"

	githublib "github.com/google/go-github/v70/github"

	"github.com/solidify-labs/gl2gh/pkg/logger"
)

// ListOrgCustomProperties returns the custom property schemas of an
// organization.
func (client *Client) ListOrgCustomProperties(ctx context.Context, org string) ([]*githublib.CustomProperty, error) {
	var properties []*githublib.CustomProperty
	err := RetryableOperation(ctx, func() error {
		var err error
		properties, _, err = client.GetInner().Organizations.GetAllCustomProperties(ctx, org)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("organization %s: %w", org, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to list custom properties of org %s: %w", org, err)
	}
	return properties, nil
}

// CreateOrUpdateOrgCustomProperty upserts one custom property schema in the
// organization.
func (client *Client) CreateOrUpdateOrgCustomProperty(ctx context.Context, org string, property *githublib.CustomProperty) error {
	logger.Debug("Upserting custom property", "org", org, "property", property.GetPropertyName())

	err := RetryableOperation(ctx, func() error {
		_, _, err := client.GetInner().Organizations.CreateOrUpdateCustomProperty(ctx, org, property.GetPropertyName(), property)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert custom property %s in org %s: %w", property.GetPropertyName(), org, err)
	}
	return nil
}

package gitlab

import (
	"fmt"
	"strings"

	"github.com/xanzy/go-gitlab"
)

// NewClient creates a GitLab client against the given API endpoint, e.g.
// https://gitlab.com/api/v4.
func NewClient(token, endpoint string) (*gitlab.Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitLab token is required (set GITLAB_API_PRIVATE_TOKEN)")
	}
	opts := []gitlab.ClientOptionFunc{}
	if endpoint != "" {
		opts = append(opts, gitlab.WithBaseURL(strings.TrimSuffix(endpoint, "/")))
	}
	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	return client, nil
}

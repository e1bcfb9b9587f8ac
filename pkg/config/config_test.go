package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseGitLabRepoURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    GitLabProject
		wantErr bool
	}{
		{
			name: "group and project",
			url:  "https://gitlab.com/solidify/migration-test",
			want: GitLabProject{Namespace: "solidify", Name: "migration-test", Group: "solidify"},
		},
		{
			name: "subgroups",
			url:  "https://gitlab.com/solidify/tools/internal/migration-test",
			want: GitLabProject{Namespace: "solidify/tools/internal", Name: "migration-test", Group: "solidify"},
		},
		{
			name: "trailing slash",
			url:  "https://gitlab.com/solidify/migration-test/",
			want: GitLabProject{Namespace: "solidify", Name: "migration-test", Group: "solidify"},
		},
		{
			name:    "missing project",
			url:     "https://gitlab.com/solidify",
			wantErr: true,
		},
		{
			name:    "bare host",
			url:     "https://gitlab.com",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGitLabRepoURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestGitLabProjectPath(t *testing.T) {
	p := GitLabProject{Namespace: "solidify/tools", Name: "migration-test"}
	require.Equal(t, "solidify/tools/migration-test", p.Path())
}

func TestParseGitHubRepoURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    GitHubRepo
		wantErr bool
	}{
		{
			name: "owner and repo",
			url:  "https://github.com/solidify-labs/migration-test",
			want: GitHubRepo{Owner: "solidify-labs", Name: "migration-test"},
		},
		{
			name: "trailing slash",
			url:  "https://github.com/solidify-labs/migration-test/",
			want: GitHubRepo{Owner: "solidify-labs", Name: "migration-test"},
		},
		{
			name:    "missing repo",
			url:     "https://github.com/solidify-labs",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGitHubRepoURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRequireNamesMissingVariables(t *testing.T) {
	cfg := &GlobalConfig{GitLabToken: "tok"}

	err := cfg.Require("GITLAB_API_PRIVATE_TOKEN", "GITLAB_API_ENDPOINT", "GITHUB_REPO_URL")
	require.Error(t, err)
	require.Contains(t, err.Error(), "GITLAB_API_ENDPOINT")
	require.Contains(t, err.Error(), "GITHUB_REPO_URL")
	require.NotContains(t, err.Error(), "GITLAB_API_PRIVATE_TOKEN")
}

func TestRequireAllPresent(t *testing.T) {
	cfg := &GlobalConfig{GitLabToken: "tok", GitLabEndpoint: "https://gitlab.com/api/v4"}
	require.NoError(t, cfg.Require("GITLAB_API_PRIVATE_TOKEN", "GITLAB_API_ENDPOINT"))
}

func TestLoadEnvFillsFromEnvironment(t *testing.T) {
	t.Setenv("GITLAB_API_PRIVATE_TOKEN", "gl-token")
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_PAT", "gh-token")
	t.Setenv("AZURE_KEYVAULT_NAME", "team-vault")

	cfg := &GlobalConfig{}
	require.NoError(t, cfg.LoadEnv())
	require.Equal(t, "gl-token", cfg.GitLabToken)
	require.Equal(t, "gh-token", cfg.GitHubToken)
	require.Equal(t, "team-vault", cfg.AzureKeyVaultName)
}

func TestLoadEnvKeyVaultNameKeepsFlagValue(t *testing.T) {
	t.Setenv("AZURE_KEYVAULT_NAME", "env-vault")

	cfg := &GlobalConfig{AzureKeyVaultName: "flag-vault"}
	require.NoError(t, cfg.LoadEnv())
	require.Equal(t, "flag-vault", cfg.AzureKeyVaultName)
}

func TestLoadEnvKeepsFlagValues(t *testing.T) {
	t.Setenv("GITLAB_API_PRIVATE_TOKEN", "env-token")

	cfg := &GlobalConfig{GitLabToken: "flag-token"}
	require.NoError(t, cfg.LoadEnv())
	require.Equal(t, "flag-token", cfg.GitLabToken)
}

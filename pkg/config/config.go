package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// GlobalConfig holds settings shared by every command. Fields left empty by
// flags are filled from environment variables (a .env file is honored).
type GlobalConfig struct {
	GitLabToken    string
	GitLabEndpoint string
	GitLabRepoURL  string

	GitHubToken               string
	GitHubRepoURL             string
	GitHubAppID               int
	GitHubAppInstallationID   int
	GitHubAppPrivateKey       string
	GitHubAppPrivateKeyAsFile bool

	AzureKeyVaultName string

	LogLevel string
}

// LoadEnv fills empty config fields from the environment. A local .env file
// is loaded first when present.
func (cfg *GlobalConfig) LoadEnv() error {
	_ = godotenv.Load()

	if cfg.GitLabToken == "" {
		cfg.GitLabToken = os.Getenv("GITLAB_API_PRIVATE_TOKEN")
	}
	if cfg.GitLabEndpoint == "" {
		cfg.GitLabEndpoint = os.Getenv("GITLAB_API_ENDPOINT")
	}
	if cfg.GitLabRepoURL == "" {
		cfg.GitLabRepoURL = os.Getenv("GITLAB_REPO_URL")
	}
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GH_PAT")
	}
	if cfg.GitHubRepoURL == "" {
		cfg.GitHubRepoURL = os.Getenv("GITHUB_REPO_URL")
	}
	if cfg.GitHubAppID == 0 {
		cfg.GitHubAppID, _ = strconv.Atoi(os.Getenv("GITHUB_APP_ID"))
	}
	if cfg.GitHubAppInstallationID == 0 {
		cfg.GitHubAppInstallationID, _ = strconv.Atoi(os.Getenv("GITHUB_APP_INSTALLATION_ID"))
	}
	if cfg.GitHubAppPrivateKey == "" {
		cfg.GitHubAppPrivateKey = os.Getenv("GITHUB_APP_PRIVATE_KEY")
	}
	if cfg.AzureKeyVaultName == "" {
		cfg.AzureKeyVaultName = os.Getenv("AZURE_KEYVAULT_NAME")
	}
	if cfg.GitHubAppPrivateKeyAsFile {
		privateKey, err := os.ReadFile(cfg.GitHubAppPrivateKey)
		if err != nil {
			return fmt.Errorf("could not read private key %s: %w", cfg.GitHubAppPrivateKey, err)
		}
		cfg.GitHubAppPrivateKey = string(privateKey)
	}
	return nil
}

// Require returns an error naming every listed environment variable whose
// corresponding config field is still empty.
func (cfg *GlobalConfig) Require(vars ...string) error {
	values := map[string]string{
		"GITLAB_API_PRIVATE_TOKEN": cfg.GitLabToken,
		"GITLAB_API_ENDPOINT":      cfg.GitLabEndpoint,
		"GITLAB_REPO_URL":          cfg.GitLabRepoURL,
		"GITHUB_TOKEN":             cfg.GitHubToken,
		"GITHUB_REPO_URL":          cfg.GitHubRepoURL,
		"AZURE_KEYVAULT_NAME":      cfg.AzureKeyVaultName,
	}
	var missing []string
	for _, v := range vars {
		if values[v] == "" {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GitLabProject identifies a GitLab project and the group it lives in.
type GitLabProject struct {
	Namespace string // full namespace, subgroups included
	Name      string
	Group     string // top-level group, used for group milestone lookups
}

// Path returns the namespace/name path accepted by the GitLab API as a
// project identifier.
func (p GitLabProject) Path() string {
	return p.Namespace + "/" + p.Name
}

// ParseGitLabRepoURL extracts the project identity from a repository URL like
// https://gitlab.com/group/subgroup/project.
func ParseGitLabRepoURL(repoURL string) (GitLabProject, error) {
	parsed, err := url.Parse(strings.TrimSuffix(repoURL, "/"))
	if err != nil {
		return GitLabProject{}, fmt.Errorf("invalid GitLab repository URL %q: %w", repoURL, err)
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		return GitLabProject{}, fmt.Errorf("invalid GitLab repository URL %q", repoURL)
	}
	return GitLabProject{
		Namespace: strings.Join(parts[:len(parts)-1], "/"),
		Name:      parts[len(parts)-1],
		Group:     parts[0],
	}, nil
}

// GitHubRepo identifies a GitHub repository.
type GitHubRepo struct {
	Owner string
	Name  string
}

// ParseGitHubRepoURL extracts owner and repository name from a URL like
// https://github.com/owner/repo.
func ParseGitHubRepoURL(repoURL string) (GitHubRepo, error) {
	parsed, err := url.Parse(strings.TrimSuffix(repoURL, "/"))
	if err != nil {
		return GitHubRepo{}, fmt.Errorf("invalid GitHub repository URL %q: %w", repoURL, err)
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		return GitHubRepo{}, fmt.Errorf("invalid GitHub repository URL %q", repoURL)
	}
	return GitHubRepo{Owner: parts[0], Name: parts[1]}, nil
}

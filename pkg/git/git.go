package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/solidify-labs/gl2gh/pkg/logger"
)

// Mirror moves repository content from GitLab to GitHub with a bare clone
// followed by a mirror push, so branches and tags arrive in one pass.
type Mirror struct {
	workingDir string
}

func NewMirror(workingDir string) *Mirror {
	return &Mirror{workingDir: workingDir}
}

// Run clones the source repository bare and mirror-pushes it to the target.
// Tokens are embedded into the clone/push URLs and never logged.
func (m *Mirror) Run(gitlabCloneURL, gitlabToken, githubCloneURL, githubToken string) error {
	if err := cleanupDirectory(m.workingDir); err != nil {
		return err
	}

	srcURL := withToken(gitlabCloneURL, "oauth2:"+gitlabToken)
	dstURL := withToken(githubCloneURL, githubToken)

	cloneCmd := fmt.Sprintf("git clone --bare %s %s", srcURL, m.workingDir)
	if err := executeCommand(cloneCmd, "git clone --bare <gitlab> "+m.workingDir, gitlabToken, githubToken); err != nil {
		return fmt.Errorf("failed to clone GitLab repository: %w", err)
	}

	pushCmd := fmt.Sprintf("cd %s && git push --mirror %s", m.workingDir, dstURL)
	if err := executeCommand(pushCmd, "git push --mirror <github>", gitlabToken, githubToken); err != nil {
		return fmt.Errorf("failed to mirror push to GitHub: %w", err)
	}
	return nil
}

// withToken injects credentials into an https clone URL.
func withToken(cloneURL, credentials string) string {
	return strings.Replace(cloneURL, "https://", "https://"+credentials+"@", 1)
}

// executeCommand runs a shell command. logged carries a redacted form of the
// command for debug logging. git echoes the remote URL on failure, token
// included, so the captured output is scrubbed before it reaches the error.
func executeCommand(cmd, logged string, secrets ...string) error {
	logger.Debug("Executing command", "cmd", logged)

	c := exec.Command("bash", "-c", cmd)
	output, err := c.CombinedOutput()
	if err != nil {
		return fmt.Errorf("command failed: %s\nOutput: %s", err, redactSecrets(string(output), secrets))
	}
	return nil
}

// redactSecrets masks every occurrence of the given secrets in s.
func redactSecrets(s string, secrets []string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, "***")
	}
	return s
}

// cleanupDirectory removes and recreates the working directory.
func cleanupDirectory(dir string) error {
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clean up directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

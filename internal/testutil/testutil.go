// Package testutil provides helpers for tests that need real executables
// or a real git repository
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// RequireShell skips the test on platforms without /bin/sh
func RequireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on Windows")
	}
}

// RequireGit skips the test when git is not installed
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}
}

// WriteFile writes content to dir/name, creating parent directories
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// WriteExecutable writes a shell script with the given body to dir/name
func WriteExecutable(t *testing.T, dir, name, body string) string {
	t.Helper()
	RequireShell(t)
	path := WriteFile(t, dir, name, "#!/bin/sh\n"+body+"\n")
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatalf("Failed to make %s executable: %v", name, err)
	}
	return path
}

// GitRepo is a throwaway repository in a temporary directory
type GitRepo struct {
	t   *testing.T
	Dir string
}

// InitGitRepo creates an empty repository isolated from the user's git configuration
func InitGitRepo(t *testing.T) *GitRepo {
	t.Helper()
	RequireGit(t)
	repo := &GitRepo{t: t, Dir: t.TempDir()}
	repo.Git("init", "-q")
	repo.Git("config", "user.email", "hooks@example.com")
	repo.Git("config", "user.name", "Hooks")
	repo.Git("config", "commit.gpgsign", "false")
	return repo
}

// Git runs a git command in the repository and fails the test on error
func (r *GitRepo) Git(args ...string) {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL="+os.DevNull, "GIT_CONFIG_SYSTEM="+os.DevNull)
	if out, err := cmd.CombinedOutput(); err != nil {
		r.t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}

// Write writes a file inside the repository
func (r *GitRepo) Write(name, content string) string {
	r.t.Helper()
	return WriteFile(r.t, r.Dir, name, content)
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rugaard/git-hooks-php/domain"
)

// GitClient implements domain.VersionControl with the git command line
type GitClient struct {
	workDir string
	binary  string
}

// NewGitClient creates a git client running in workDir
func NewGitClient(workDir string) *GitClient {
	return &GitClient{workDir: workDir, binary: "git"}
}

// ListStagedFiles lists files in the index that differ from HEAD and lie
// under the working directory
func (g *GitClient) ListStagedFiles(ctx context.Context, extension string, filters ...string) ([]string, error) {
	return g.diff(ctx, true, extension, filters)
}

// ListUnstagedFiles lists files whose working-tree content differs from the index
func (g *GitClient) ListUnstagedFiles(ctx context.Context, extension string, filters ...string) ([]string, error) {
	return g.diff(ctx, false, extension, filters)
}

func (g *GitClient) diff(ctx context.Context, cached bool, extension string, filters []string) ([]string, error) {
	args := []string{"diff"}
	if cached {
		args = append(args, "--cached")
	}
	// Paths are relative to workDir, where the tools run; files outside it are left out
	args = append(args, "--name-only", "--relative")
	args = append(args, filters...)
	if extension != "" {
		args = append(args, "--", "*."+extension)
	}

	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func (g *GitClient) run(ctx context.Context, args ...string) ([]byte, error) {
	// Paths with non-ASCII characters are printed verbatim instead of octal-escaped
	full := append([]string{"-c", "core.quotePath=false"}, args...)

	cmd := exec.CommandContext(ctx, g.binary, full...)
	cmd.Dir = g.workDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, domain.NewVCSError(fmt.Sprintf("git %s failed: %s", strings.Join(args, " "), msg), err)
	}
	return out, nil
}

func splitLines(out []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

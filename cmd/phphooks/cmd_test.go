package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rugaard/git-hooks-php/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("GIT_HOOKS_CONFIG", "")
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *HookExitError
	require.True(t, errors.As(err, &exitErr), "expected HookExitError, got %v", err)
	return exitErr.Code
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "phphooks version "))

	out, _, err = execute(t, "version", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "commit:")
}

func TestRootCommand_ListsHooks(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	for _, hook := range []string{"php:cs", "php:lint", "php:analyze", "php:test-suite", "init"} {
		assert.Contains(t, out, hook)
	}
}

func TestStyleCommand_MissingPHPCS(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "php:cs", "--workdir", dir, "--no-color")

	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, "Checking coding style in PHP files")
	assert.Contains(t, out, "Could not locate PHP-CS: "+filepath.Join(dir, "vendor", "bin", "phpcs"))
}

func TestAnalyzeCommand_MissingPHPStanAsJSON(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "php:analyze", "--workdir", dir, "--format", "json")

	assert.Equal(t, 1, exitCode(t, err))
	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary), "stdout must hold only the JSON summary: %s", out)
	assert.Equal(t, "php:analyze", summary["hook"])
	assert.Equal(t, "failure", summary["status"])
	assert.Equal(t, "TOOL_NOT_FOUND", summary["error_code"])
}

func TestTestSuiteCommand_RequiresRemoteAndURL(t *testing.T) {
	_, _, err := execute(t, "php:test-suite", "--workdir", t.TempDir())
	require.Error(t, err)

	var exitErr *HookExitError
	assert.False(t, errors.As(err, &exitErr), "argument errors are usage errors")
}

func TestTestSuiteCommand_MissingDriver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "git-hooks.config.json"),
		[]byte(`{"php:test-suite": {"driver": "pest"}}`), 0644))

	out, _, err := execute(t, "php:test-suite", "origin", "git@example.com:acme/app.git", "--workdir", dir, "--no-color")

	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, "Could not locate driver: "+filepath.Join(dir, "vendor", "bin", "pest"))
}

func TestHookCommand_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "git-hooks.config.json"),
		[]byte(`{"php:analyze": {"level": 12}}`), 0644))

	_, _, err := execute(t, "php:analyze", "--workdir", dir)

	assert.Equal(t, 2, exitCode(t, err))
	assert.Contains(t, err.Error(), "configuration file is invalid")
}

func TestHookCommand_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, "php:lint", "--workdir", t.TempDir(), "--format", "xml")
	assert.Equal(t, 2, exitCode(t, err))
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, exitGateFailed, exitCodeFor(nil))
	assert.Equal(t, exitGateFailed, exitCodeFor(errors.New("boom")))
}

func TestInitCommand_BasicConfigCreation(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "git-hooks.config.json")

	out, _, err := execute(t, "init", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(content, &doc))
	for _, section := range []string{"php:cs", "php:lint", "php:analyze", "php:test-suite"} {
		assert.Contains(t, doc, section)
	}
	assert.Equal(t, "PSR-12", doc["php:cs"]["standard"])
	assert.Nil(t, doc["php:analyze"]["memory-limit"])

	// the generated file loads back to the defaults
	cfg, err := config.LoadConfig(configPath, "")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAnalysisLevel, cfg.Analyze.Level)
	assert.True(t, cfg.Style.OnlyStaged)
}

func TestInitCommand_YAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "hooks.yaml")

	_, _, err := execute(t, "init", "--config", configPath)
	require.NoError(t, err)

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(content, &doc))
	assert.Equal(t, "phpunit", doc["php:test-suite"]["driver"])
}

func TestInitCommand_ForceOverwrite(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "git-hooks.config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"existing": true}`), 0644))

	_, _, err := execute(t, "init", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = execute(t, "init", "--config", configPath, "--force")
	require.NoError(t, err)

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "existing")
}

func TestInitCommand_MissingDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "missing", "git-hooks.config.json")

	_, _, err := execute(t, "init", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory does not exist")
}

func TestIndexOfStandard(t *testing.T) {
	standards := config.SupportedStandards()
	assert.Equal(t, "PSR-12", standards[indexOfStandard(standards, "PSR-12")].Display)
	assert.Equal(t, 0, indexOfStandard(standards, "Unknown"))
}

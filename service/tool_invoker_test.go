package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rugaard/git-hooks-php/domain"
	"github.com/rugaard/git-hooks-php/internal/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript creates an executable shell script in a temporary directory
func writeScript(t *testing.T, body string) string {
	t.Helper()
	return testutil.WriteExecutable(t, t.TempDir(), "tool", body)
}

func TestToolInvoker_BlockingCapturesOutput(t *testing.T) {
	script := writeScript(t, `echo "out $1"; echo "err" >&2`)
	var streamed bytes.Buffer
	invoker := NewToolInvoker(&streamed, &streamed)

	res, err := invoker.Invoke(context.Background(), domain.ToolInvocation{
		Executable: script,
		Args:       []string{"--report=json"},
		Mode:       domain.ExecutionModeBlocking,
	})
	require.NoError(t, err)

	assert.True(t, res.ExitSuccess)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out --report=json\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
	assert.Empty(t, streamed.String(), "blocking mode must not forward output")
}

func TestToolInvoker_StreamingForwardsOutput(t *testing.T) {
	script := writeScript(t, `echo "line 1"; echo "problem" >&2; echo "line 2"`)
	var stdout, stderr bytes.Buffer
	invoker := NewToolInvoker(&stdout, &stderr)

	res, err := invoker.Invoke(context.Background(), domain.ToolInvocation{
		Executable: script,
		Mode:       domain.ExecutionModeStreaming,
	})
	require.NoError(t, err)

	assert.True(t, res.ExitSuccess)
	assert.Equal(t, "line 1\nline 2\n", stdout.String())
	assert.Equal(t, "problem\n", stderr.String())
	assert.Equal(t, stdout.String(), string(res.Stdout))
}

func TestToolInvoker_NonZeroExitIsNotAnError(t *testing.T) {
	script := writeScript(t, `echo '{"totals":{}}'; exit 2`)
	invoker := NewToolInvoker(&bytes.Buffer{}, &bytes.Buffer{})

	for _, mode := range []domain.ExecutionMode{domain.ExecutionModeBlocking, domain.ExecutionModeStreaming} {
		res, err := invoker.Invoke(context.Background(), domain.ToolInvocation{Executable: script, Mode: mode})
		require.NoError(t, err, mode.String())
		assert.False(t, res.ExitSuccess, mode.String())
		assert.Equal(t, 2, res.ExitCode, mode.String())
		assert.Contains(t, string(res.Stdout), "totals", mode.String())
	}
}

func TestToolInvoker_WorkDir(t *testing.T) {
	script := writeScript(t, `pwd`)
	dir := t.TempDir()

	res, err := NewToolInvoker(&bytes.Buffer{}, &bytes.Buffer{}).Invoke(context.Background(), domain.ToolInvocation{
		Executable: script,
		WorkDir:    dir,
	})
	require.NoError(t, err)

	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(string(bytes.TrimSpace(res.Stdout)))
	assert.Equal(t, want, got)
}

func TestToolInvoker_Timeout(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)

	_, err := NewToolInvoker(&bytes.Buffer{}, &bytes.Buffer{}).Invoke(context.Background(), domain.ToolInvocation{
		Tool:       "PHPStan",
		Executable: script,
		Timeout:    100 * time.Millisecond,
	})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeToolExecutionFailed))
	assert.Contains(t, err.Error(), "PHPStan did not finish")
}

func TestToolInvoker_MissingExecutable(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "vendor", "bin", "phpcs")

	for _, mode := range []domain.ExecutionMode{domain.ExecutionModeBlocking, domain.ExecutionModeStreaming} {
		_, err := NewToolInvoker(&bytes.Buffer{}, &bytes.Buffer{}).Invoke(context.Background(), domain.ToolInvocation{
			Tool:       "PHP-CS",
			Executable: missing,
			Mode:       mode,
		})
		assert.True(t, domain.HasCode(err, domain.ErrCodeToolNotFound), "%s: got %v", mode, err)
		assert.Contains(t, err.Error(), "Could not locate PHP-CS: "+missing)
	}

	_, err := NewToolInvoker(&bytes.Buffer{}, &bytes.Buffer{}).Invoke(context.Background(), domain.ToolInvocation{
		Executable: "php-does-not-exist",
	})
	assert.True(t, domain.HasCode(err, domain.ErrCodeToolNotFound), "bare names missing from PATH: got %v", err)
}

func TestToolInvoker_StreamingTimeoutWithBackgroundChild(t *testing.T) {
	// The background sleep inherits stdout and keeps it open after the
	// script itself is killed
	script := writeScript(t, "sleep 30 &\nexec sleep 30")

	start := time.Now()
	_, err := NewToolInvoker(&bytes.Buffer{}, &bytes.Buffer{}).Invoke(context.Background(), domain.ToolInvocation{
		Tool:       "Pest",
		Executable: script,
		Mode:       domain.ExecutionModeStreaming,
		Timeout:    100 * time.Millisecond,
	})

	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeToolExecutionFailed))
	assert.Contains(t, err.Error(), "Pest did not finish")
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestToolInvoker_Locate(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/vendor/bin/phpcs", []byte("#!/bin/sh"), 0o755))
	require.NoError(t, afero.WriteFile(fs, "/repo/vendor/bin/phpstan", []byte("<?php"), 0o644))
	require.NoError(t, fs.MkdirAll("/repo/vendor/bin/pest", 0o755))

	invoker := NewToolInvoker(&bytes.Buffer{}, &bytes.Buffer{}).WithFs(fs)

	path, err := invoker.Locate("PHP-CS", "/repo/vendor/bin/phpcs")
	require.NoError(t, err)
	assert.Equal(t, "/repo/vendor/bin/phpcs", path)

	_, err = invoker.Locate("PHP-CS", "/repo/vendor/bin/missing")
	assert.True(t, domain.HasCode(err, domain.ErrCodeToolNotFound))
	assert.Contains(t, err.Error(), "Could not locate PHP-CS: /repo/vendor/bin/missing")

	_, err = invoker.Locate("driver", "/repo/vendor/bin/pest")
	assert.True(t, domain.HasCode(err, domain.ErrCodeToolNotFound), "directories are not executables")

	if runtime.GOOS != "windows" {
		_, err = invoker.Locate("PHPStan", "/repo/vendor/bin/phpstan")
		assert.True(t, domain.HasCode(err, domain.ErrCodeToolNotFound), "non-executable files are rejected")
	}
}

func TestToolInvoker_LocateInPath(t *testing.T) {
	script := writeScript(t, `exit 0`)
	t.Setenv("PATH", filepath.Dir(script))

	invoker := NewToolInvoker(&bytes.Buffer{}, &bytes.Buffer{})
	path, err := invoker.Locate("PHP", "tool")
	require.NoError(t, err)
	assert.Equal(t, script, path)

	_, err = invoker.Locate("PHP", "php-does-not-exist")
	assert.True(t, domain.HasCode(err, domain.ErrCodeToolNotFound))
}

func TestBuildArgs(t *testing.T) {
	args := BuildArgs(
		[]string{"analyse", "--error-format=json", "--no-progress"},
		[]Flag{
			{Name: "--configuration", Value: "phpstan.neon"},
			{Name: "--memory-limit", Value: ""},
			{Name: "--level", Value: "8"},
		},
		[]string{"src", "tests"},
	)

	assert.Equal(t, []string{
		"analyse", "--error-format=json", "--no-progress",
		"--configuration=phpstan.neon", "--level=8",
		"src", "tests",
	}, args)

	assert.Empty(t, BuildArgs(nil, []Flag{{Name: "--printer"}}, nil))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, os.ErrClosed }

func TestTeeWriter_KeepsCollectingAfterWriteFailure(t *testing.T) {
	var buf bytes.Buffer
	w := &teeWriter{dst: failingWriter{}, buf: &buf}

	for i := 0; i < 3; i++ {
		n, err := w.Write([]byte("chunk\n"))
		require.NoError(t, err)
		assert.Equal(t, 6, n)
	}

	assert.ErrorIs(t, w.err, os.ErrClosed)
	assert.Equal(t, "chunk\nchunk\nchunk\n", buf.String())
}

func TestToolInvoker_StreamingReportsForwardFailure(t *testing.T) {
	script := writeScript(t, `echo "line"`)

	res, err := NewToolInvoker(failingWriter{}, &bytes.Buffer{}).Invoke(context.Background(), domain.ToolInvocation{
		Executable: script,
		Mode:       domain.ExecutionModeStreaming,
	})

	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeToolExecutionFailed))
	assert.Equal(t, "line\n", string(res.Stdout))
}

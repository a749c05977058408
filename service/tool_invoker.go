package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rugaard/git-hooks-php/domain"
	"github.com/spf13/afero"
)

// waitDelay bounds how long output is still collected after the process was killed
const waitDelay = 2 * time.Second

// ToolInvokerImpl implements domain.ToolInvoker with os/exec
type ToolInvokerImpl struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
}

// NewToolInvoker creates an invoker forwarding streamed output to stdout and stderr
func NewToolInvoker(stdout, stderr io.Writer) *ToolInvokerImpl {
	return &ToolInvokerImpl{
		fs:     afero.NewOsFs(),
		stdout: stdout,
		stderr: stderr,
	}
}

// WithFs replaces the filesystem used to locate executables
func (t *ToolInvokerImpl) WithFs(fs afero.Fs) *ToolInvokerImpl {
	t.fs = fs
	return t
}

// Locate checks that path names an executable file. Bare command names
// such as "php" are resolved through PATH.
func (t *ToolInvokerImpl) Locate(tool, path string) (string, error) {
	if !strings.ContainsRune(path, '/') && !strings.ContainsRune(path, filepath.Separator) {
		resolved, err := exec.LookPath(path)
		if err != nil {
			return "", domain.NewToolNotFoundError(tool, path, err)
		}
		return resolved, nil
	}

	info, err := t.fs.Stat(path)
	if err != nil {
		return "", domain.NewToolNotFoundError(tool, path, nil)
	}
	if info.IsDir() {
		return "", domain.NewToolNotFoundError(tool, path, nil)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return "", domain.NewToolNotFoundError(tool, path, errors.New("file is not executable"))
	}
	return path, nil
}

// Invoke runs the tool and waits for it to exit. A non-zero exit status is
// reported on the result, not as an error.
func (t *ToolInvokerImpl) Invoke(ctx context.Context, inv domain.ToolInvocation) (*domain.InvocationResult, error) {
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Executable, inv.Args...)
	cmd.Dir = inv.WorkDir
	cmd.Env = os.Environ()
	// Grandchildren holding the output pipes must not keep a cancelled run alive
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	start := time.Now()

	var outTee, errTee *teeWriter
	if inv.Mode == domain.ExecutionModeStreaming {
		outTee = &teeWriter{dst: t.stdout, buf: &stdout}
		errTee = &teeWriter{dst: t.stderr, buf: &stderr}
		cmd.Stdout = outTee
		cmd.Stderr = errTee
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}
	err := cmd.Run()
	if err == nil && outTee != nil {
		err = errors.Join(outTee.err, errTee.err)
	}

	result := &domain.InvocationResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err == nil {
		result.ExitSuccess = true
		return result, nil
	}

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
		return result, domain.NewToolNotFoundError(toolName(inv), inv.Executable, err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, domain.NewToolExecutionError(fmt.Sprintf("%s did not finish", toolName(inv)), ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return result, domain.NewToolExecutionError(fmt.Sprintf("failed to run %s", toolName(inv)), err)
}

// teeWriter forwards streamed output to dst and keeps a copy in buf.
// Once dst fails the output is still collected, so the child never blocks
// on a full pipe, and the first error is kept.
type teeWriter struct {
	dst io.Writer
	buf *bytes.Buffer
	err error
}

func (w *teeWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	if w.err == nil {
		if _, err := w.dst.Write(p); err != nil {
			w.err = err
		}
	}
	return len(p), nil
}

func toolName(inv domain.ToolInvocation) string {
	if inv.Tool != "" {
		return inv.Tool
	}
	return filepath.Base(inv.Executable)
}

// Flag is an optional command-line flag; it is omitted when Value is empty
type Flag struct {
	Name  string
	Value string
}

// BuildArgs assembles arguments in a fixed order: control flags, then the
// optional flags that have a value, then trailing paths
func BuildArgs(fixed []string, optional []Flag, trailing []string) []string {
	args := make([]string, 0, len(fixed)+len(optional)+len(trailing))
	args = append(args, fixed...)
	for _, f := range optional {
		if f.Value == "" {
			continue
		}
		args = append(args, f.Name+"="+f.Value)
	}
	return append(args, trailing...)
}

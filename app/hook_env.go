package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rugaard/git-hooks-php/domain"
	"github.com/rugaard/git-hooks-php/internal/constants"
	"github.com/rugaard/git-hooks-php/internal/logging"
	"github.com/rugaard/git-hooks-php/service"
	"github.com/spf13/afero"
)

// Closing line of a rejected staged file set
const conflictHint = "Fix the error and try again."

// HookEnv bundles the collaborators shared by every hook use case
type HookEnv struct {
	WorkDir  string
	Out      io.Writer
	Files    domain.FileSetResolver
	Configs  domain.ConfigResolver
	Invoker  domain.ToolInvoker
	Parser   domain.ResultParser
	Renderer domain.ReportRenderer
	Progress domain.ProgressManager

	// Timeout bounds each tool run; zero means no limit
	Timeout time.Duration

	helper *FileHelper
}

// HookEnvBuilder provides a builder pattern for creating HookEnv
type HookEnvBuilder struct {
	env HookEnv
	fs  afero.Fs
}

// NewHookEnvBuilder creates a new builder
func NewHookEnvBuilder() *HookEnvBuilder {
	return &HookEnvBuilder{}
}

// WithWorkDir sets the project root the hooks run in
func (b *HookEnvBuilder) WithWorkDir(dir string) *HookEnvBuilder {
	b.env.WorkDir = dir
	return b
}

// WithOutput sets the writer receiving reports
func (b *HookEnvBuilder) WithOutput(w io.Writer) *HookEnvBuilder {
	b.env.Out = w
	return b
}

// WithFs sets the filesystem used for existence checks
func (b *HookEnvBuilder) WithFs(fs afero.Fs) *HookEnvBuilder {
	b.fs = fs
	return b
}

// WithFileSetResolver sets the file set resolver
func (b *HookEnvBuilder) WithFileSetResolver(r domain.FileSetResolver) *HookEnvBuilder {
	b.env.Files = r
	return b
}

// WithConfigResolver sets the tool configuration resolver
func (b *HookEnvBuilder) WithConfigResolver(r domain.ConfigResolver) *HookEnvBuilder {
	b.env.Configs = r
	return b
}

// WithInvoker sets the tool invoker
func (b *HookEnvBuilder) WithInvoker(i domain.ToolInvoker) *HookEnvBuilder {
	b.env.Invoker = i
	return b
}

// WithParser sets the result parser
func (b *HookEnvBuilder) WithParser(p domain.ResultParser) *HookEnvBuilder {
	b.env.Parser = p
	return b
}

// WithRenderer sets the report renderer
func (b *HookEnvBuilder) WithRenderer(r domain.ReportRenderer) *HookEnvBuilder {
	b.env.Renderer = r
	return b
}

// WithProgress sets the progress manager
func (b *HookEnvBuilder) WithProgress(p domain.ProgressManager) *HookEnvBuilder {
	b.env.Progress = p
	return b
}

// WithTimeout bounds each tool run
func (b *HookEnvBuilder) WithTimeout(d time.Duration) *HookEnvBuilder {
	b.env.Timeout = d
	return b
}

// Build creates the HookEnv with the configured dependencies
func (b *HookEnvBuilder) Build() (*HookEnv, error) {
	env := b.env
	switch {
	case env.WorkDir == "":
		return nil, fmt.Errorf("working directory is required")
	case env.Files == nil:
		return nil, fmt.Errorf("file set resolver is required")
	case env.Invoker == nil:
		return nil, fmt.Errorf("tool invoker is required")
	case env.Renderer == nil:
		return nil, fmt.Errorf("report renderer is required")
	}

	fs := b.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if env.Out == nil {
		env.Out = io.Discard
	}
	if env.Configs == nil {
		env.Configs = service.NewConfigResolver(fs)
	}
	if env.Parser == nil {
		env.Parser = service.NewResultParser()
	}
	if env.Progress == nil {
		env.Progress = &service.NoOpProgressManager{}
	}
	env.helper = NewFileHelper(fs, env.WorkDir)
	return &env, nil
}

func (e *HookEnv) print(text string) {
	if text != "" {
		_, _ = io.WriteString(e.Out, text)
	}
}

// fail prints the failure block for err and returns the matching outcome
func (e *HookEnv) fail(err error, details ...string) domain.HookOutcome {
	e.print(e.Renderer.Failure(failureMessage(err), details...))
	return domain.Failed(err)
}

func failureMessage(err error) string {
	var de domain.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// resolveConfig picks the tool configuration and announces the choice
func (e *HookEnv) resolveConfig(ctx context.Context, override string, candidates domain.ConfigCandidates) domain.ResolvedConfig {
	resolved := e.Configs.Resolve(override, e.WorkDir, candidates)
	if override != "" && resolved.Kind != domain.ConfigSourceExplicit {
		logging.Warn(ctx, "configured tool configuration file is not used",
			slog.String("config", override),
			slog.String("using", resolved.Kind.Label()),
		)
	}
	if resolved.Found() {
		e.print(e.Renderer.Info(fmt.Sprintf("Using %s configuration file (%s)", resolved.Kind.Label(), resolved.Name)))
	}
	logging.Debug(ctx, "resolved tool configuration",
		slog.String("source", resolved.Kind.Label()),
		slog.String("path", resolved.Path),
	)
	return resolved
}

// stagedFiles resolves the staged file set and rejects it when any staged
// file also has unstaged changes. The conflict listing is printed here.
func (e *HookEnv) stagedFiles(ctx context.Context, req domain.CheckRequest) (*domain.FileSet, error) {
	set, err := e.Files.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	logging.Debug(ctx, "resolved staged files",
		slog.Int("staged", len(set.Staged)),
		slog.Int("unstaged", len(set.Unstaged)),
		slog.Int("conflicting", len(set.Conflicting)),
	)
	if set.HasConflicts() {
		e.print(e.Renderer.Failure("Following staged files has unstaged changes:"))
		e.print(e.Renderer.Listing("", set.Conflicting))
		e.print(e.Renderer.Hint(conflictHint))
		return set, domain.NewStagedUnstagedConflictError(set.Conflicting)
	}
	return set, nil
}

// failStaged maps an error from stagedFiles to the hook outcome. Conflicts
// were already printed.
func (e *HookEnv) failStaged(err error) domain.HookOutcome {
	if domain.HasCode(err, domain.ErrCodeStagedUnstagedConflict) {
		return domain.Failed(err)
	}
	return e.fail(err)
}

// run invokes a tool with the environment's timeout and logs the outcome
func (e *HookEnv) run(ctx context.Context, inv domain.ToolInvocation) (*domain.InvocationResult, error) {
	inv.WorkDir = e.WorkDir
	inv.Timeout = e.Timeout

	logging.Debug(ctx, "invoking tool",
		slog.String("tool", inv.Tool),
		slog.String("executable", inv.Executable),
		slog.Any("args", inv.Args),
		slog.String("mode", inv.Mode.String()),
	)

	res, err := e.Invoker.Invoke(ctx, inv)
	if res != nil {
		logging.Debug(ctx, "tool finished",
			slog.String("tool", inv.Tool),
			slog.Int("exit_code", res.ExitCode),
			slog.Duration("duration", res.Duration),
			slog.String("stdout", humanize.Bytes(uint64(len(res.Stdout)))),
			slog.String("stderr", humanize.Bytes(uint64(len(res.Stderr)))),
		)
	}
	return res, err
}

// finish renders a parsed result and maps it to the hook outcome
func (e *HookEnv) finish(result *domain.CheckResult, opts domain.RenderOptions) domain.HookOutcome {
	report := e.Renderer.Render(result, opts)
	e.print(report.Text)

	if report.Status == domain.ExitStatusSuccess {
		return domain.Succeeded().WithResult(result)
	}

	var err error
	switch {
	case result.UnparsableOutput:
		err = domain.NewUnparsableOutputError(opts.DecodeFailure, nil)
	case result.TotalDiagnostics() > 0:
		err = domain.NewToolReportedFindingsError(opts.FailureHeadline)
	default:
		err = domain.NewToolExecutionError(opts.FailureHeadline, nil)
	}
	return domain.Failed(err).WithResult(result)
}

// done prints the success block of a hook with nothing to check
func (e *HookEnv) done() domain.HookOutcome {
	e.print(e.Renderer.Success("Done"))
	return domain.Succeeded()
}

// noPaths reports a missing path list
func (e *HookEnv) noPaths(err error) domain.HookOutcome {
	return e.fail(err, fmt.Sprintf("Add paths in your %q file.", constants.ConfigFileName))
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rugaard/git-hooks-php/app"
	"github.com/rugaard/git-hooks-php/domain"
	"github.com/rugaard/git-hooks-php/internal/config"
	"github.com/rugaard/git-hooks-php/internal/constants"
	"github.com/rugaard/git-hooks-php/internal/logging"
	"github.com/rugaard/git-hooks-php/internal/version"
	"github.com/rugaard/git-hooks-php/service"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every hook command
type globalOptions struct {
	configPath string
	workDir    string
	format     string
	noColor    bool
	verbose    bool
	timeout    time.Duration
}

func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to the git-hooks config file (default: "+constants.ConfigFileName+" in the working directory)")
	flags.String("workdir", "", "Project root the hooks run in (default: current directory)")
	flags.String("format", constants.OutputFormatText, "Output format: text or json")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("verbose", false, "Log debug information to stderr")
	flags.Duration("timeout", 0, "Abort a tool that runs longer than this (0 = no limit)")
}

func readGlobalOptions(cmd *cobra.Command) (globalOptions, error) {
	flags := cmd.Flags()
	opts := globalOptions{}
	opts.configPath, _ = flags.GetString("config")
	opts.workDir, _ = flags.GetString("workdir")
	opts.format, _ = flags.GetString("format")
	opts.noColor, _ = flags.GetBool("no-color")
	opts.verbose, _ = flags.GetBool("verbose")
	opts.timeout, _ = flags.GetDuration("timeout")

	if opts.format != constants.OutputFormatText && opts.format != constants.OutputFormatJSON {
		return opts, fmt.Errorf("unsupported format %q (use text or json)", opts.format)
	}
	if opts.timeout < 0 {
		return opts, fmt.Errorf("timeout can not be negative")
	}

	if opts.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return opts, fmt.Errorf("failed to determine working directory: %w", err)
		}
		opts.workDir = wd
	}
	abs, err := filepath.Abs(opts.workDir)
	if err != nil {
		return opts, fmt.Errorf("invalid working directory %s: %w", opts.workDir, err)
	}
	opts.workDir = abs
	return opts, nil
}

// hookRunner executes one hook with a prepared environment
type hookRunner func(ctx context.Context, env *app.HookEnv, cfg *config.Config) domain.HookOutcome

// runHook wires the services for a hook command, runs it and maps the
// outcome to an exit code
func runHook(cmd *cobra.Command, hook string, run hookRunner) error {
	opts, err := readGlobalOptions(cmd)
	if err != nil {
		return &HookExitError{Code: exitConfigError, Message: err.Error()}
	}

	noColor := opts.noColor || os.Getenv("NO_COLOR") != ""
	logger := logging.New(cmd.ErrOrStderr(), logging.Options{Verbose: opts.verbose, NoColor: noColor})
	ctx := logging.Put(cmd.Context(), logger)
	logging.Debug(ctx, "starting hook",
		slog.String("hook", hook),
		slog.String("version", version.UserAgent()),
		slog.String("workdir", opts.workDir),
	)

	cfg, err := service.NewConfigurationLoader(opts.workDir).LoadConfig(opts.configPath)
	if err != nil {
		return &HookExitError{Code: exitConfigError, Message: err.Error()}
	}
	if cfg.Path != "" {
		logging.Debug(ctx, "loaded configuration", slog.String("path", cfg.Path))
	}

	format := domain.OutputFormat(opts.format)
	out := cmd.OutOrStdout()

	// Streamed tool output must not corrupt the JSON document on stdout
	toolOut := out
	if format == domain.OutputFormatJSON {
		toolOut = cmd.ErrOrStderr()
	}

	fs := afero.NewOsFs()
	env, err := app.NewHookEnvBuilder().
		WithWorkDir(opts.workDir).
		WithOutput(out).
		WithFs(fs).
		WithFileSetResolver(service.NewFileSetResolver(service.NewGitClient(opts.workDir), fs, opts.workDir)).
		WithConfigResolver(service.NewConfigResolver(fs)).
		WithInvoker(service.NewToolInvoker(toolOut, cmd.ErrOrStderr())).
		WithParser(service.NewResultParser()).
		WithRenderer(service.NewReportRenderer(opts.workDir, format, noColor)).
		WithProgress(service.NewProgressManager(format == domain.OutputFormatText && !opts.verbose)).
		WithTimeout(opts.timeout).
		Build()
	if err != nil {
		return &HookExitError{Code: exitConfigError, Message: err.Error()}
	}
	defer env.Progress.Close()

	outcome := run(ctx, env, cfg)
	logging.Debug(ctx, "hook finished",
		slog.String("hook", hook),
		slog.String("status", outcome.Status.String()),
		slog.String("error_code", domain.ErrorCode(outcome.Err)),
	)

	if format == domain.OutputFormatJSON {
		if err := writeSummary(out, env.Renderer, hook, outcome); err != nil {
			logging.Error(ctx, "failed to write summary", slog.String("hook", hook), slog.Any("error", err))
			return &HookExitError{Code: exitConfigError, Message: err.Error()}
		}
	}

	if outcome.Status == domain.ExitStatusSuccess {
		return nil
	}
	return &HookExitError{Code: exitCodeFor(outcome.Err)}
}

func writeSummary(w io.Writer, renderer domain.ReportRenderer, hook string, outcome domain.HookOutcome) error {
	summary, err := renderer.Summary(hook, outcome)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, summary); err != nil {
		return domain.NewOutputError("failed to write summary", err)
	}
	return nil
}

func exitCodeFor(err error) int {
	if domain.HasCode(err, domain.ErrCodeConfigError) || domain.HasCode(err, domain.ErrCodeInvalidInput) {
		return exitConfigError
	}
	return exitGateFailed
}

func styleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   constants.HookStyle,
		Short: "Check coding style of staged PHP files with phpcs",
		Long: `Check coding style with ./vendor/bin/phpcs.

A phpcs.xml or phpcs.xml.dist in the project root (or the file named by
"config") selects the rules; otherwise the configured standard is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHook(cmd, constants.HookStyle, func(ctx context.Context, env *app.HookEnv, cfg *config.Config) domain.HookOutcome {
				return app.NewStyleUseCase(env).Execute(ctx, cfg.Style)
			})
		},
	}
}

func lintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   constants.HookLint,
		Short: "Check staged PHP files for syntax errors with php -l",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHook(cmd, constants.HookLint, func(ctx context.Context, env *app.HookEnv, cfg *config.Config) domain.HookOutcome {
				return app.NewLintUseCase(env).Execute(ctx, cfg.Lint)
			})
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   constants.HookAnalyze,
		Short: "Static analysis of staged PHP files with phpstan",
		Long: `Run ./vendor/bin/phpstan against the staged PHP files, or against the
configured paths when onlyStaged is disabled.

Without a phpstan.neon or phpstan.neon.dist the configured rule level is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHook(cmd, constants.HookAnalyze, func(ctx context.Context, env *app.HookEnv, cfg *config.Config) domain.HookOutcome {
				return app.NewAnalyzeUseCase(env).Execute(ctx, cfg.Analyze)
			})
		},
	}
}

func testSuiteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   constants.HookTestSuite + " <remote> <url>",
		Short: "Run the PHP test suite with phpunit or pest",
		Long: `Run the test suite before pushing. git passes the remote name and URL
to pre-push hooks; they are accepted for that reason.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := app.PushTarget{Remote: args[0], URL: args[1]}
			return runHook(cmd, constants.HookTestSuite, func(ctx context.Context, env *app.HookEnv, cfg *config.Config) domain.HookOutcome {
				return app.NewTestSuiteUseCase(env).Execute(ctx, cfg.TestSuite, target)
			})
		},
	}
}

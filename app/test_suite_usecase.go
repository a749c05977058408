package app

import (
	"context"
	"log/slog"

	"github.com/rugaard/git-hooks-php/domain"
	"github.com/rugaard/git-hooks-php/internal/config"
	"github.com/rugaard/git-hooks-php/internal/logging"
	"github.com/rugaard/git-hooks-php/service"
)

var testSuiteConfigCandidates = domain.ConfigCandidates{
	ProjectDefault:     "phpunit.xml",
	DistributedDefault: "phpunit.xml.dist",
}

// PushTarget identifies the remote a pre-push hook was triggered for
type PushTarget struct {
	Remote string
	URL    string
}

// TestSuiteUseCase runs the project's test suite before a push
type TestSuiteUseCase struct {
	env *HookEnv
}

// NewTestSuiteUseCase creates a new test suite use case
func NewTestSuiteUseCase(env *HookEnv) *TestSuiteUseCase {
	return &TestSuiteUseCase{env: env}
}

// Execute runs php:test-suite. The runner's output is streamed as it runs;
// only its exit status decides the outcome.
func (uc *TestSuiteUseCase) Execute(ctx context.Context, cfg config.TestSuiteConfig, target PushTarget) domain.HookOutcome {
	env := uc.env
	env.print(env.Renderer.Section("Running PHP test suite"))

	logging.Debug(ctx, "pre-push target",
		slog.String("remote", target.Remote),
		slog.String("url", target.URL),
	)

	driver, err := env.Invoker.Locate("driver", env.helper.VendorBin(cfg.ResolvedDriver()))
	if err != nil {
		return env.fail(err)
	}

	resolved := env.resolveConfig(ctx, cfg.Config, testSuiteConfigCandidates)
	if !resolved.Found() {
		return env.fail(domain.NewConfigNotFoundError("No configuration file found."))
	}

	res, err := env.run(ctx, domain.ToolInvocation{
		Tool:       cfg.ResolvedDriver(),
		Executable: driver,
		Args: service.BuildArgs(nil, []service.Flag{
			{Name: "--configuration", Value: resolved.Path},
			{Name: "--printer", Value: cfg.Printer},
		}, nil),
		Mode: domain.ExecutionModeStreaming,
	})
	if err != nil {
		return env.fail(err)
	}
	env.print(env.Renderer.Hint(""))

	result := env.Parser.Parse(domain.ToolOutputTestRunnerStatus, domain.RawOutput{ExitSuccess: res.ExitSuccess})
	return env.finish(result, domain.RenderOptions{
		Kind:            domain.ToolOutputTestRunnerStatus,
		FailureHeadline: "Test suite failed.",
	})
}

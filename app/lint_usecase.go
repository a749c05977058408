package app

import (
	"context"

	"github.com/rugaard/git-hooks-php/domain"
	"github.com/rugaard/git-hooks-php/internal/config"
	"github.com/rugaard/git-hooks-php/internal/constants"
)

// LintUseCase checks staged PHP files for syntax errors, one php -l run per file
type LintUseCase struct {
	env *HookEnv
}

// NewLintUseCase creates a new lint use case
func NewLintUseCase(env *HookEnv) *LintUseCase {
	return &LintUseCase{env: env}
}

// Execute runs php:lint
func (uc *LintUseCase) Execute(ctx context.Context, cfg config.LintConfig) domain.HookOutcome {
	env := uc.env
	env.print(env.Renderer.Section("Checking PHP files for syntax errors"))

	req := domain.NewCheckRequest(domain.CheckModeStagedOnly, nil, "", constants.PHPExtension, cfg.Exclude, nil)
	set, err := env.stagedFiles(ctx, req)
	if err != nil {
		return env.failStaged(err)
	}
	if set.IsEmpty() {
		return env.done()
	}

	php, err := env.Invoker.Locate("PHP", cfg.ResolvedBinary())
	if err != nil {
		return env.fail(err)
	}

	task := env.Progress.StartTask("Linting", len(set.Paths))
	result := domain.NewCheckResult(true)
	for _, file := range set.Paths {
		if err := ctx.Err(); err != nil {
			task.Complete()
			return env.fail(domain.NewToolExecutionError("syntax check was interrupted", err))
		}
		task.Describe(file)

		res, err := env.run(ctx, domain.ToolInvocation{
			Tool:       "PHP",
			Executable: php,
			Args:       []string{"-l", file},
			Mode:       domain.ExecutionModeBlocking,
		})
		if err != nil {
			task.Complete()
			return env.fail(err)
		}

		result.Merge(env.Parser.Parse(domain.ToolOutputLintText, domain.RawOutput{
			Stdout:      res.Stdout,
			ExitSuccess: res.ExitSuccess,
			Subject:     file,
		}))
		task.Increment(1)
	}
	task.Complete()

	return env.finish(result, domain.RenderOptions{
		Kind:            domain.ToolOutputLintText,
		FailureHeadline: "Syntax errors were found.",
	})
}

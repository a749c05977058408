package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/rugaard/git-hooks-php/domain"
	"github.com/rugaard/git-hooks-php/internal/config"
	"github.com/rugaard/git-hooks-php/internal/constants"
	"github.com/rugaard/git-hooks-php/internal/logging"
	"github.com/rugaard/git-hooks-php/service"
)

var analyzeConfigCandidates = domain.ConfigCandidates{
	ProjectDefault:     "phpstan.neon",
	DistributedDefault: "phpstan.neon.dist",
}

// AnalyzeUseCase runs phpstan static analysis
type AnalyzeUseCase struct {
	env *HookEnv
}

// NewAnalyzeUseCase creates a new analyze use case
func NewAnalyzeUseCase(env *HookEnv) *AnalyzeUseCase {
	return &AnalyzeUseCase{env: env}
}

// Execute runs php:analyze.
//
// The configured paths that exist are analysed. With onlyStaged they instead
// narrow the staged PHP files to those located under one of them.
func (uc *AnalyzeUseCase) Execute(ctx context.Context, cfg config.AnalyzeConfig) domain.HookOutcome {
	env := uc.env
	env.print(env.Renderer.Section("Static analysis of PHP files"))

	phpstan, err := env.Invoker.Locate("PHPStan", env.helper.VendorBin("phpstan"))
	if err != nil {
		return env.fail(err)
	}

	explicit := domain.NewCheckRequest(domain.CheckModeExplicitPaths, cfg.Paths, cfg.Config, constants.PHPExtension, cfg.Exclude, nil)
	set, err := env.Files.Resolve(ctx, explicit)
	if err != nil && !domain.HasCode(err, domain.ErrCodeNoPathsProvided) {
		return env.fail(err)
	}
	noPathsErr := err
	var paths []string
	if set != nil {
		paths = set.Paths
	}

	if cfg.OnlyStaged {
		req := domain.NewCheckRequest(domain.CheckModeStagedOnly, nil, cfg.Config, constants.PHPExtension, cfg.Exclude, nil)
		if len(cfg.Paths) > 0 {
			if len(paths) == 0 {
				logging.Warn(ctx, "none of the configured php:analyze paths exist", slog.Any("paths", cfg.Paths))
			}
			req = req.WithPrefixes(paths)
		}
		staged, err := env.stagedFiles(ctx, req)
		if err != nil {
			return env.failStaged(err)
		}
		if staged.IsEmpty() {
			return env.done()
		}
		paths = staged.Paths
		noPathsErr = nil
	}

	resolved := env.resolveConfig(ctx, cfg.Config, analyzeConfigCandidates)

	options := []service.Flag{}
	if resolved.Found() {
		options = append(options, service.Flag{Name: "--configuration", Value: resolved.Path})
	} else {
		if len(paths) == 0 {
			if noPathsErr == nil {
				noPathsErr = domain.NewNoPathsProvidedError()
			}
			return env.noPaths(noPathsErr)
		}
		env.print(env.Renderer.Info(fmt.Sprintf("Using default configuration with rule level %d", cfg.Level)))
		options = append(options, service.Flag{Name: "--level", Value: strconv.Itoa(cfg.Level)})
	}
	options = append(options, service.Flag{Name: "--memory-limit", Value: cfg.MemoryLimit})

	res, err := env.run(ctx, domain.ToolInvocation{
		Tool:       "PHPStan",
		Executable: phpstan,
		Args: service.BuildArgs(
			[]string{"analyze", "--error-format=json", "--no-progress", "--no-ansi"},
			options,
			paths,
		),
		Mode: domain.ExecutionModeBlocking,
	})
	if err != nil {
		return env.fail(err)
	}
	if res.ExitSuccess {
		return env.done()
	}

	result := env.Parser.Parse(domain.ToolOutputAnalysisJSON, domain.RawOutput{Stdout: res.Stdout, ExitSuccess: res.ExitSuccess})
	return env.finish(result, domain.RenderOptions{
		Kind:            domain.ToolOutputAnalysisJSON,
		FailureHeadline: fmt.Sprintf("Found %d errors", result.TotalErrors()),
		DecodeFailure:   "Could not decode errors returned by static analysis tool.",
	})
}

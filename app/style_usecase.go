package app

import (
	"context"
	"fmt"

	"github.com/rugaard/git-hooks-php/domain"
	"github.com/rugaard/git-hooks-php/internal/config"
	"github.com/rugaard/git-hooks-php/internal/constants"
	"github.com/rugaard/git-hooks-php/service"
)

var styleConfigCandidates = domain.ConfigCandidates{
	ProjectDefault:     "phpcs.xml",
	DistributedDefault: "phpcs.xml.dist",
	OverrideHint:       ".xml",
}

// StyleUseCase checks coding style with phpcs
type StyleUseCase struct {
	env *HookEnv
}

// NewStyleUseCase creates a new style use case
func NewStyleUseCase(env *HookEnv) *StyleUseCase {
	return &StyleUseCase{env: env}
}

// Execute runs php:cs.
//
// With onlyStaged the staged PHP files are checked, otherwise the configured
// paths. A phpcs configuration file replaces the standard, encoding and
// warning options; without one the configured standard is used.
func (uc *StyleUseCase) Execute(ctx context.Context, cfg config.StyleConfig) domain.HookOutcome {
	env := uc.env
	env.print(env.Renderer.Section("Checking coding style in PHP files"))

	phpcs, err := env.Invoker.Locate("PHP-CS", env.helper.VendorBin("phpcs"))
	if err != nil {
		return env.fail(err)
	}

	resolved := env.resolveConfig(ctx, cfg.Config, styleConfigCandidates)

	var paths []string
	if cfg.OnlyStaged {
		req := domain.NewCheckRequest(domain.CheckModeStagedOnly, nil, cfg.Config, constants.PHPExtension, cfg.Exclude, nil)
		set, err := env.stagedFiles(ctx, req)
		if err != nil {
			return env.failStaged(err)
		}
		if set.IsEmpty() {
			return env.done()
		}
		paths = set.Paths
	} else {
		req := domain.NewCheckRequest(domain.CheckModeExplicitPaths, cfg.Paths, cfg.Config, constants.PHPExtension, cfg.Exclude, nil)
		set, err := env.Files.Resolve(ctx, req)
		switch {
		case domain.HasCode(err, domain.ErrCodeNoPathsProvided) && resolved.Found():
			// the configuration file names the files to check
		case err != nil:
			if domain.HasCode(err, domain.ErrCodeNoPathsProvided) {
				return env.noPaths(err)
			}
			return env.fail(err)
		default:
			paths = set.Paths
		}
	}

	var options []service.Flag
	var trailing []string
	var remediation []string
	if resolved.Found() {
		options = []service.Flag{{Name: "--standard", Value: resolved.Path}}
		remediation = []string{"--standard=" + resolved.Path}
	} else {
		std := cfg.ResolvedStandard()
		env.print(env.Renderer.Info(fmt.Sprintf("Using %q standard", std.Display)))
		options = []service.Flag{
			{Name: "--standard", Value: std.Name},
			{Name: "--encoding", Value: cfg.ResolvedEncoding()},
		}
		remediation = []string{"--standard=" + std.Name, "--encoding=" + cfg.ResolvedEncoding()}
		if cfg.HideWarnings {
			trailing = append(trailing, "-n")
			remediation = append(remediation, "-n")
		}
	}
	trailing = append(trailing, paths...)

	res, err := env.run(ctx, domain.ToolInvocation{
		Tool:       "PHP-CS",
		Executable: phpcs,
		Args:       service.BuildArgs([]string{"--report=json"}, options, trailing),
		Mode:       domain.ExecutionModeBlocking,
	})
	if err != nil {
		return env.fail(err)
	}
	if res.ExitSuccess {
		return env.done()
	}

	result := env.Parser.Parse(domain.ToolOutputStyleJSON, domain.RawOutput{Stdout: res.Stdout, ExitSuccess: res.ExitSuccess})

	opts := domain.RenderOptions{
		Kind:            domain.ToolOutputStyleJSON,
		FailureHeadline: "Coding style errors found",
		DecodeFailure:   "Could not decode errors returned by code style checker.",
	}
	if env.helper.HasVendorBin("phpcbf") {
		opts.Remediation = &domain.Remediation{
			Command: append([]string{"./" + constants.VendorBinDir + "/phpcbf"}, remediation...),
		}
	}
	return env.finish(result, opts)
}

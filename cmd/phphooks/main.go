package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rugaard/git-hooks-php/internal/constants"
	"github.com/rugaard/git-hooks-php/internal/version"
	"github.com/spf13/cobra"
)

// HookExitError carries the process exit code of a finished command.
// Output has already been printed when it is returned.
type HookExitError struct {
	Code    int
	Message string
}

func (e *HookExitError) Error() string {
	return e.Message
}

// Exit codes
const (
	exitGateFailed  = 1
	exitConfigError = 2
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.ToolName,
		Short: "phphooks - git hook quality gates for PHP projects",
		Long: `phphooks runs PHP quality tools from git hooks and blocks the commit or
push when they report problems.

  pre-commit:  php:cs, php:lint, php:analyze
  pre-push:    php:test-suite

Exit codes:
  0 - All checks pass
  1 - A check failed
  2 - Invalid configuration or usage`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(styleCmd())
	rootCmd.AddCommand(lintCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(testSuiteCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		var exitErr *HookExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfigError)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", constants.ToolName, version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}

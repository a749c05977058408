package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/rugaard/git-hooks-php/internal/config"
	"github.com/rugaard/git-hooks-php/internal/constants"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a git-hooks configuration file",
		Long: `Generate a git-hooks configuration file with every option set to its default.

By default, creates git-hooks.config.json in the current directory. A path
ending in .yaml or .yml produces a YAML file instead. Use --interactive for
a guided setup.

Examples:
  # Create git-hooks.config.json in current directory
  phphooks init

  # Custom output path
  phphooks init --config hooks.yaml

  # Overwrite existing file
  phphooks init --force

  # Interactive setup wizard
  phphooks init --interactive
  phphooks init -i`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	interactive, _ := cmd.Flags().GetBool("interactive")
	out := cmd.OutOrStdout()

	preset := config.DefaultPreset()
	if interactive {
		var err error
		preset, configPath, err = runInteractiveSetup(out, configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	content, err := config.NewConfigFromPreset(preset).Marshal(configPath)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	fmt.Fprintf(out, "Created %s\n", displayPath)
	fmt.Fprintf(out, "\nCall 'phphooks %s' from .git/hooks/pre-commit and 'phphooks %s \"$@\"' from .git/hooks/pre-push.\n",
		constants.HookStyle, constants.HookTestSuite)

	return nil
}

func runInteractiveSetup(out io.Writer, defaultConfigPath string) (config.Preset, string, error) {
	preset := config.DefaultPreset()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "git-hooks Configuration Setup")
	fmt.Fprintln(out, "=============================")
	fmt.Fprintln(out)

	// Coding standard selection
	standards := config.SupportedStandards()
	standardPrompt := promptui.Select{
		Label: "Which coding standard should php:cs enforce?",
		Items: standards,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ .Display | cyan }}",
			Inactive: "   {{ .Display | white }}",
			Selected: "\U00002705 {{ .Display | green }}",
		},
		CursorPos: indexOfStandard(standards, config.DefaultStandard),
	}
	standardIdx, _, err := standardPrompt.Run()
	if err != nil {
		return preset, "", fmt.Errorf("standard selection cancelled: %w", err)
	}
	preset.Standard = standards[standardIdx].Display

	fmt.Fprintln(out)

	// Rule level selection
	levels := make([]string, 0, config.MaxAnalysisLevel+1)
	for level := config.MaxAnalysisLevel; level >= 0; level-- {
		levels = append(levels, strconv.Itoa(level))
	}
	levelPrompt := promptui.Select{
		Label: "Which phpstan rule level should php:analyze use without a phpstan.neon?",
		Items: levels,
	}
	levelIdx, _, err := levelPrompt.Run()
	if err != nil {
		return preset, "", fmt.Errorf("level selection cancelled: %w", err)
	}
	preset.Level, _ = strconv.Atoi(levels[levelIdx])

	fmt.Fprintln(out)

	// Test runner selection
	drivers := config.SupportedDrivers()
	driverPrompt := promptui.Select{
		Label: "Which test runner should php:test-suite use?",
		Items: drivers,
	}
	driverIdx, _, err := driverPrompt.Run()
	if err != nil {
		return preset, "", fmt.Errorf("driver selection cancelled: %w", err)
	}
	preset.Driver = drivers[driverIdx]

	fmt.Fprintln(out)

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}
	outputPath, err := outputPrompt.Run()
	if err != nil {
		return preset, "", fmt.Errorf("output path input cancelled: %w", err)
	}
	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Creating %s... ", outputPath)

	return preset, outputPath, nil
}

func indexOfStandard(standards []config.Standard, display string) int {
	for i, std := range standards {
		if std.Display == display {
			return i
		}
	}
	return 0
}

package service

import (
	"errors"
	"strings"

	"github.com/rugaard/git-hooks-php/domain"
	"github.com/rugaard/git-hooks-php/internal/config"
)

// ConfigurationLoaderImpl loads the git-hooks configuration file
type ConfigurationLoaderImpl struct {
	workDir string
}

// NewConfigurationLoader creates a loader discovering configuration in workDir
func NewConfigurationLoader(workDir string) *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{workDir: workDir}
}

// LoadConfig loads configuration from path, or discovers it when path is empty
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path, c.workDir)
	if err != nil {
		var schemaErr *config.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, domain.NewConfigError(
				"configuration file is invalid:\n  "+strings.Join(schemaErr.Violations, "\n  "), nil)
		}
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

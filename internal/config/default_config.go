package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed default_config.json
var defaultConfigJSON []byte

// DefaultConfig returns a configuration with default values. The values come
// from the embedded default_config.json, the same document `init` writes.
func DefaultConfig() *Config {
	cfg, err := decodeConfig(defaultConfigJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded default configuration is invalid: %v", err))
	}
	return cfg
}

func decodeConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Package config holds operator-level configuration for a polly process:
// the listen address and the registry file with entity-type display names
// and detector-model languages. Per-request policy (threshold, allow/deny
// lists, entity-type selection) is NOT configuration; it arrives with each
// request and is normalized in internal/policy.
//
// Values come from env vars with the POLLY_ prefix (e.g. POLLY_LISTEN_ADDR)
// or from a polly.config.yaml file.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/lawlawrd/polly/internal/policy"
)

// Viper keys. Each maps to an env var with the POLLY_ prefix and to a YAML
// field in polly.config.yaml.
const (
	KeyListenAddr   = "listen_addr"
	KeyRegistryFile = "registry_file"
	KeyDefaultModel = "default_model"
)

// Defaults.
const (
	DefaultListenAddr = ":8787"
	DefaultModel      = "en_core_web_lg"
)

// Config holds resolved operator-level configuration.
type Config struct {
	ListenAddr   string // HTTP listen address
	RegistryFile string // optional registry YAML path (display names, models)
	DefaultModel string // detector model assumed when a request names none

	Registry *policy.Registry
}

func init() {
	viper.SetEnvPrefix("POLLY")
	viper.AutomaticEnv()
	viper.SetDefault(KeyListenAddr, DefaultListenAddr)
	viper.SetDefault(KeyDefaultModel, DefaultModel)
}

// Load reads configuration from viper (env vars, config file, defaults),
// loads and validates the registry file when one is configured, and returns
// a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:   viper.GetString(KeyListenAddr),
		RegistryFile: viper.GetString(KeyRegistryFile),
		DefaultModel: viper.GetString(KeyDefaultModel),
	}

	var file *policy.RegistryFile
	if cfg.RegistryFile != "" {
		rf, err := policy.LoadRegistryFile(cfg.RegistryFile)
		if err != nil {
			return nil, fmt.Errorf("loading registry: %w", err)
		}
		file = rf
	}
	cfg.Registry = policy.NewRegistry(file)

	return cfg, nil
}

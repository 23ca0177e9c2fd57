package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal, with "did you mean?" suggestions.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns a
// Config populated with all default values.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables -> CLI flags.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	if env.CredentialsFile != "" {
		cfg.CredentialsFile = env.CredentialsFile
	}

	if env.Endpoint != "" {
		cfg.Endpoint = env.Endpoint
	}

	if cli.CredentialsFile != "" {
		cfg.CredentialsFile = cli.CredentialsFile
	}

	if cli.Endpoint != "" {
		cfg.Endpoint = cli.Endpoint
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	resolved := &Resolved{
		ConfigPath:        cfgPath,
		CredentialsFile:   expandHome(cfg.CredentialsFile),
		Endpoint:          strings.TrimSuffix(cfg.Endpoint, "/"),
		UserAgent:         cfg.UserAgent,
		RequestsPerSecond: cfg.RequestsPerSecond,
		LogLevel:          cfg.LogLevel,
		LedgerPath:        expandHome(cfg.LedgerPath),
		Twin:              cfg.Twin,
	}

	// Validate has already checked both durations parse.
	resolved.Timeout, _ = time.ParseDuration(cfg.Timeout)
	resolved.SampleDelay, _ = time.ParseDuration(cfg.SampleDelay)

	if cli.Delay != nil {
		if *cli.Delay < 0 {
			return nil, fmt.Errorf("config validation: --delay: must be >= 0, got %s", *cli.Delay)
		}

		resolved.SampleDelay = *cli.Delay
	}

	return resolved, nil
}

// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for bcctl. Values are layered
// defaults -> config file -> environment -> CLI flags, with later layers
// winning.
package config

import "time"

// Config is the file form: every value exactly as written in TOML.
type Config struct {
	CredentialsFile   string     `toml:"credentials_file"`
	Endpoint          string     `toml:"endpoint"`
	UserAgent         string     `toml:"user_agent"`
	Timeout           string     `toml:"timeout"`
	RequestsPerSecond float64    `toml:"requests_per_second"`
	SampleDelay       string     `toml:"sample_delay"`
	LogLevel          string     `toml:"log_level"`
	LedgerPath        string     `toml:"ledger_path"`
	Twin              TwinConfig `toml:"twin"`
}

// TwinConfig controls "bcctl twin", the local simulated API.
type TwinConfig struct {
	Listen      string `toml:"listen"`
	StrictMasks bool   `toml:"strict_masks"`
}

// CLIOverrides holds values from CLI flags. Empty strings and nil pointers
// mean "not specified". Delay is a pointer because --delay=0 is meaningful.
type CLIOverrides struct {
	ConfigPath      string
	CredentialsFile string
	Endpoint        string
	Delay           *time.Duration
}

// Resolved is the effective configuration after all layers are applied,
// with durations parsed.
type Resolved struct {
	ConfigPath        string
	CredentialsFile   string
	Endpoint          string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	SampleDelay       time.Duration
	LogLevel          string
	LedgerPath        string
	Twin              TwinConfig
}

package config

import (
	"path/filepath"

	"github.com/businesscomms/bcctl/internal/bcapi"
	"github.com/businesscomms/bcctl/internal/credentials"
)

// Default values for configuration options. These are layer 0 of the
// override chain.
const (
	defaultTimeout     = "30s"
	defaultSampleDelay = "3s"
	defaultLogLevel    = "warn"
	defaultTwinListen  = "127.0.0.1:8089"
	ledgerFileName     = "ledger.db"
)

// DefaultConfig returns a Config populated with all default values. It is
// the starting point for TOML decoding, so unset keys keep their defaults.
func DefaultConfig() *Config {
	return &Config{
		CredentialsFile: credentials.DefaultPath,
		Endpoint:        bcapi.DefaultEndpoint,
		Timeout:         defaultTimeout,
		SampleDelay:     defaultSampleDelay,
		LogLevel:        defaultLogLevel,
		LedgerPath:      defaultLedgerPath(),
		Twin: TwinConfig{
			Listen:      defaultTwinListen,
			StrictMasks: true,
		},
	}
}

func defaultLedgerPath() string {
	dir := DefaultDataDir()
	if dir == "" {
		return ledgerFileName
	}

	return filepath.Join(dir, ledgerFileName)
}

package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// Validation range constants.
const (
	minTimeout      = 1 * time.Second
	maxSampleDelay  = 5 * time.Minute
	maxRequestsRate = 1000.0
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks all configuration values and returns every error found,
// so users can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.CredentialsFile == "" {
		errs = append(errs, errors.New("credentials_file: must not be empty"))
	}

	errs = append(errs, validateEndpoint(cfg.Endpoint)...)

	if d, err := time.ParseDuration(cfg.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("timeout: invalid duration %q", cfg.Timeout))
	} else if d < minTimeout {
		errs = append(errs, fmt.Errorf("timeout: must be >= %s, got %s", minTimeout, d))
	}

	if d, err := time.ParseDuration(cfg.SampleDelay); err != nil {
		errs = append(errs, fmt.Errorf("sample_delay: invalid duration %q", cfg.SampleDelay))
	} else if d < 0 || d > maxSampleDelay {
		errs = append(errs, fmt.Errorf("sample_delay: must be between 0 and %s, got %s", maxSampleDelay, d))
	}

	if cfg.RequestsPerSecond < 0 || cfg.RequestsPerSecond > maxRequestsRate {
		errs = append(errs, fmt.Errorf("requests_per_second: must be between 0 and %g, got %g",
			maxRequestsRate, cfg.RequestsPerSecond))
	}

	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level: must be one of debug, info, warn, error; got %q", cfg.LogLevel))
	}

	if cfg.LedgerPath == "" {
		errs = append(errs, errors.New("ledger_path: must not be empty"))
	}

	if _, _, err := net.SplitHostPort(cfg.Twin.Listen); err != nil {
		errs = append(errs, fmt.Errorf("twin.listen: %w", err))
	}

	return errors.Join(errs...)
}

func validateEndpoint(endpoint string) []error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return []error{fmt.Errorf("endpoint: %w", err)}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return []error{fmt.Errorf("endpoint: scheme must be http or https, got %q", endpoint)}
	}

	if u.Host == "" {
		return []error{fmt.Errorf("endpoint: missing host in %q", endpoint)}
	}

	return nil
}

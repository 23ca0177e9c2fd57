package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// configFilePermissions is the permission mode for config files.
const configFilePermissions = 0o644

// configDirPermissions is the permission mode for config directories.
const configDirPermissions = 0o755

// ErrConfigExists is returned by WriteDefault when the target already exists.
var ErrConfigExists = errors.New("config file already exists")

// configTemplate is written by "bcctl config init". Every setting is present
// as a commented-out default so users can discover options without docs.
const configTemplate = `# bcctl configuration

# Service-account key file downloaded from the Google Cloud console.
# credentials_file = "resources/bc-agent-service-account-credentials.json"

# API base URL. Point at "bcctl twin" for offline runs.
# endpoint = "https://businesscommunications.googleapis.com"

# user_agent = ""

# Per-request HTTP timeout.
# timeout = "30s"

# Client-side pacing; 0 disables it.
# requests_per_second = 0

# Pause between walkthrough calls.
# sample_delay = "3s"

# Log verbosity: debug, info, warn, error
# log_level = "warn"

# ledger_path = ""

[twin]
# listen = "127.0.0.1:8089"
# strict_masks = true
`

// WriteDefault writes the commented default config to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	slog.Info("creating config file", "path", path)

	return atomicWriteFile(path, []byte(configTemplate))
}

// atomicWriteFile writes data to a temp file in the target directory and
// renames it into place.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPermissions); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tempPath := f.Name()

	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tempPath, configFilePermissions); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	succeeded = true

	return nil
}

// Package testutil provides shared environment helpers for the end-to-end
// tests, which drive the built bcctl binary rather than its packages.
package testutil

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LoadDotEnv reads KEY=VALUE pairs from a .env file at the given path.
// Missing file is not an error (CI sets env vars directly).
// Existing env vars take precedence over .env values.
func LoadDotEnv(envPath string) {
	f, err := os.Open(envPath)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, "\"'")

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// LiveCredentials returns the service-account file named by
// BCCTL_E2E_CREDENTIALS, or "" when live tests are not configured. A
// configured file whose project_id is not listed in
// BCCTL_ALLOWED_TEST_PROJECTS crashes the process, so a production
// project cannot be targeted by accident.
func LiveCredentials() string {
	path := os.Getenv("BCCTL_E2E_CREDENTIALS")
	if path == "" {
		return ""
	}

	allowlist := os.Getenv("BCCTL_ALLOWED_TEST_PROJECTS")
	if allowlist == "" {
		fmt.Fprintln(os.Stderr, "FATAL: BCCTL_ALLOWED_TEST_PROJECTS not set")
		fmt.Fprintln(os.Stderr, "Example: BCCTL_ALLOWED_TEST_PROJECTS=my-test-project")
		os.Exit(1)
	}

	project, err := projectID(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: reading %s: %v\n", path, err)
		os.Exit(1)
	}

	for _, p := range strings.Split(allowlist, ",") {
		if strings.TrimSpace(p) == project {
			return path
		}
	}

	fmt.Fprintf(os.Stderr, "FATAL: project %q is not in BCCTL_ALLOWED_TEST_PROJECTS=%q\n", project, allowlist)
	os.Exit(1)

	return ""
}

func projectID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var f struct {
		ProjectID string `json:"project_id"`
	}

	if err := json.Unmarshal(data, &f); err != nil {
		return "", err
	}

	return f.ProjectID, nil
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns the fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}

// WaitForTokenURI polls a credentials file until it holds a token_uri and
// returns it. "bcctl twin" writes the file once it is listening.
func WaitForTokenURI(path string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil {
			var f struct {
				TokenURI string `json:"token_uri"`
			}

			if json.Unmarshal(data, &f) == nil && f.TokenURI != "" {
				return f.TokenURI, nil
			}
		}

		time.Sleep(20 * time.Millisecond)
	}

	return "", fmt.Errorf("no token_uri in %s after %s", path, timeout)
}

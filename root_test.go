package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/businesscomms/bcctl/internal/config"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		cfgLevel string
		verbose  bool
		quiet    bool
		want     slog.Level
	}{
		{"no config", "", false, false, slog.LevelWarn},
		{"config debug", "debug", false, false, slog.LevelDebug},
		{"config info", "info", false, false, slog.LevelInfo},
		{"config error", "error", false, false, slog.LevelError},
		{"verbose wins", "error", true, false, slog.LevelDebug},
		{"quiet wins", "debug", false, true, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newApp(&bytes.Buffer{}, &bytes.Buffer{})
			if tt.cfgLevel != "" {
				a.cfg = &config.Resolved{LogLevel: tt.cfgLevel}
			}

			a.flags.verbose = tt.verbose
			a.flags.quiet = tt.quiet

			assert.Equal(t, tt.want, a.logLevel())
		})
	}
}

func TestBootstrapLogger_Warn(t *testing.T) {
	logger := newApp(&bytes.Buffer{}, &bytes.Buffer{}).bootstrapLogger()

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
}

func TestStatusf_Quiet(t *testing.T) {
	var stderr bytes.Buffer

	a := newApp(&bytes.Buffer{}, &stderr)
	a.statusf("hello\n")
	assert.Equal(t, "hello\n", stderr.String())

	stderr.Reset()
	a.flags.quiet = true
	a.statusf("hello\n")
	assert.Empty(t, stderr.String())
}

func TestRootCmd_RegistersFamilies(t *testing.T) {
	cmd := newApp(&bytes.Buffer{}, &bytes.Buffer{}).newRootCmd()

	for _, name := range []string{"brand", "agent", "location", "cleanup", "twin", "auth", "config"} {
		sub, _, err := cmd.Find([]string{name})
		if assert.NoError(t, err, name) {
			assert.Equal(t, name, sub.Name())
		}
	}

	for _, family := range []string{"brand", "agent", "location"} {
		for _, verb := range []string{"create", "get", "patch", "list", "delete", "sample"} {
			sub, _, err := cmd.Find([]string{family, verb})
			if assert.NoError(t, err, family+" "+verb) {
				assert.Equal(t, verb, sub.Name())
			}
		}
	}
}

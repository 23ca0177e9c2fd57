package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)

	return path
}

func TestLoad_ValidFullConfig(t *testing.T) {
	path := writeTestConfig(t, `
credentials_file = "/keys/sa.json"
endpoint = "http://127.0.0.1:9000"
user_agent = "bcctl-test"
timeout = "10s"
requests_per_second = 2.5
sample_delay = "0s"
log_level = "debug"
ledger_path = "/tmp/ledger.db"

[twin]
listen = "0.0.0.0:9000"
strict_masks = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/keys/sa.json", cfg.CredentialsFile)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.Endpoint)
	assert.Equal(t, "bcctl-test", cfg.UserAgent)
	assert.Equal(t, "10s", cfg.Timeout)
	assert.InDelta(t, 2.5, cfg.RequestsPerSecond, 0.0001)
	assert.Equal(t, "0s", cfg.SampleDelay)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/ledger.db", cfg.LedgerPath)
	assert.Equal(t, "0.0.0.0:9000", cfg.Twin.Listen)
	assert.False(t, cfg.Twin.StrictMasks)
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	path := writeTestConfig(t, `log_level = "info"`)

	cfg, err := Load(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, def.Endpoint, cfg.Endpoint)
	assert.Equal(t, def.Timeout, cfg.Timeout)
	assert.Equal(t, def.SampleDelay, cfg.SampleDelay)
	assert.True(t, cfg.Twin.StrictMasks)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeTestConfig(t, `endpoint = `)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_InvalidValue(t *testing.T) {
	path := writeTestConfig(t, `timeout = "soon"`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOrDefault_EmptyPath(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
}

func TestResolve_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	r, err := Resolve(EnvOverrides{}, CLIOverrides{})
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, r.Timeout)
	assert.Equal(t, 3*time.Second, r.SampleDelay)
	assert.Equal(t, "warn", r.LogLevel)
	assert.Equal(t, "resources/bc-agent-service-account-credentials.json", r.CredentialsFile)
	assert.Equal(t, "https://businesscommunications.googleapis.com", r.Endpoint)
}

func TestResolve_OverrideChain(t *testing.T) {
	path := writeTestConfig(t, `
credentials_file = "/file/sa.json"
endpoint = "http://file.example"
`)

	r, err := Resolve(EnvOverrides{
		ConfigPath:      path,
		CredentialsFile: "/env/sa.json",
		Endpoint:        "http://env.example",
	}, CLIOverrides{
		Endpoint: "http://cli.example/",
	})
	require.NoError(t, err)

	assert.Equal(t, path, r.ConfigPath)
	assert.Equal(t, "/env/sa.json", r.CredentialsFile, "env beats file")
	assert.Equal(t, "http://cli.example", r.Endpoint, "cli beats env, trailing slash trimmed")
}

func TestResolve_CLIConfigPathBeatsEnv(t *testing.T) {
	envPath := writeTestConfig(t, `log_level = "error"`)
	cliPath := writeTestConfig(t, `log_level = "debug"`)

	r, err := Resolve(EnvOverrides{ConfigPath: envPath}, CLIOverrides{ConfigPath: cliPath})
	require.NoError(t, err)
	assert.Equal(t, cliPath, r.ConfigPath)
	assert.Equal(t, "debug", r.LogLevel)
}

func TestResolve_DelayOverride(t *testing.T) {
	path := writeTestConfig(t, `sample_delay = "5s"`)

	zero := time.Duration(0)
	r, err := Resolve(EnvOverrides{}, CLIOverrides{ConfigPath: path, Delay: &zero})
	require.NoError(t, err)
	assert.Zero(t, r.SampleDelay)

	negative := -time.Second
	_, err = Resolve(EnvOverrides{}, CLIOverrides{ConfigPath: path, Delay: &negative})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--delay")
}

func TestResolve_InvalidOverride(t *testing.T) {
	path := writeTestConfig(t, ``)

	_, err := Resolve(EnvOverrides{Endpoint: "ftp://nope"}, CLIOverrides{ConfigPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")
}

func TestResolve_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	path := writeTestConfig(t, `credentials_file = "~/keys/sa.json"`)

	r, err := Resolve(EnvOverrides{}, CLIOverrides{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "keys", "sa.json"), r.CredentialsFile)
}

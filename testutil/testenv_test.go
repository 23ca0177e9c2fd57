package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"# comment\nBCCTL_TESTUTIL_A=\"one\"\nBCCTL_TESTUTIL_B=two\nnot a pair\n"), 0o600))

	t.Setenv("BCCTL_TESTUTIL_A", "")
	t.Setenv("BCCTL_TESTUTIL_B", "preset")

	LoadDotEnv(path)

	assert.Equal(t, "one", os.Getenv("BCCTL_TESTUTIL_A"))
	assert.Equal(t, "preset", os.Getenv("BCCTL_TESTUTIL_B"), "environment wins over .env")
}

func TestLiveCredentials_Unset(t *testing.T) {
	t.Setenv("BCCTL_E2E_CREDENTIALS", "")

	assert.Empty(t, LiveCredentials())
}

func TestLiveCredentials_Allowed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"project_id":"bc-test"}`), 0o600))

	t.Setenv("BCCTL_E2E_CREDENTIALS", path)
	t.Setenv("BCCTL_ALLOWED_TEST_PROJECTS", "other, bc-test")

	assert.Equal(t, path, LiveCredentials())
}

func TestFindModuleRoot(t *testing.T) {
	root := FindModuleRoot("fallback")
	assert.FileExists(t, filepath.Join(root, "go.mod"))
}

func TestWaitForTokenURI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(path, []byte(`{"token_uri":"http://127.0.0.1:1/token"}`), 0o600)
	}()

	uri, err := WaitForTokenURI(path, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:1/token", uri)
}

func TestWaitForTokenURI_Timeout(t *testing.T) {
	_, err := WaitForTokenURI(filepath.Join(t.TempDir(), "absent.json"), 50*time.Millisecond)
	require.Error(t, err)
}

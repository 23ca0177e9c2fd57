package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/businesscomms/bcctl/internal/bcapi"
)

func openTest(t *testing.T, path, endpoint string) *Ledger {
	t.Helper()

	l, err := Open(context.Background(), path, endpoint, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	l.nowFunc = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	return l
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}

	return out
}

func TestOpen_PathWithURIMetacharacters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "odd?name#dir")
	path := filepath.Join(dir, "ledger.db")
	ctx := context.Background()

	l, err := Open(ctx, path, "https://example.test", nil)
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, "brands/b"))
	require.NoError(t, l.Close())

	_, err = os.Stat(path)
	require.NoError(t, err, "database lives at the literal path")

	reopened := openTest(t, path, "https://example.test")

	entries, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"brands/b"}, names(entries))
}

func TestFileDSN_EscapesPath(t *testing.T) {
	dsn, err := fileDSN("/data/a?b#c/ledger.db")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "file:///data/a%3Fb%23c/ledger.db?_pragma="), dsn)
}

func TestRecordListForget(t *testing.T) {
	l := openTest(t, filepath.Join(t.TempDir(), "ledger.db"), "https://example.test")
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, "brands/b"))
	require.NoError(t, l.Record(ctx, "brands/b/agents/a"))
	require.NoError(t, l.Record(ctx, "brands/b/locations/l"))

	entries, err := l.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"brands/b/locations/l", "brands/b/agents/a", "brands/b"}, names(entries))
	assert.Equal(t, bcapi.KindLocation, entries[0].Kind)
	assert.Equal(t, "https://example.test", entries[0].Endpoint)
	assert.True(t, entries[0].CreatedAt.After(entries[1].CreatedAt))

	require.NoError(t, l.Forget(ctx, "brands/b/agents/a"))
	require.NoError(t, l.Forget(ctx, "brands/never-recorded"))

	entries, err = l.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"brands/b/locations/l", "brands/b"}, names(entries))
}

func TestRecord_Twice(t *testing.T) {
	l := openTest(t, filepath.Join(t.TempDir(), "ledger.db"), "e")
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, "brands/one"))
	require.NoError(t, l.Record(ctx, "brands/two"))
	require.NoError(t, l.Record(ctx, "brands/one"))

	entries, err := l.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"brands/one", "brands/two"}, names(entries))
}

func TestRecord_InvalidName(t *testing.T) {
	l := openTest(t, filepath.Join(t.TempDir(), "ledger.db"), "e")

	err := l.Record(context.Background(), "projects/p")
	assert.ErrorIs(t, err, bcapi.ErrInvalidName)
}

func TestEndpointScoping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	ctx := context.Background()

	prod := openTest(t, path, "https://prod")
	require.NoError(t, prod.Record(ctx, "brands/p"))
	require.NoError(t, prod.Close())

	twin := openTest(t, path, "http://127.0.0.1:8089")
	require.NoError(t, twin.Record(ctx, "brands/t"))

	entries, err := twin.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"brands/t"}, names(entries))
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	first := openTest(t, path, "e")
	require.NoError(t, first.Record(ctx, "brands/kept"))
	require.NoError(t, first.Close())

	second := openTest(t, path, "e")

	entries, err := second.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"brands/kept"}, names(entries))
}

type fakeDeleter struct {
	calls []string
	fail  map[string]error
}

func (d *fakeDeleter) DeleteByName(_ context.Context, name string) error {
	d.calls = append(d.calls, name)
	return d.fail[name]
}

func TestCleanup(t *testing.T) {
	l := openTest(t, filepath.Join(t.TempDir(), "ledger.db"), "e")
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, "brands/b"))
	require.NoError(t, l.Record(ctx, "brands/b/locations/l"))
	require.NoError(t, l.Record(ctx, "brands/b/agents/a"))
	require.NoError(t, l.Record(ctx, "brands/c/agents/gone"))
	require.NoError(t, l.Record(ctx, "brands/c"))

	boom := errors.New("boom")
	gone := &bcapi.RemoteOperationError{Op: "delete", StatusCode: 404, Err: bcapi.ErrNotFound}

	del := &fakeDeleter{fail: map[string]error{
		"brands/c":             boom,
		"brands/c/agents/gone": gone,
	}}

	res, err := l.Cleanup(ctx, del)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"brands/b/locations/l",
		"brands/c/agents/gone",
		"brands/b/agents/a",
		"brands/c",
		"brands/b",
	}, del.calls)

	assert.ElementsMatch(t, []string{"brands/b/locations/l", "brands/c/agents/gone", "brands/b/agents/a", "brands/b"}, res.Deleted)
	require.Contains(t, res.Failed, "brands/c")
	assert.ErrorIs(t, res.Failed["brands/c"], boom)

	entries, err := l.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"brands/c"}, names(entries))
}

func TestSortForCleanup(t *testing.T) {
	entries := []Entry{
		{Name: "brands/x", Kind: bcapi.KindBrand},
		{Name: "brands/x/agents/1", Kind: bcapi.KindAgent},
		{Name: "brands/x/locations/1", Kind: bcapi.KindLocation},
		{Name: "brands/x/agents/2", Kind: bcapi.KindAgent},
	}

	SortForCleanup(entries)

	assert.Equal(t, []string{"brands/x/locations/1", "brands/x/agents/1", "brands/x/agents/2", "brands/x"}, names(entries))
}

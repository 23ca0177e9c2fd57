// Package ledger remembers the resources walkthroughs created, in a local
// SQLite database, so runs that keep their resources can be cleaned up
// later. Entries are scoped to the API endpoint they were created against.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/businesscomms/bcctl/internal/bcapi"
)

const (
	sqlRecord = `INSERT INTO resources (name, endpoint, kind, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(endpoint, name) DO UPDATE SET created_at = excluded.created_at`

	sqlForget = `DELETE FROM resources WHERE endpoint = ? AND name = ?`

	sqlList = `SELECT name, kind, created_at FROM resources
		WHERE endpoint = ?
		ORDER BY created_at DESC, rowid DESC`
)

// Entry is one remembered resource.
type Entry struct {
	Name      string
	Kind      bcapi.Kind
	Endpoint  string
	CreatedAt time.Time
}

// Ledger is the store. It uses a single connection; callers need no extra
// locking.
type Ledger struct {
	db       *sql.DB
	endpoint string
	logger   *slog.Logger
	nowFunc  func() time.Time
}

// Open opens (creating if needed) the database at path and migrates it.
// endpoint scopes every read and write.
func Open(ctx context.Context, path, endpoint string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ledger: creating directory for %s: %w", path, err)
	}

	dsn, err := fileDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: opening database %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("ledger opened", slog.String("path", path), slog.String("endpoint", endpoint))

	return &Ledger{db: db, endpoint: endpoint, logger: logger, nowFunc: time.Now}, nil
}

// fileDSN builds a SQLite URI for path. The path is escaped so '?' and '#'
// in directory names stay part of the filename.
func fileDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("ledger: resolving %s: %w", path, err)
	}

	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	u := url.URL{
		Scheme:   "file",
		Path:     p,
		RawQuery: "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
	}

	return u.String(), nil
}

// Close releases the database.
func (l *Ledger) Close() error {
	if err := l.db.Close(); err != nil {
		return fmt.Errorf("ledger: closing database: %w", err)
	}

	return nil
}

// Record remembers name. Recording a name twice refreshes its timestamp.
func (l *Ledger) Record(ctx context.Context, name string) error {
	kind, err := bcapi.KindOf(name)
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, sqlRecord, name, l.endpoint, string(kind), l.nowFunc().UnixNano()); err != nil {
		return fmt.Errorf("ledger: recording %s: %w", name, err)
	}

	return nil
}

// Forget drops name. Forgetting an unknown name is not an error.
func (l *Ledger) Forget(ctx context.Context, name string) error {
	if _, err := l.db.ExecContext(ctx, sqlForget, l.endpoint, name); err != nil {
		return fmt.Errorf("ledger: forgetting %s: %w", name, err)
	}

	return nil
}

// List returns the remembered resources, newest first.
func (l *Ledger) List(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, sqlList, l.endpoint)
	if err != nil {
		return nil, fmt.Errorf("ledger: listing: %w", err)
	}
	defer rows.Close()

	var out []Entry

	for rows.Next() {
		var (
			e       Entry
			kind    string
			created int64
		)

		if err := rows.Scan(&e.Name, &kind, &created); err != nil {
			return nil, fmt.Errorf("ledger: scanning row: %w", err)
		}

		e.Kind = bcapi.Kind(kind)
		e.Endpoint = l.endpoint
		e.CreatedAt = time.Unix(0, created)
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: iterating rows: %w", err)
	}

	return out, nil
}

// Deleter removes a resource by name. *bcapi.Client satisfies it.
type Deleter interface {
	DeleteByName(ctx context.Context, name string) error
}

// CleanupResult lists what Cleanup did.
type CleanupResult struct {
	Deleted []string
	Failed  map[string]error
}

// Cleanup deletes every remembered resource, locations first, then agents,
// then brands, and forgets each one that is gone. A not-found rejection
// counts as gone. Individual failures are collected, not returned.
func (l *Ledger) Cleanup(ctx context.Context, del Deleter) (*CleanupResult, error) {
	entries, err := l.List(ctx)
	if err != nil {
		return nil, err
	}

	SortForCleanup(entries)

	res := &CleanupResult{Failed: make(map[string]error)}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("ledger: cleanup interrupted: %w", err)
		}

		err := del.DeleteByName(ctx, e.Name)
		if err != nil && !bcapi.IsNotFound(err) {
			l.logger.Warn("cleanup delete failed",
				slog.String("name", e.Name),
				slog.String("error", err.Error()),
			)
			res.Failed[e.Name] = err

			continue
		}

		if err := l.Forget(ctx, e.Name); err != nil {
			res.Failed[e.Name] = err
			continue
		}

		res.Deleted = append(res.Deleted, e.Name)
	}

	return res, nil
}

var cleanupRank = map[bcapi.Kind]int{
	bcapi.KindLocation: 0,
	bcapi.KindAgent:    1,
	bcapi.KindBrand:    2,
}

// SortForCleanup orders entries so children come before their brand.
func SortForCleanup(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return cleanupRank[entries[i].Kind] < cleanupRank[entries[j].Kind]
	})
}

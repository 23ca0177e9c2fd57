package credentials

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"

	"github.com/businesscomms/bcctl/internal/bcapi"
)

// Handle is an authorized client: the token source primed by a successful
// handshake and the API client bound to it.
type Handle struct {
	Credentials *Credentials
	TokenSource oauth2.TokenSource
	API         *bcapi.Client
	Acquired    time.Time
}

// ManagerConfig holds the fixed inputs of a Manager.
type ManagerConfig struct {
	// DefaultPath is used when Acquire gets an empty path.
	DefaultPath string
	// Endpoint is the API base URL. Empty means bcapi.DefaultEndpoint.
	Endpoint string
	// HTTPClient carries both token and API requests. Nil means
	// http.DefaultClient.
	HTTPClient    *http.Client
	Logger        *slog.Logger
	ClientOptions []bcapi.Option
}

// Manager hands out client handles keyed by credentials file. A handle is
// built once per file; later calls return the same handle without I/O.
// Failed attempts are not cached. Safe for concurrent use.
type Manager struct {
	cfg    ManagerConfig
	logger *slog.Logger

	mu      sync.Mutex
	handles map[string]*Handle

	flight singleflight.Group
}

// NewManager creates a Manager with an empty cache.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.DefaultPath == "" {
		cfg.DefaultPath = DefaultPath
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = bcapi.DefaultEndpoint
	}

	return &Manager{
		cfg:     cfg,
		logger:  logger,
		handles: make(map[string]*Handle),
	}
}

// Acquire returns the handle for path, building it on first use. Concurrent
// first-use callers share a single handshake.
func (m *Manager) Acquire(ctx context.Context, path string) (*Handle, error) {
	key := m.key(path)

	if h, ok := m.lookup(key); ok {
		return h, nil
	}

	v, err, _ := m.flight.Do(key, func() (any, error) {
		if h, ok := m.lookup(key); ok {
			return h, nil
		}

		h, err := m.initialize(ctx, key)
		if err != nil {
			m.logger.Error("initializing API client failed",
				slog.String("path", key),
				slog.String("error", err.Error()),
			)

			return nil, err
		}

		m.mu.Lock()
		m.handles[key] = h
		m.mu.Unlock()

		m.logger.Debug("API client initialized",
			slog.String("path", key),
			slog.String("client_email", h.Credentials.ClientEmail),
		)

		return h, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Handle), nil //nolint:forcetypeassert // the flight only returns *Handle
}

// Cached returns the cached handle for path without doing any work.
func (m *Manager) Cached(path string) (*Handle, bool) {
	return m.lookup(m.key(path))
}

func (m *Manager) lookup(key string) (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.handles[key]

	return h, ok
}

// key resolves path to the absolute form used as the cache key, so
// "./a.json" and "a.json" share a handle.
func (m *Manager) key(path string) string {
	if path == "" {
		path = m.cfg.DefaultPath
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}

	return abs
}

// initialize loads the file and performs the handshake by fetching the first
// access token.
func (m *Manager) initialize(ctx context.Context, path string) (*Handle, error) {
	creds, err := Load(path)
	if err != nil {
		return nil, err
	}

	jwtCfg, err := google.JWTConfigFromJSON(creds.raw, bcapi.Scope)
	if err != nil {
		return nil, &AuthenticationError{Path: path, Reason: "building JWT config", Err: err}
	}

	// The token source keeps this context for every later refresh, so it
	// must outlive the caller's cancellation.
	tokenCtx := context.WithoutCancel(ctx)
	if m.cfg.HTTPClient != nil {
		tokenCtx = context.WithValue(tokenCtx, oauth2.HTTPClient, m.cfg.HTTPClient)
	}

	ts := jwtCfg.TokenSource(tokenCtx)

	if _, err := ts.Token(); err != nil {
		return nil, &AuthenticationError{Path: path, Reason: "authorization handshake failed", Err: err}
	}

	api := bcapi.NewClient(m.cfg.Endpoint, m.cfg.HTTPClient, ts, m.logger, m.cfg.ClientOptions...)

	return &Handle{
		Credentials: creds,
		TokenSource: ts,
		API:         api,
		Acquired:    time.Now(),
	}, nil
}

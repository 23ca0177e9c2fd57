// Package twin is an in-process stand-in for the Business Communications
// API. It serves the OAuth2 JWT-bearer token endpoint and the brand, agent,
// and location resources from memory, and by default enforces the field-mask
// convention strictly: every updateMask path must be populated in the patch
// body.
package twin

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/businesscomms/bcctl/internal/bcapi"
)

// defaultPageSize and maxPageSize bound list responses.
const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// Server is the simulated service. The zero value is not usable; call New.
type Server struct {
	store  *store
	logger *slog.Logger
	strict bool

	mu       sync.Mutex
	accounts map[string]account // private_key_id -> account
	tokens   map[string]string  // access token -> client_email

	tokenGrants atomic.Int64
	requests    atomic.Int64
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the logger for request and grant lines.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStrictMasks toggles rejection of patches whose mask names a field the
// body does not set. Strict is the default.
func WithStrictMasks(strict bool) Option {
	return func(s *Server) {
		s.strict = strict
	}
}

// New creates an empty service.
func New(opts ...Option) *Server {
	s := &Server{
		store:    newStore(),
		logger:   slog.Default(),
		strict:   true,
		accounts: make(map[string]account),
		tokens:   make(map[string]string),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler returns the HTTP surface: POST /token and the /v1 resource tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.countRequests)

	r.Post("/token", s.handleToken)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.requireBearer)

		r.Get("/brands", s.listBrands)
		r.Post("/brands", s.createBrand)
		r.Get("/brands/{brand}", s.getResource)
		r.Patch("/brands/{brand}", s.patchResource)
		r.Delete("/brands/{brand}", s.deleteResource)

		r.Get("/brands/{brand}/{collection}", s.listChildren)
		r.Post("/brands/{brand}/{collection}", s.createChild)
		r.Get("/brands/{brand}/{collection}/{id}", s.getResource)
		r.Patch("/brands/{brand}/{collection}/{id}", s.patchResource)
		r.Delete("/brands/{brand}/{collection}/{id}", s.deleteResource)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such route")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "UNIMPLEMENTED", "method not allowed")
	})

	return r
}

// TokenGrants reports how many access tokens the token endpoint issued.
func (s *Server) TokenGrants() int {
	return int(s.tokenGrants.Load())
}

// Requests reports how many HTTP requests reached the server.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// Snapshot returns a copy of the stored resource, exactly as the next get
// would return it.
func (s *Server) Snapshot(name string) (bcapi.Object, bool) {
	return s.store.get(name)
}

// Len reports how many resources are stored.
func (s *Server) Len() int {
	return s.store.count()
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.logger.Debug("twin request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r)
	})
}

// Package server exposes the lead form over HTTP. Each browser gets a session
// id cookie; requests for the same session are serialised and the session
// snapshot is saved back to the store after every mutation.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-leadform/pkg/contract"
	"github.com/goliatone/go-leadform/pkg/metrics"
	"github.com/goliatone/go-leadform/pkg/render"
	"github.com/goliatone/go-leadform/pkg/renderers/vanilla"
	"github.com/goliatone/go-leadform/pkg/session"
	"github.com/goliatone/go-leadform/pkg/themes"
	"github.com/goliatone/go-leadform/pkg/workflow"
)

const (
	DefaultBasePath   = "/demo"
	DefaultCookieName = "leadform_session"
	// CSRFHeader carries the CSRF token for JSON clients.
	CSRFHeader = "X-CSRF-Token"
)

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore replaces the default in-memory session store.
func WithStore(store session.Store) Option {
	return func(s *Server) {
		if store != nil {
			s.store = store
		}
	}
}

// WithHTMLRenderer replaces the default vanilla renderer.
func WithHTMLRenderer(renderer *vanilla.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.html = renderer
		}
	}
}

// WithMetrics serves the registry on /metrics.
func WithMetrics(registry *metrics.Registry) Option {
	return func(s *Server) {
		s.metrics = registry
	}
}

// WithContract serves the OpenAPI document on /openapi.yaml.
func WithContract(doc *contract.Document) Option {
	return func(s *Server) {
		s.contract = doc
	}
}

// WithThemes resolves the page theme. Requests may pick another registered
// theme or variant with the theme and variant query parameters.
func WithThemes(selector *themes.Selector, name, variant string) Option {
	return func(s *Server) {
		s.themes = selector
		s.themeName = strings.TrimSpace(name)
		s.themeVariant = strings.TrimSpace(variant)
	}
}

// WithTranslator localises copy using the lang query parameter or the
// request's Accept-Language header.
func WithTranslator(translator render.Translator) Option {
	return func(s *Server) {
		s.translator = translator
	}
}

// WithBasePath mounts the form routes under path.
func WithBasePath(path string) Option {
	return func(s *Server) {
		path = "/" + strings.Trim(strings.TrimSpace(path), "/")
		if path != "/" {
			s.basePath = path
		}
	}
}

// WithCookie configures the session cookie. A zero ttl makes it a browser
// session cookie.
func WithCookie(name string, secure bool, ttl time.Duration) Option {
	return func(s *Server) {
		if name = strings.TrimSpace(name); name != "" {
			s.cookieName = name
		}
		s.cookieSecure = secure
		s.cookieTTL = ttl
	}
}

// WithCSRF requires a double-submit token on every POST.
func WithCSRF(enabled bool) Option {
	return func(s *Server) {
		s.csrf = enabled
	}
}

// Server wires the workflow engine, the session store and the renderers into
// an http.Handler.
type Server struct {
	engine    *workflow.Engine
	store     session.Store
	locks     *session.Locks
	renderers *render.Registry
	html      *vanilla.Renderer
	logger    *slog.Logger

	metrics    *metrics.Registry
	contract   *contract.Document
	themes     *themes.Selector
	translator render.Translator

	themeName    string
	themeVariant string
	basePath     string
	cookieName   string
	cookieSecure bool
	cookieTTL    time.Duration
	csrf         bool
}

// New constructs a Server around engine.
func New(engine *workflow.Engine, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("server: workflow engine is required")
	}
	s := &Server{
		engine:     engine,
		locks:      session.NewLocks(),
		logger:     slog.Default(),
		basePath:   DefaultBasePath,
		cookieName: DefaultCookieName,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.store == nil {
		s.store = session.NewMemoryStore()
	}
	if s.html == nil {
		html, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.html = html
	}

	s.renderers = render.NewRegistry()
	if err := s.renderers.Register(s.html); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if err := s.renderers.Register(render.JSONRenderer{}); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	return s, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	if s.contract != nil {
		r.Get("/openapi.yaml", s.handleOpenAPI)
	}
	assets := http.StripPrefix(vanilla.DefaultAssetPrefix, http.FileServer(http.FS(vanilla.AssetsFS())))
	r.Method(http.MethodGet, vanilla.DefaultAssetPrefix+"/*", assets)

	r.Route(s.basePath, func(r chi.Router) {
		r.Get("/", s.handleShow)
		r.Post("/steps/{step}", s.handleSubmit)
		r.Post("/back", s.handleBack)
		r.Post("/reset", s.handleReset)
		r.Get("/options/{field}", s.handleOptions)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("server: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

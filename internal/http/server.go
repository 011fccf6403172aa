package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	applog "movimentos/internal/log"
	"movimentos/internal/middleware/ratelimit"
	"movimentos/internal/middleware/security"
	"movimentos/internal/middleware/trace"
	"movimentos/internal/services"
	"movimentos/internal/taxonomy"
	appweb "movimentos/web"
)

const staticMaxAge = 3600

// Options configures NewServer.
type Options struct {
	Addr               string
	Service            *services.LedgerService
	Categories         taxonomy.Reader
	Logger             *applog.Logger
	RateLimitPerMinute int
	// Ready reports whether the storage backend answers; nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	svc        *services.LedgerService
	categories taxonomy.Reader
	templates  *template.Template
	logger     *applog.Logger
	events     *applog.StructuredLogger
	ready      func(ctx context.Context) error

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run http.Server.
func NewServer(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("http server: nil ledger service")
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	categories := opts.Categories
	if categories == nil {
		categories = taxonomy.New(taxonomy.DefaultCategories)
	}

	t, err := template.New("").Funcs(template.FuncMap{
		"kindClass": kindClass,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	rlCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	detector := security.NewDetector()
	s := &Server{
		svc:        opts.Service,
		categories: categories,
		templates:  t,
		logger:     logger,
		events:     applog.NewStructuredLogger(logger),
		ready:      opts.Ready,
		limiter:    ratelimit.NewLimiter(rlCfg),
		detector:   detector,
		tracer:     trace.NewMiddleware(logger, detector.ExtractClientIP),
		started:    time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.chain(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /ui/form", s.handleForm)
	mux.HandleFunc("POST /form/open", s.handleOpenForm)
	mux.HandleFunc("POST /form/cancel", s.handleCancelForm)
	mux.HandleFunc("POST /movements", s.handleSubmit)
	mux.HandleFunc("POST /movements/remove", s.handleRemove)
	mux.HandleFunc("GET /api/chart", s.handleChart)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
}

// chain wraps the mux: tracing outermost so every response is logged, then
// security headers, probe detection and the POST rate limit.
func (s *Server) chain(mux http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited, http.MethodPost)(mux)
	inspected := s.detect(limited)
	secured := security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(inspected)
	return s.tracer.Middleware(secured)
}

// detect logs requests that look like probing. They are still served.
func (s *Server) detect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := s.detector.Inspect(r); reason != "" {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
				"reason", reason,
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	TooManyRequestsError("Muitas requisições. Tente novamente em instantes.").Write(w)
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

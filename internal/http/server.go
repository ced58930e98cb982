// Package http provides the web surface: entry form and list, report
// partials, and report downloads.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"fsreport/internal/auth"
	"fsreport/internal/cache"
	"fsreport/internal/core"
	applog "fsreport/internal/log"
	"fsreport/internal/services"
	appweb "fsreport/web"
)

// EntryService is the application surface the handlers call into.
type EntryService interface {
	CreateEntry(ctx context.Context, ident auth.Identity, in services.EntryInput) (core.TimeEntry, error)
	DeleteEntry(ctx context.Context, ident auth.Identity, entryID string) error
	Report(ctx context.Context, ident auth.Identity, p core.Period) (core.Report, error)
}

type Server struct {
	http.Server
	templates *template.Template
	entries   EntryService
	verifier  *auth.Verifier

	rateLimiter *rateLimiter
	structured  *applog.StructuredLogger

	// Reports are cached per user and period. Keys embed a per-user
	// generation number so a create or delete invalidates every cached
	// period for that user at once; stale keys age out via TTL and LRU.
	reportCache  *cache.LRUCache[core.Report]
	cacheManager *cache.Manager

	genMu       sync.Mutex
	generations map[string]uint64

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, entries EntryService, verifier *auth.Verifier, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()

	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		entries:      entries,
		verifier:     verifier,
		rateLimiter:  newRateLimiter(),
		structured:   applog.NewStructuredLogger(applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)),
		reportCache:  cache.NewLRUCache[core.Report](200, cacheTTL),
		cacheManager: cache.NewManager(),
		generations:  make(map[string]uint64),
		started:      time.Now(),
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	authn := auth.Middleware(verifier)
	route := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authn(s.withSecurityHeaders(h)))
	}

	route("/", s.handleIndex)
	route("/entries", s.handleCreateEntry)
	route("/entries/delete", s.handleDeleteEntry)
	route("/ui/report", s.handleReportPartial)
	route("/reports/text", s.handleReportText)
	route("/reports/pdf", s.handleReportPDF)
	route("/reports/share", s.handleReportShare)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	return s
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()
		ctx := r.Context()

		s.structured.LogHTTPStart(ctx, r, clientIP, requestID)

		// Rate limit mutating requests only; report polling stays cheap.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		setSecurityHeaders(w)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP, requestID)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) generation(subject string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[subject]
}

// invalidateReports makes every cached report for the user unreachable.
func (s *Server) invalidateReports(subject string) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.generations[subject]++
}

func (s *Server) reportCacheKey(subject string, p core.Period) string {
	return subject + "|" + strconv.FormatUint(s.generation(subject), 10) +
		"|" + strconv.Itoa(p.Year) + "-" + strconv.Itoa(p.Month)
}

// cachedReport serves a report from cache when possible.
func (s *Server) cachedReport(ctx context.Context, ident auth.Identity, p core.Period) (core.Report, error) {
	key := s.reportCacheKey(ident.SubjectID, p)

	if rep, found := s.reportCache.Get(key); found {
		slog.DebugContext(ctx, "Report cache hit", "year", p.Year, "month", p.Month)
		return rep, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	rep, err := s.entries.Report(cctx, ident, p)
	if err != nil {
		return core.Report{}, fmt.Errorf("build report for %s: %w", p.Label(), err)
	}

	s.reportCache.Set(key, rep)
	slog.DebugContext(ctx, "Report cached",
		"year", p.Year, "month", p.Month,
		"total_hours", rep.TotalHours, "entries", len(rep.Entries))
	return rep, nil
}

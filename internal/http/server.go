// Package http binds the expense lifecycle and analytics services to their
// HTTP routes. Identity is resolved upstream; this layer only reads the
// forwarded identity headers and threads the value into service calls.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"spendtrack/internal/log"
	"spendtrack/internal/services"
)

type Server struct {
	http.Server
	lifecycle *services.LifecycleManager
	analytics *services.AnalyticsService

	rateLimiter    *rateLimiter
	requestTimeout time.Duration
	shutdownOnce   sync.Once
}

// Options tune server behavior; zero values fall back to defaults.
type Options struct {
	RequestTimeout time.Duration
	RateLimitPerIP int
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, lifecycle *services.LifecycleManager, analytics *services.AnalyticsService, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 7 * time.Second
	}
	if opts.RateLimitPerIP <= 0 {
		opts.RateLimitPerIP = 60
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		lifecycle:      lifecycle,
		analytics:      analytics,
		rateLimiter:    newRateLimiter(opts.RateLimitPerIP),
		requestTimeout: opts.RequestTimeout,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/projects", s.withMiddleware(s.handleListProjects))
	mux.HandleFunc("GET /api/expenses", s.withMiddleware(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("POST /api/expenses/{id}/review", s.withMiddleware(s.handleReviewExpense))

	mux.HandleFunc("GET /api/analytics/budget-vs-spent", s.withMiddleware(s.handleBudgetVsSpent))
	mux.HandleFunc("GET /api/analytics/spending-by-category", s.withMiddleware(s.handleSpendingByCategory))
	mux.HandleFunc("GET /api/analytics/spending-by-employee", s.withMiddleware(s.handleSpendingByEmployee))
	mux.HandleFunc("GET /api/analytics/monthly-trends", s.withMiddleware(s.handleMonthlyTrends))

	return s
}

// withMiddleware adds security headers, rate limiting and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := clientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		// Rate limit mutations only; analytics reads are cheap enough.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

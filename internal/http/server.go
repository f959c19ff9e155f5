// Package http exposes the JSON API for the budget service.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/ledger"
	applog "budget/internal/log"
	"budget/internal/services"
)

type Server struct {
	http.Server
	store     ledger.Store
	summaries *services.SummaryService
	savings   *services.SavingsService
	exports   *services.ExportService

	rateLimiter *rateLimiter
	logs        *applog.StructuredLogger

	// Month-keyed caches for the read endpoints. Any mutation purges both:
	// a single record change can move numbers in any month.
	summaryCache *cache.LRUCache[core.Snapshot]
	savingsCache *cache.LRUCache[core.SavingsReport]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// Options carries the optional server knobs.
type Options struct {
	CacheTTL  time.Duration
	ExportDir string
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. A nil exports service disables the export endpoint.
func NewServer(addr string, store ledger.Store, summaries *services.SummaryService, savings *services.SavingsService, exports *services.ExportService, opts Options) *Server {
	mux := http.NewServeMux()

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:        store,
		summaries:    summaries,
		savings:      savings,
		exports:      exports,
		rateLimiter:  newRateLimiter(),
		logs:         applog.NewStructuredLogger(applog.New(applog.Config{Component: applog.ComponentHTTP})),
		summaryCache: cache.NewLRUCache[core.Snapshot](24, ttl),
		savingsCache: cache.NewLRUCache[core.SavingsReport](24, ttl),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.savingsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	if opts.ExportDir != "" {
		files := http.StripPrefix("/exports/", http.FileServer(http.Dir(opts.ExportDir)))
		mux.Handle("GET /exports/", files)
	}

	api := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.withSecurityHeaders(h))
	}

	api("GET /api/summary", s.handleSummary)
	api("GET /api/savings", s.handleSavingsReport)
	api("PUT /api/savings/targets", s.handleSaveTargets)
	api("POST /api/export", s.handleExport)

	api("GET /api/transactions", s.handleListTransactions)
	api("POST /api/transactions", s.handleCreateTransaction)
	api("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	api("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	api("GET /api/bills", s.handleListBills)
	api("POST /api/bills", s.handleCreateBill)
	api("PUT /api/bills/{id}", s.handleUpdateObligation)
	api("DELETE /api/bills/{id}", s.handleDeleteObligation)
	api("POST /api/bills/{id}/toggle", s.handleToggleObligation)

	api("GET /api/income-sources", s.handleListIncomeSources)
	api("POST /api/income-sources", s.handleCreateIncomeSource)
	api("PUT /api/income-sources/{id}", s.handleUpdateObligation)
	api("DELETE /api/income-sources/{id}", s.handleDeleteObligation)
	api("POST /api/income-sources/{id}/toggle", s.handleToggleObligation)

	api("GET /api/categories", s.handleListCategories)
	api("POST /api/categories", s.handleCreateCategory)
	api("PUT /api/categories/{id}", s.handleUpdateCategory)
	api("DELETE /api/categories/{id}", s.handleDeleteCategory)

	return s
}

// invalidateCaches drops every cached read model after a mutation.
func (s *Server) invalidateCaches() {
	s.summaryCache.Purge()
	s.savingsCache.Purge()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging to API handlers.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.logs.LogHTTPStart(ctx, r, clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logs.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

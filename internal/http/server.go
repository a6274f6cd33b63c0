// Package http is the JSON API of the tracker.
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

	"github.com/mwsasi/personal-account-tracker/internal/alerts"
	"github.com/mwsasi/personal-account-tracker/internal/cache"
	"github.com/mwsasi/personal-account-tracker/internal/ledger"
	"github.com/mwsasi/personal-account-tracker/internal/services"
)

type Server struct {
	http.Server
	ledger      *ledger.Service
	planning    *services.PlanningService
	notifier    *alerts.Notifier
	rateLimiter *rateLimiter

	// Read caches: the ledger view is recomputed from the full entry set on
	// every load, alerts from three loads. Mutations invalidate both.
	entriesCache *cache.LRUCache[[]entryResponse]
	alertsCache  *cache.LRUCache[[]alerts.Alert]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, ls *ledger.Service, ps *services.PlanningService, an *alerts.Notifier) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:       ls,
		planning:     ps,
		notifier:     an,
		rateLimiter:  newRateLimiter(),
		entriesCache: cache.NewLRUCache[[]entryResponse](4, 30*time.Second),
		alertsCache:  cache.NewLRUCache[[]alerts.Alert](4, 30*time.Second),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.entriesCache)
	s.cacheManager.Register(s.alertsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /entries", s.withSecurityHeaders(s.handleListEntries))
	mux.HandleFunc("POST /entries", s.withSecurityHeaders(s.handleCreateEntry))
	mux.HandleFunc("PUT /entries/{id}", s.withSecurityHeaders(s.handleUpdateEntry))
	mux.HandleFunc("DELETE /entries/{id}", s.withSecurityHeaders(s.handleDeleteEntry))
	mux.HandleFunc("GET /entries/opening-balance", s.withSecurityHeaders(s.handleOpeningBalance))

	mux.HandleFunc("GET /budgets", s.withSecurityHeaders(s.handleListBudgets))
	mux.HandleFunc("POST /budgets", s.withSecurityHeaders(s.handleSetBudget))
	mux.HandleFunc("DELETE /budgets/{id}", s.withSecurityHeaders(s.handleDeleteBudget))

	mux.HandleFunc("GET /bills", s.withSecurityHeaders(s.handleListBills))
	mux.HandleFunc("POST /bills", s.withSecurityHeaders(s.handleAddBill))
	mux.HandleFunc("POST /bills/{id}/paid", s.withSecurityHeaders(s.handleMarkBillPaid))
	mux.HandleFunc("DELETE /bills/{id}", s.withSecurityHeaders(s.handleDeleteBill))

	mux.HandleFunc("GET /alerts", s.withSecurityHeaders(s.handleListAlerts))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutating requests only
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
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

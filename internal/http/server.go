// Package http exposes the JSON API: registration and login, owner
// scoped transaction CRUD, and the aggregate endpoints the dashboard
// charts read from.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tally/internal/auth"
	"tally/internal/cache"
	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/middleware/ratelimit"
	"tally/internal/middleware/security"
	"tally/internal/middleware/trace"
	"tally/internal/service"
)

// Config holds the server's tunables.
type Config struct {
	Addr              string
	RequestsPerMinute int
	SummaryCacheTTL   time.Duration
}

// Server is the HTTP front of the service. It embeds http.Server so
// callers use ListenAndServe directly.
type Server struct {
	http.Server

	users        *service.UserService
	transactions *service.TransactionService
	tokens       *auth.TokenManager
	logger       *applog.Logger

	limiter  *ratelimit.Limiter
	resolver *security.ClientIPResolver

	// Per-user aggregate caches, invalidated on every mutation by the
	// same user.
	summaryCache   *cache.LRU[core.Summary]
	breakdownCache *cache.LRU[[]core.CategoryTotal]
	janitor        *cache.Janitor

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware and starts the cache janitor.
func NewServer(cfg Config, users *service.UserService, transactions *service.TransactionService, tokens *auth.TokenManager, logger *applog.Logger) *Server {
	httpLogger := logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		users:        users,
		transactions: transactions,
		tokens:       tokens,
		logger:       httpLogger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RequestsPerMinute,
		}),
		resolver:       security.NewClientIPResolver(),
		summaryCache:   cache.NewLRU[core.Summary](1000, cfg.SummaryCacheTTL),
		breakdownCache: cache.NewLRU[[]core.CategoryTotal](1000, cfg.SummaryCacheTTL),
	}
	s.janitor = cache.NewJanitor(s.summaryCache, s.breakdownCache)
	s.janitor.Start(10 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/auth/me", s.requireAuth(s.handleProfile))

	mux.HandleFunc("GET /api/transactions", s.requireAuth(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.requireAuth(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.requireAuth(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.requireAuth(s.handleDeleteTransaction))
	mux.HandleFunc("GET /api/transactions/summary", s.requireAuth(s.handleSummary))
	mux.HandleFunc("GET /api/transactions/charts/categories", s.requireAuth(s.handleCategoryChart))
	mux.HandleFunc("GET /api/transactions/charts/monthly", s.requireAuth(s.handleMonthlyChart))
	mux.HandleFunc("GET /api/transactions/categories", s.requireAuth(s.handleSuggestedCategories))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(httpLogger, s.resolver.ExtractClientIP)
	limited := s.limiter.Middleware(s.resolver.ExtractClientIP, writeRateLimited)

	var handler http.Handler = mux
	handler = limited(handler)
	handler = tracer.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = applog.Middleware(httpLogger)(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops background goroutines, then drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.janitor.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// invalidateAggregates drops a user's cached aggregates after a
// mutation.
func (s *Server) invalidateAggregates(userID string) {
	s.summaryCache.Delete(userID)
	s.breakdownCache.Delete(userID)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

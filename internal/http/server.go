// Package http serves the hairfolio JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "hairfolio/internal/log"
	"hairfolio/internal/middleware/ratelimit"
	"hairfolio/internal/middleware/security"
	"hairfolio/internal/middleware/trace"
	"hairfolio/internal/services"
	"hairfolio/internal/settings"
)

const (
	defaultReportTimeout = 30 * time.Second
	maxBackupBytes       = 10 << 20
)

// Deps are the services the API is built on. Backups, Settings and Ping are
// optional.
type Deps struct {
	Ledger        *services.Ledger
	Reports       *services.Reports
	Backups       *services.Backups
	Settings      *settings.Store
	Ping          func(context.Context) error
	Logger        *applog.Logger
	RateLimit     ratelimit.Config
	ReportTimeout time.Duration
	Now           func() time.Time
}

type Server struct {
	http.Server

	deps     Deps
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = applog.FromContext(context.Background())
	}
	deps.Logger = deps.Logger.WithComponent(applog.ComponentHTTP)
	if deps.ReportTimeout <= 0 {
		deps.ReportTimeout = defaultReportTimeout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &Server{
		deps:     deps,
		limiter:  ratelimit.NewLimiter(deps.RateLimit),
		detector: security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(deps.Logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/reports", s.handleReportCatalog)
	mux.HandleFunc("GET /api/reports/{kind}", s.handleGenerateReport)
	mux.HandleFunc("GET /api/reports/{kind}/export", s.handleExportReport)
	mux.HandleFunc("POST /api/reports/{kind}/sheets", s.handlePublishReport)
	mux.HandleFunc("GET /api/analytics/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/analytics/kpi", s.handleKPI)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)
	mux.HandleFunc("GET /api/backup", s.handleExportBackup)
	mux.HandleFunc("POST /api/backup", s.handleImportBackup)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.writeRateLimited)(handler)
	handler = s.flagSuspicious(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      deps.ReportTimeout + 15*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Shutdown stops the limiter and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// flagSuspicious logs requests that look like scans. They are still served.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorResponse{
		Error:     "rate limit exceeded, try again later",
		RequestID: trace.GetRequestID(r.Context()),
	})
}

type healthResponse struct {
	Status             string  `json:"status"`
	Requests           int64   `json:"requests"`
	AverageResponseMs  float64 `json:"averageResponseMs"`
	RateLimited        int64   `json:"rateLimited"`
	ActiveClients      int64   `json:"activeClients"`
	SuspiciousRequests int64   `json:"suspiciousRequests"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	traffic := s.tracer.GetMetrics()
	limits := s.limiter.GetMetrics()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:             "ok",
		Requests:           traffic.TotalRequests,
		AverageResponseMs:  float64(traffic.AverageResponseTime.Microseconds()) / 1000,
		RateLimited:        limits.Rejected,
		ActiveClients:      limits.ClientCount,
		SuspiciousRequests: s.detector.GetMetrics().SuspiciousRequests,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ping(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/carteira-sync/internal/api_gateway/handler"
	"github.com/carteira-sync/internal/api_gateway/middleware"
	"github.com/carteira-sync/internal/api_gateway/service"
	"github.com/carteira-sync/internal/config"
	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer calls into. A single workspace
// usually backs the ledger services.
type Services struct {
	Accounts     service.AccountService
	Categories   service.CategoryService
	Transactions service.TransactionService
	Cards        service.CardService
	Budgets      service.BudgetService
	Data         service.DataService
	Session      service.SessionService
	Status       service.StatusService
	Failures     service.FailureCounter
	FailureLog   service.FailureLog // optional
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
	limiter    *middleware.RateLimiter
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, svc Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)

	h := handlers{
		session:      handler.NewSessionHandler(log, svc.Session),
		accounts:     handler.NewAccountHandler(log, svc.Accounts),
		categories:   handler.NewCategoryHandler(log, svc.Categories),
		transactions: handler.NewTransactionHandler(log, svc.Transactions),
		cards:        handler.NewCardHandler(log, svc.Cards),
		budgets:      handler.NewBudgetHandler(log, svc.Budgets),
		data:         handler.NewDataHandler(log, svc.Data),
		health:       handler.NewHealthHandler(svc.Status, svc.Failures),
	}
	if svc.FailureLog != nil {
		h.failures = handler.NewFailureHandler(log, svc.FailureLog)
	}
	setupRouter(log, httpRouter, h, limiter)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
		limiter:    limiter,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server, waiting at most the write timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	defer s.limiter.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}

package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/camuig/trade-journal/internal/config"
	"github.com/camuig/trade-journal/internal/ledger"
	"github.com/camuig/trade-journal/internal/logger"
)

// Server exposes the journal as a JSON API. Requests are served against the
// store without additional locking.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	ledger     *ledger.Ledger
	config     *config.Config
	logger     *logger.Logger
}

func NewServer(l *ledger.Ledger, cfg *config.Config, log *logger.Logger) *Server {
	s := &Server{
		ledger: l,
		config: cfg,
		logger: log,
	}

	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/trades", s.handleListTrades).Methods(http.MethodGet)
	api.HandleFunc("/trades", s.handleCreateTrade).Methods(http.MethodPost)
	api.HandleFunc("/trades/{id}", s.handleEditTrade).Methods(http.MethodPut)
	api.HandleFunc("/trades/{id}", s.handleDeleteTrade).Methods(http.MethodDelete)
	api.HandleFunc("/positions", s.handleListPositions).Methods(http.MethodGet)
	api.HandleFunc("/positions/{name}/price", s.handleSetPrice).Methods(http.MethodPut)
	api.HandleFunc("/positions/{name}/recalculate", s.handleRecalculate).Methods(http.MethodPost)
	api.HandleFunc("/prices/refresh", s.handleRefreshPrices).Methods(http.MethodPost)
	api.HandleFunc("/allocations", s.handleAllocations).Methods(http.MethodGet)
	api.HandleFunc("/cash", s.handleCashBalance).Methods(http.MethodGet)
	api.HandleFunc("/cash", s.handleAdjustCash).Methods(http.MethodPost)
	api.HandleFunc("/portfolio", s.handlePortfolio).Methods(http.MethodGet)
	api.HandleFunc("/reports/monthly-pnl", s.handleMonthlyPnL).Methods(http.MethodGet)
	api.HandleFunc("/reports/performance", s.handlePerformance).Methods(http.MethodGet)
	api.HandleFunc("/reports/reinvestments", s.handleReinvestments).Methods(http.MethodGet)
	api.HandleFunc("/strategies", s.handleListStrategies).Methods(http.MethodGet)
	api.HandleFunc("/strategies", s.handleCreateStrategy).Methods(http.MethodPost)

	s.router = r
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("web server starting", "port", s.config.Web.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

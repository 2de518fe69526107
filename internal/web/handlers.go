package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/camuig/trade-journal/internal/ledger"
	"github.com/camuig/trade-journal/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.TradeFilter{
		AssetName: strings.TrimSpace(q.Get("asset")),
		TradeType: strings.ToUpper(strings.TrimSpace(q.Get("type"))),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		filter.Limit = limit
	}

	entries, err := s.ledger.Journal.Entries(filter)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var in ledger.TradeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	receipt, err := s.ledger.Mutator.Create(in)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) handleEditTrade(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var in ledger.TradeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	trade, err := s.ledger.Mutator.Edit(id, in)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	position, err := s.ledger.Mutator.Delete(id)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"position": position})
}

func (s *Server) handleListPositions(w http.ResponseWriter, _ *http.Request) {
	positions, err := s.ledger.Journal.Positions()
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

func (s *Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPrice *float64 `json:"current_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.CurrentPrice == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "current_price is required"})
		return
	}

	asset, err := s.ledger.Marks.SetPrice(mux.Vars(r)["name"], *req.CurrentPrice)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	asset, err := s.ledger.Recalculator.RecalculateByName(mux.Vars(r)["name"])
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) handleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	applied, err := s.ledger.Marks.Refresh(r.Context())
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applied": applied})
}

func (s *Server) handleAllocations(w http.ResponseWriter, _ *http.Request) {
	sales, err := s.ledger.Allocations.AvailableSales()
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (s *Server) handleCashBalance(w http.ResponseWriter, _ *http.Request) {
	balance, err := s.ledger.Cash.Balance()
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (s *Server) handleAdjustCash(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount  float64 `json:"amount"`
		Deposit bool    `json:"deposit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	balance, err := s.ledger.Cash.Adjust(req.Amount, req.Deposit)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	s.logger.Info("cash adjusted", "amount", req.Amount, "deposit", req.Deposit, "balance", balance)
	writeJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, _ *http.Request) {
	summary, err := s.ledger.Journal.Portfolio()
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleMonthlyPnL(w http.ResponseWriter, _ *http.Request) {
	months, err := s.ledger.Journal.MonthlyPnL()
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, months)
}

func (s *Server) handlePerformance(w http.ResponseWriter, _ *http.Request) {
	perf, err := s.ledger.Journal.Performance()
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, perf)
}

func (s *Server) handleReinvestments(w http.ResponseWriter, _ *http.Request) {
	reinvested, err := s.ledger.Journal.Reinvestments()
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reinvested)
}

func (s *Server) handleListStrategies(w http.ResponseWriter, _ *http.Request) {
	strategies, err := s.ledger.Strategies.List()
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, strategies)
}

func (s *Server) handleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	var in ledger.StrategyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	strategy, err := s.ledger.Strategies.Create(in)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, strategy)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrInsufficientHoldings):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrTradeNotFound), errors.Is(err, ledger.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrQuotesDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeLedgerError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeError(w, status, err)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

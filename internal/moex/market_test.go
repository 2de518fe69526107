package moex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/camuig/trade-journal/internal/config"
	"github.com/camuig/trade-journal/internal/logger"
)

const issBody = `{"marketdata": {
  "columns": ["SECID", "LAST"],
  "data": [["GAZP", 128.4], ["SBER", 280.5], ["LKOH", null]]
}}`

func TestLastPrices(t *testing.T) {
	var gotPath, gotSecurities string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSecurities = r.URL.Query().Get("securities")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(issBody))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Quotes.BaseURL = srv.URL + "/"
	c := NewClient(cfg, logger.Discard())

	prices, err := c.LastPrices(context.Background(), []string{"SBER", "LKOH", "GAZP"})
	if err != nil {
		t.Fatalf("last prices: %v", err)
	}
	if gotPath != "/iss/engines/stock/markets/shares/boards/TQBR/securities.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotSecurities != "GAZP,LKOH,SBER" {
		t.Errorf("securities = %q", gotSecurities)
	}
	if len(prices) != 2 || prices["SBER"] != 280.5 || prices["GAZP"] != 128.4 {
		t.Errorf("prices = %v", prices)
	}
}

func TestLastPricesErrors(t *testing.T) {
	status := http.StatusBadGateway
	body := ""
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := newClientWithHTTP(srv.Client(), srv.URL, "TQBR", logger.Discard())

	if _, err := c.LastPrices(context.Background(), []string{"SBER"}); err == nil {
		t.Fatal("expected error on bad status")
	}

	status, body = http.StatusOK, `{"marketdata": {"columns": ["SECID"], "data": []}}`
	if _, err := c.LastPrices(context.Background(), []string{"SBER"}); err == nil {
		t.Fatal("expected error on missing columns")
	}

	status, body = http.StatusOK, `not json`
	if _, err := c.LastPrices(context.Background(), []string{"SBER"}); err == nil {
		t.Fatal("expected error on malformed body")
	}

	prices, err := c.LastPrices(context.Background(), nil)
	if err != nil || len(prices) != 0 {
		t.Fatalf("empty request: %v, %v", prices, err)
	}
}

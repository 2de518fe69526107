package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewRepository(db)
}

func newTrade(name, tradeType string, qty, price float64, date time.Time) *Trade {
	return &Trade{
		TradeDate:   date,
		AssetName:   name,
		AssetType:   "stock",
		TradeType:   tradeType,
		Quantity:    qty,
		Price:       price,
		TotalAmount: qty * price,
		Currency:    "toman",
	}
}

func TestCashBalanceSeeded(t *testing.T) {
	repo := setupRepository(t)

	balance, err := repo.GetCashBalance()
	if err != nil {
		t.Fatalf("get cash balance: %v", err)
	}
	if balance.ID != CashBalanceID || balance.AmountIRR != 0 {
		t.Fatalf("unexpected seeded balance: %+v", balance)
	}

	if err := repo.SetCashAmount(-250, time.Now()); err != nil {
		t.Fatalf("set cash: %v", err)
	}
	balance, err = repo.GetCashBalance()
	if err != nil {
		t.Fatalf("get cash balance: %v", err)
	}
	if balance.AmountIRR != -250 {
		t.Fatalf("amount = %v, want -250", balance.AmountIRR)
	}
}

func TestTradeCRUD(t *testing.T) {
	repo := setupRepository(t)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	trade := newTrade("Sber", TradeBuy, 10, 100, day)
	if err := repo.CreateTrade(trade); err != nil {
		t.Fatalf("create trade: %v", err)
	}
	if trade.ID == 0 {
		t.Fatal("expected auto-assigned id")
	}

	got, err := repo.GetTrade(trade.ID)
	if err != nil {
		t.Fatalf("get trade: %v", err)
	}
	if got.TotalAmount != 1000 || got.RelatedTradeID != nil {
		t.Fatalf("unexpected trade: %+v", got)
	}

	got.Notes = "edited"
	if err := repo.UpdateTrade(got); err != nil {
		t.Fatalf("update trade: %v", err)
	}
	if err := repo.SetProfitLoss(got.ID, 12.5); err != nil {
		t.Fatalf("set profit/loss: %v", err)
	}
	got, _ = repo.GetTrade(trade.ID)
	if got.Notes != "edited" || got.ProfitLoss != 12.5 {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := repo.DeleteTrade(trade.ID); err != nil {
		t.Fatalf("delete trade: %v", err)
	}
	if err := repo.DeleteTrade(trade.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetTrade(trade.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get deleted err = %v, want ErrNotFound", err)
	}
}

func TestListTradesOrderingAndFilters(t *testing.T) {
	repo := setupRepository(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, tr := range []*Trade{
		newTrade("Sber", TradeBuy, 1, 10, base),
		newTrade("Gold", TradeBuy, 1, 20, base.AddDate(0, 0, 1)),
		newTrade("Sber", TradeSell, 1, 30, base.AddDate(0, 0, 2)),
	} {
		if err := repo.CreateTrade(tr); err != nil {
			t.Fatalf("create trade %d: %v", i, err)
		}
	}

	all, err := repo.ListTrades(TradeFilter{})
	if err != nil {
		t.Fatalf("list trades: %v", err)
	}
	if len(all) != 3 || all[0].TradeType != TradeSell || all[2].AssetName != "Sber" {
		t.Fatalf("unexpected order: %+v", all)
	}

	sber, err := repo.TradesForAsset("Sber", TradeBuy)
	if err != nil {
		t.Fatalf("trades for asset: %v", err)
	}
	if len(sber) != 1 || sber[0].Price != 10 {
		t.Fatalf("unexpected Sber buys: %+v", sber)
	}

	sales, err := repo.ListSales()
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("expected 1 sale, got %d", len(sales))
	}

	limited, err := repo.ListTrades(TradeFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(limited))
	}
}

func TestLinkedPurchaseTotals(t *testing.T) {
	repo := setupRepository(t)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	sale := newTrade("Sber", TradeSell, 10, 100000, day)
	if err := repo.CreateTrade(sale); err != nil {
		t.Fatalf("create sale: %v", err)
	}
	for _, amount := range []float64{400000, 700000} {
		buy := newTrade("Gold", TradeBuy, 1, amount, day.AddDate(0, 0, 1))
		buy.RelatedTradeID = &sale.ID
		if err := repo.CreateTrade(buy); err != nil {
			t.Fatalf("create linked buy: %v", err)
		}
	}
	if err := repo.CreateTrade(newTrade("Gold", TradeBuy, 1, 5, day)); err != nil {
		t.Fatalf("create unlinked buy: %v", err)
	}

	totals, err := repo.LinkedPurchaseTotals()
	if err != nil {
		t.Fatalf("linked totals: %v", err)
	}
	if len(totals) != 1 || totals[sale.ID] != 1100000 {
		t.Fatalf("unexpected totals: %v", totals)
	}

	one, err := repo.LinkedPurchaseTotal(sale.ID)
	if err != nil {
		t.Fatalf("linked total: %v", err)
	}
	if one != 1100000 {
		t.Fatalf("linked total = %v", one)
	}
	none, err := repo.LinkedPurchaseTotal(sale.ID + 100)
	if err != nil || none != 0 {
		t.Fatalf("unlinked total = %v, %v", none, err)
	}
}

func TestAssetPositionUpdates(t *testing.T) {
	repo := setupRepository(t)
	now := time.Now()

	matched, err := repo.UpdatePosition("Sber", 5, 100, now)
	if err != nil {
		t.Fatalf("update position: %v", err)
	}
	if matched {
		t.Fatal("expected no matching row")
	}

	if err := repo.SaveAsset(&Asset{AssetName: "Sber", AssetType: "stock", Quantity: 1, AvgBuyPrice: 90, LastUpdated: now}); err != nil {
		t.Fatalf("save asset: %v", err)
	}
	matched, err = repo.UpdatePosition("Sber", 0, 0, now)
	if err != nil || !matched {
		t.Fatalf("update existing: matched=%v err=%v", matched, err)
	}
	if err := repo.SetCurrentPrice("Sber", 120, now); err != nil {
		t.Fatalf("set price: %v", err)
	}
	if err := repo.SetCurrentPrice("Nope", 1, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("set price on unknown asset err = %v", err)
	}

	asset, err := repo.GetAsset("Sber")
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if asset.Quantity != 0 || asset.AvgBuyPrice != 0 || asset.CurrentPrice != 120 {
		t.Fatalf("unexpected asset: %+v", asset)
	}

	if err := repo.CreateTrade(newTrade("Gold", TradeBuy, 1, 1, now)); err != nil {
		t.Fatalf("create trade: %v", err)
	}
	names, err := repo.AssetNames()
	if err != nil {
		t.Fatalf("asset names: %v", err)
	}
	if len(names) != 2 || names["Gold"] != "stock" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestStrategiesNewestFirst(t *testing.T) {
	repo := setupRepository(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	older := &Strategy{Name: "Income", RiskLevel: "low", CreatedAt: base}
	newer := &Strategy{Name: "Growth", RiskLevel: "high", AssetAllocation: "stocks 70% - gold 30%", CreatedAt: base.Add(time.Hour)}
	for _, s := range []*Strategy{older, newer} {
		if err := repo.CreateStrategy(s); err != nil {
			t.Fatalf("create strategy: %v", err)
		}
	}

	got, err := repo.ListStrategies()
	if err != nil {
		t.Fatalf("list strategies: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Growth" || got[1].Name != "Income" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].AssetAllocation != "stocks 70% - gold 30%" {
		t.Fatalf("allocation = %q", got[0].AssetAllocation)
	}
}

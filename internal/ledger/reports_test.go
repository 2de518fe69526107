package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/camuig/trade-journal/internal/storage"
)

func TestMonthlyTotals(t *testing.T) {
	jan := time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 1, 0, 0, 0, time.UTC)
	trades := []storage.Trade{
		{TradeType: storage.TradeSell, TradeDate: feb, ProfitLoss: -40},
		{TradeType: storage.TradeSell, TradeDate: jan, ProfitLoss: 0.1},
		{TradeType: storage.TradeBuy, TradeDate: jan, ProfitLoss: 999},
		{TradeType: storage.TradeSell, TradeDate: jan, ProfitLoss: 0.2},
	}

	got := MonthlyTotals(trades)
	if len(got) != 2 {
		t.Fatalf("months = %+v", got)
	}
	if got[0].Month != "2024-01" || got[0].ProfitLoss != 0.3 || got[0].Sales != 2 {
		t.Errorf("january = %+v", got[0])
	}
	if got[1].Month != "2024-02" || got[1].ProfitLoss != -40 || got[1].Sales != 1 {
		t.Errorf("february = %+v", got[1])
	}
}

func TestPerformance(t *testing.T) {
	assets := []storage.Asset{
		{AssetName: "Sber", AvgBuyPrice: 100, CurrentPrice: 120},
		{AssetName: "Gift", AvgBuyPrice: 0, CurrentPrice: 50},
	}
	trades := []storage.Trade{{AssetName: "Sber"}, {AssetName: "Sber"}, {AssetName: "Gone"}}

	got := Performance(assets, trades)
	if got[0].PerformancePct != 20 || got[0].TradeCount != 2 {
		t.Errorf("sber = %+v", got[0])
	}
	if got[1].PerformancePct != 0 || got[1].TradeCount != 0 {
		t.Errorf("zero-cost asset = %+v", got[1])
	}
}

func TestReinvest(t *testing.T) {
	saleID, goneID, freeID := uint(1), uint(99), uint(3)
	trades := []storage.Trade{
		{ID: 4, TradeType: storage.TradeBuy, AssetName: "Gold", TotalAmount: 375, RelatedTradeID: &saleID},
		{ID: 5, TradeType: storage.TradeBuy, AssetName: "Silver", TotalAmount: 10, RelatedTradeID: &goneID},
		{ID: 6, TradeType: storage.TradeBuy, AssetName: "Copper", TotalAmount: 10, RelatedTradeID: &freeID},
		{ID: 2, TradeType: storage.TradeBuy, AssetName: "Sber", TotalAmount: 1000},
		{ID: 3, TradeType: storage.TradeSell, AssetName: "Gift", TotalAmount: 0},
		{ID: 1, TradeType: storage.TradeSell, AssetName: "Sber", TotalAmount: 750},
	}

	got := Reinvest(trades)
	if len(got) != 2 {
		t.Fatalf("reinvestments = %+v", got)
	}
	if got[0].BuyID != 4 || got[0].SaleID != 1 || got[0].SaleAsset != "Sber" || got[0].Percentage != 50 {
		t.Errorf("gold = %+v", got[0])
	}
	if got[1].BuyID != 6 || got[1].Percentage != 0 {
		t.Errorf("zero-amount sale = %+v", got[1])
	}
}

func TestReportsFromJournal(t *testing.T) {
	f := newFixture(t)
	f.create(t, buyInput("Sber", 10, 100, day(0)))
	sale1 := f.create(t, sellInput("Sber", 5, 150, day(1)))
	sale2 := f.create(t, sellInput("Sber", 2, 80, day(25)))

	gold := buyInput("Gold", 1, 375, day(2))
	gold.RelatedTradeID = &sale1.Trade.ID
	f.create(t, gold)
	silver := buyInput("Silver", 1, 100, day(26))
	silver.RelatedTradeID = &sale2.Trade.ID
	f.create(t, silver)

	months, err := f.journal.MonthlyPnL()
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if len(months) != 2 || months[0].ProfitLoss != 250 || months[1].Month != "2024-02" || months[1].ProfitLoss != -40 {
		t.Fatalf("months = %+v", months)
	}

	reinvested, err := f.journal.Reinvestments()
	if err != nil {
		t.Fatalf("reinvestments: %v", err)
	}
	if len(reinvested) != 2 || reinvested[0].BuyAsset != "Silver" || reinvested[0].Percentage != 62.5 {
		t.Fatalf("reinvestments = %+v", reinvested)
	}

	if _, err := f.mutator.Delete(sale2.Trade.ID); err != nil {
		t.Fatalf("delete sale: %v", err)
	}
	reinvested, err = f.journal.Reinvestments()
	if err != nil {
		t.Fatalf("reinvestments: %v", err)
	}
	if len(reinvested) != 1 || reinvested[0].BuyAsset != "Gold" || reinvested[0].Percentage != 50 {
		t.Fatalf("dangling link not skipped: %+v", reinvested)
	}

	if err := f.repo.SetCurrentPrice("Sber", 120, day(30)); err != nil {
		t.Fatalf("set price: %v", err)
	}
	perf, err := f.journal.Performance()
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	byName := make(map[string]AssetPerformance)
	for _, p := range perf {
		byName[p.AssetName] = p
	}
	if p := byName["Sber"]; p.PerformancePct != 20 || p.TradeCount != 2 {
		t.Fatalf("sber = %+v", p)
	}
	if p := byName["Gold"]; p.PerformancePct != 0 || p.TradeCount != 1 {
		t.Fatalf("gold = %+v", p)
	}
}

func TestStrategies(t *testing.T) {
	f := newFixture(t)
	strategies := NewStrategies(f.repo)

	first, err := strategies.Create(StrategyInput{Name: "  Income ", AssetAllocation: "gold 100%"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Name != "Income" || first.RiskLevel != RiskVeryLow || first.ID == 0 {
		t.Fatalf("created = %+v", first)
	}
	if _, err := strategies.Create(StrategyInput{Name: "Growth", RiskLevel: "HIGH"}); err != nil {
		t.Fatalf("create growth: %v", err)
	}

	for _, in := range []StrategyInput{{Name: " "}, {Name: "Yolo", RiskLevel: "extreme"}} {
		if _, err := strategies.Create(in); !errors.Is(err, ErrValidation) {
			t.Fatalf("create %+v err = %v, want ErrValidation", in, err)
		}
	}

	list, err := strategies.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Growth" || list[0].RiskLevel != RiskHigh {
		t.Fatalf("list = %+v", list)
	}
}

package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/camuig/trade-journal/internal/storage"
)

// MonthlyPnL is realized profit/loss summed over one calendar month.
type MonthlyPnL struct {
	Month      string  `json:"month"` // YYYY-MM
	ProfitLoss float64 `json:"profit_loss"`
	Sales      int     `json:"sales"`
}

// MonthlyTotals groups sells by trade month, oldest month first.
func MonthlyTotals(sales []storage.Trade) []MonthlyPnL {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, s := range sales {
		if !s.IsSell() {
			continue
		}
		month := s.TradeDate.UTC().Format("2006-01")
		sums[month] = sums[month].Add(dec(s.ProfitLoss))
		counts[month]++
	}

	out := make([]MonthlyPnL, 0, len(sums))
	for month, sum := range sums {
		out = append(out, MonthlyPnL{Month: month, ProfitLoss: sum.InexactFloat64(), Sales: counts[month]})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Month < out[k].Month })
	return out
}

type AssetPerformance struct {
	AssetName      string  `json:"asset_name"`
	AssetType      string  `json:"asset_type"`
	AvgBuyPrice    float64 `json:"avg_buy_price"`
	CurrentPrice   float64 `json:"current_price"`
	PerformancePct float64 `json:"performance_pct"`
	TradeCount     int     `json:"trade_count"`
}

// Performance compares each position's mark price with its average cost.
// Positions without a cost basis report 0%.
func Performance(assets []storage.Asset, trades []storage.Trade) []AssetPerformance {
	counts := make(map[string]int)
	for _, t := range trades {
		counts[t.AssetName]++
	}

	out := make([]AssetPerformance, 0, len(assets))
	for _, a := range assets {
		p := AssetPerformance{
			AssetName:    a.AssetName,
			AssetType:    a.AssetType,
			AvgBuyPrice:  a.AvgBuyPrice,
			CurrentPrice: a.CurrentPrice,
			TradeCount:   counts[a.AssetName],
		}
		if avg := dec(a.AvgBuyPrice); avg.IsPositive() {
			p.PerformancePct = dec(a.CurrentPrice).Sub(avg).Div(avg).Shift(2).InexactFloat64()
		}
		out = append(out, p)
	}
	return out
}

// Reinvestment pairs a linked purchase with the sale that funded it.
type Reinvestment struct {
	BuyID      uint      `json:"buy_id"`
	BuyDate    time.Time `json:"buy_date"`
	BuyAsset   string    `json:"buy_asset"`
	BuyAmount  float64   `json:"buy_amount"`
	SaleID     uint      `json:"sale_id"`
	SaleDate   time.Time `json:"sale_date"`
	SaleAsset  string    `json:"sale_asset"`
	SaleAmount float64   `json:"sale_amount"`
	Percentage float64   `json:"percentage"`
}

// Reinvest lists linked purchases in input order. Purchases whose sale is
// not among trades are left out.
func Reinvest(trades []storage.Trade) []Reinvestment {
	byID := make(map[uint]*storage.Trade, len(trades))
	for i := range trades {
		byID[trades[i].ID] = &trades[i]
	}

	out := make([]Reinvestment, 0)
	for _, b := range trades {
		if b.TradeType != storage.TradeBuy || b.RelatedTradeID == nil {
			continue
		}
		sale, ok := byID[*b.RelatedTradeID]
		if !ok {
			continue
		}
		r := Reinvestment{
			BuyID:      b.ID,
			BuyDate:    b.TradeDate,
			BuyAsset:   b.AssetName,
			BuyAmount:  b.TotalAmount,
			SaleID:     sale.ID,
			SaleDate:   sale.TradeDate,
			SaleAsset:  sale.AssetName,
			SaleAmount: sale.TotalAmount,
		}
		if total := dec(sale.TotalAmount); total.IsPositive() {
			r.Percentage = dec(b.TotalAmount).Div(total).Shift(2).InexactFloat64()
		}
		out = append(out, r)
	}
	return out
}

func (j *Journal) MonthlyPnL() ([]MonthlyPnL, error) {
	sales, err := j.store.ListSales()
	if err != nil {
		return nil, persistence("list sales", err)
	}
	return MonthlyTotals(sales), nil
}

func (j *Journal) Performance() ([]AssetPerformance, error) {
	assets, err := j.store.ListAssets()
	if err != nil {
		return nil, persistence("list positions", err)
	}
	trades, err := j.store.ListTrades(storage.TradeFilter{})
	if err != nil {
		return nil, persistence("list trades", err)
	}
	return Performance(assets, trades), nil
}

func (j *Journal) Reinvestments() ([]Reinvestment, error) {
	trades, err := j.store.ListTrades(storage.TradeFilter{})
	if err != nil {
		return nil, persistence("list trades", err)
	}
	return Reinvest(trades), nil
}

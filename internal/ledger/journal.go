package ledger

import (
	"errors"
	"time"

	"github.com/camuig/trade-journal/internal/storage"
)

const (
	LinkResolved = "linked"
	LinkMissing  = "missing"
)

type LinkedSale struct {
	ID        uint      `json:"id"`
	AssetName string    `json:"asset_name"`
	TradeDate time.Time `json:"trade_date"`
}

// Entry is a trade as shown in the journal. LinkStatus is empty for
// unlinked trades and "missing" when the referenced sale no longer exists.
type Entry struct {
	storage.Trade
	LinkStatus string      `json:"link_status,omitempty"`
	LinkedSale *LinkedSale `json:"linked_sale,omitempty"`
}

// Journal is the read side: trade listing with link resolution and
// portfolio valuation.
type Journal struct {
	store Store
}

func NewJournal(store Store) *Journal {
	return &Journal{store: store}
}

func (j *Journal) Entries(filter storage.TradeFilter) ([]Entry, error) {
	trades, err := j.store.ListTrades(filter)
	if err != nil {
		return nil, persistence("list trades", err)
	}

	known := make(map[uint]*storage.Trade, len(trades))
	for i := range trades {
		known[trades[i].ID] = &trades[i]
	}
	lookup := func(id uint) (*storage.Trade, error) {
		if t, ok := known[id]; ok {
			return t, nil
		}
		t, err := j.store.GetTrade(id)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, persistence("load linked sale", err)
		}
		known[id] = t
		return t, nil
	}

	entries := make([]Entry, 0, len(trades))
	for _, t := range trades {
		entry := Entry{Trade: t}
		if t.TradeType == storage.TradeBuy && t.RelatedTradeID != nil {
			sale, err := lookup(*t.RelatedTradeID)
			if err != nil {
				return nil, err
			}
			if sale == nil {
				entry.LinkStatus = LinkMissing
			} else {
				entry.LinkStatus = LinkResolved
				entry.LinkedSale = &LinkedSale{ID: sale.ID, AssetName: sale.AssetName, TradeDate: sale.TradeDate}
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Holding is a position valued at its mark price.
type Holding struct {
	storage.Asset
	MarketValue      float64 `json:"market_value"`
	CostBasis        float64 `json:"cost_basis"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	UnrealizedPnLPct float64 `json:"unrealized_pnl_pct"`
}

type Summary struct {
	Holdings      []Holding `json:"holdings"`
	TotalValue    float64   `json:"total_value"`
	TotalCost     float64   `json:"total_cost"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	RealizedPnL   float64   `json:"realized_pnl"`
	Cash          float64   `json:"cash"`
	NetWorth      float64   `json:"net_worth"`
}

// Valuate marks every asset to its current price.
func Valuate(assets []storage.Asset, cash, realized float64) Summary {
	out := Summary{
		Holdings:    make([]Holding, 0, len(assets)),
		RealizedPnL: realized,
		Cash:        cash,
	}
	for _, a := range assets {
		qty, mark, avg := dec(a.Quantity), dec(a.CurrentPrice), dec(a.AvgBuyPrice)
		h := Holding{
			Asset:         a,
			MarketValue:   qty.Mul(mark).InexactFloat64(),
			CostBasis:     qty.Mul(avg).InexactFloat64(),
			UnrealizedPnL: qty.Mul(mark.Sub(avg)).InexactFloat64(),
		}
		if avg.IsPositive() {
			h.UnrealizedPnLPct = mark.Sub(avg).Div(avg).Shift(2).InexactFloat64()
		}
		out.Holdings = append(out.Holdings, h)
		out.TotalValue += h.MarketValue
		out.TotalCost += h.CostBasis
		out.UnrealizedPnL += h.UnrealizedPnL
	}
	out.NetWorth = out.TotalValue + cash
	return out
}

func (j *Journal) Portfolio() (*Summary, error) {
	assets, err := j.store.ListAssets()
	if err != nil {
		return nil, persistence("list positions", err)
	}
	cash, err := j.store.GetCashBalance()
	if err != nil {
		return nil, persistence("read cash balance", err)
	}
	realized, err := j.store.TotalRealizedPnL()
	if err != nil {
		return nil, persistence("sum realized profit/loss", err)
	}
	summary := Valuate(assets, cash.AmountIRR, realized)
	return &summary, nil
}

func (j *Journal) Positions() ([]storage.Asset, error) {
	assets, err := j.store.ListAssets()
	if err != nil {
		return nil, persistence("list positions", err)
	}
	return assets, nil
}

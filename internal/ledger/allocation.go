package ledger

import (
	"errors"

	"github.com/camuig/trade-journal/internal/storage"
)

// AvailableSale is a sale annotated with how much of its proceeds linked
// purchases have not yet claimed.
type AvailableSale struct {
	storage.Trade
	Allocated float64 `json:"allocated_amount"`
	Available float64 `json:"available_amount"`
}

// Allocate annotates every sale, keeping input order. Available may be
// negative when linked purchases exceed the sale.
func Allocate(sales []storage.Trade, linked map[uint]float64) []AvailableSale {
	out := make([]AvailableSale, 0, len(sales))
	for _, s := range sales {
		allocated := linked[s.ID]
		out = append(out, AvailableSale{
			Trade:     s,
			Allocated: allocated,
			Available: dec(s.TotalAmount).Sub(dec(allocated)).InexactFloat64(),
		})
	}
	return out
}

// Allocations is a read-only projection recomputed on every call.
type Allocations struct {
	store Store
}

func NewAllocations(store Store) *Allocations {
	return &Allocations{store: store}
}

// AvailableSales lists sales, most recent first, that still have unclaimed proceeds.
func (a *Allocations) AvailableSales() ([]AvailableSale, error) {
	sales, err := a.store.ListSales()
	if err != nil {
		return nil, persistence("list sales", err)
	}
	linked, err := a.store.LinkedPurchaseTotals()
	if err != nil {
		return nil, persistence("sum linked purchases", err)
	}

	out := make([]AvailableSale, 0, len(sales))
	for _, s := range Allocate(sales, linked) {
		if s.Available > 0 {
			out = append(out, s)
		}
	}
	return out, nil
}

// Available returns one sale's unclaimed amount, which may be zero or negative.
func (a *Allocations) Available(saleID uint) (float64, error) {
	sale, err := a.store.GetTrade(saleID)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, ErrTradeNotFound
	}
	if err != nil {
		return 0, persistence("load sale", err)
	}
	if !sale.IsSell() {
		return 0, invalid("sale", "trade %d is not a sale", saleID)
	}
	return a.available(sale)
}

func (a *Allocations) available(sale *storage.Trade) (float64, error) {
	allocated, err := a.store.LinkedPurchaseTotal(sale.ID)
	if err != nil {
		return 0, persistence("sum linked purchases", err)
	}
	return Allocate([]storage.Trade{*sale}, map[uint]float64{sale.ID: allocated})[0].Available, nil
}

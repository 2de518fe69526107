package ledger

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/camuig/trade-journal/internal/storage"
)

// Position is the derived quantity and cost basis of one asset.
type Position struct {
	Quantity float64 `json:"quantity"`
	AvgCost  float64 `json:"avg_cost"`
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// finite reports whether f can pass through decimal conversion.
func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// TradeTotal is quantity × price, the stored total_amount of a trade.
func TradeTotal(quantity, price float64) float64 {
	return dec(quantity).Mul(dec(price)).InexactFloat64()
}

// PooledAverage is the lifetime weighted mean price over every buy.
// Sells never consume lots; the result depends only on the set of buys.
func PooledAverage(buys []storage.Trade) float64 {
	bought := decimal.Zero
	cost := decimal.Zero
	for _, b := range buys {
		q := dec(b.Quantity)
		bought = bought.Add(q)
		cost = cost.Add(q.Mul(dec(b.Price)))
	}
	if !bought.IsPositive() {
		return 0
	}
	return cost.Div(bought).InexactFloat64()
}

// Rebuild derives a position from the full buy and sell history.
func Rebuild(buys, sells []storage.Trade) Position {
	net := decimal.Zero
	for _, b := range buys {
		net = net.Add(dec(b.Quantity))
	}
	for _, s := range sells {
		net = net.Sub(dec(s.Quantity))
	}
	return Position{
		Quantity: net.InexactFloat64(),
		AvgCost:  PooledAverage(buys),
	}
}

// SellProfit is quantity × (price − avgCost).
func SellProfit(quantity, price, avgCost float64) float64 {
	return dec(quantity).Mul(dec(price).Sub(dec(avgCost))).InexactFloat64()
}

// ApplyBuy is the incremental create-path update for a purchase.
func ApplyBuy(pos Position, quantity, price float64) Position {
	newQty := dec(pos.Quantity).Add(dec(quantity))
	if !newQty.IsPositive() {
		return Position{Quantity: newQty.InexactFloat64(), AvgCost: price}
	}
	held := dec(pos.Quantity).Mul(dec(pos.AvgCost))
	added := dec(quantity).Mul(dec(price))
	return Position{
		Quantity: newQty.InexactFloat64(),
		AvgCost:  held.Add(added).Div(newQty).InexactFloat64(),
	}
}

// ApplySell is the incremental create-path update for a sale; cost is untouched.
func ApplySell(pos Position, quantity float64) Position {
	return Position{
		Quantity: dec(pos.Quantity).Sub(dec(quantity)).InexactFloat64(),
		AvgCost:  pos.AvgCost,
	}
}

func addCash(balance, amount float64, deposit bool) float64 {
	if deposit {
		return dec(balance).Add(dec(amount)).InexactFloat64()
	}
	return dec(balance).Sub(dec(amount)).InexactFloat64()
}

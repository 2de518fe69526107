package ledger

import (
	"time"

	"github.com/camuig/trade-journal/internal/storage"
)

// Store is the persistence the ledger needs; *storage.Repository satisfies it.
// Calls are independent commits with no atomicity across them.
type Store interface {
	CreateTrade(trade *storage.Trade) error
	GetTrade(id uint) (*storage.Trade, error)
	UpdateTrade(trade *storage.Trade) error
	DeleteTrade(id uint) error
	ListTrades(filter storage.TradeFilter) ([]storage.Trade, error)
	TradesForAsset(assetName, tradeType string) ([]storage.Trade, error)
	ListSales() ([]storage.Trade, error)
	SetProfitLoss(id uint, profitLoss float64) error

	LinkedPurchaseTotals() (map[uint]float64, error)
	LinkedPurchaseTotal(saleID uint) (float64, error)
	TotalRealizedPnL() (float64, error)
	AssetNames() (map[string]string, error)

	GetAsset(name string) (*storage.Asset, error)
	ListAssets() ([]storage.Asset, error)
	SaveAsset(asset *storage.Asset) error
	UpdatePosition(name string, quantity, avgBuyPrice float64, at time.Time) (bool, error)
	SetCurrentPrice(name string, price float64, at time.Time) error

	GetCashBalance() (*storage.CashBalance, error)
	SetCashAmount(amount float64, at time.Time) error

	CreateStrategy(strategy *storage.Strategy) error
	ListStrategies() ([]storage.Strategy, error)
}

var _ Store = (*storage.Repository)(nil)

// Notifier receives user-facing events. Delivery failures are the notifier's concern.
type Notifier interface {
	NotifyTrade(trade *storage.Trade)
	NotifyOverAllocation(saleID uint, amount, available float64)
	NotifyError(context string, err error)
}

type nopNotifier struct{}

func (nopNotifier) NotifyTrade(*storage.Trade) {}
func (nopNotifier) NotifyOverAllocation(uint, float64, float64) {}
func (nopNotifier) NotifyError(string, error) {}

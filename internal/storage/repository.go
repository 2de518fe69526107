package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Trades

type TradeFilter struct {
	AssetName string
	TradeType string
	Limit     int
}

func (r *Repository) CreateTrade(trade *Trade) error {
	return r.db.Create(trade).Error
}

func (r *Repository) UpdateTrade(trade *Trade) error {
	return r.db.Save(trade).Error
}

func (r *Repository) GetTrade(id uint) (*Trade, error) {
	var trade Trade
	if err := r.db.First(&trade, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &trade, nil
}

func (r *Repository) DeleteTrade(id uint) error {
	res := r.db.Delete(&Trade{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTrades returns trades most recent first.
func (r *Repository) ListTrades(filter TradeFilter) ([]Trade, error) {
	q := r.db.Model(&Trade{})
	if filter.AssetName != "" {
		q = q.Where("asset_name = ?", filter.AssetName)
	}
	if filter.TradeType != "" {
		q = q.Where("trade_type = ?", filter.TradeType)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var trades []Trade
	err := q.Order("trade_date DESC").Order("id DESC").Find(&trades).Error
	return trades, err
}

// TradesForAsset returns one direction of an asset's history in chronological order.
func (r *Repository) TradesForAsset(assetName, tradeType string) ([]Trade, error) {
	var trades []Trade
	err := r.db.Where("asset_name = ? AND trade_type = ?", assetName, tradeType).
		Order("trade_date ASC").Order("id ASC").Find(&trades).Error
	return trades, err
}

func (r *Repository) ListSales() ([]Trade, error) {
	return r.ListTrades(TradeFilter{TradeType: TradeSell})
}

func (r *Repository) SetProfitLoss(id uint, profitLoss float64) error {
	return r.db.Model(&Trade{}).Where("id = ?", id).Update("profit_loss", profitLoss).Error
}

// LinkedPurchaseTotals sums BUY totals per linked sale id.
func (r *Repository) LinkedPurchaseTotals() (map[uint]float64, error) {
	var rows []struct {
		RelatedTradeID uint
		Total          float64
	}
	err := r.db.Model(&Trade{}).
		Select("related_trade_id, COALESCE(SUM(total_amount), 0) AS total").
		Where("related_trade_id IS NOT NULL AND trade_type = ?", TradeBuy).
		Group("related_trade_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[uint]float64, len(rows))
	for _, row := range rows {
		totals[row.RelatedTradeID] = row.Total
	}
	return totals, nil
}

func (r *Repository) LinkedPurchaseTotal(saleID uint) (float64, error) {
	var total float64
	err := r.db.Model(&Trade{}).
		Where("related_trade_id = ? AND trade_type = ?", saleID, TradeBuy).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&total).Error
	return total, err
}

func (r *Repository) TotalRealizedPnL() (float64, error) {
	var total float64
	err := r.db.Model(&Trade{}).
		Where("trade_type = ?", TradeSell).
		Select("COALESCE(SUM(profit_loss), 0)").Scan(&total).Error
	return total, err
}

// AssetNames returns every asset name known to either trades or assets,
// paired with its type.
func (r *Repository) AssetNames() (map[string]string, error) {
	names := make(map[string]string)

	var assets []Asset
	if err := r.db.Select("asset_name", "asset_type").Find(&assets).Error; err != nil {
		return nil, err
	}
	for _, a := range assets {
		names[a.AssetName] = a.AssetType
	}

	var traded []Trade
	if err := r.db.Model(&Trade{}).Distinct("asset_name", "asset_type").Find(&traded).Error; err != nil {
		return nil, err
	}
	for _, t := range traded {
		if _, ok := names[t.AssetName]; !ok {
			names[t.AssetName] = t.AssetType
		}
	}
	return names, nil
}

// Assets

func (r *Repository) GetAsset(name string) (*Asset, error) {
	var asset Asset
	if err := r.db.Where("asset_name = ?", name).First(&asset).Error; err != nil {
		return nil, notFound(err)
	}
	return &asset, nil
}

func (r *Repository) ListAssets() ([]Asset, error) {
	var assets []Asset
	err := r.db.Order("asset_name ASC").Find(&assets).Error
	return assets, err
}

func (r *Repository) SaveAsset(asset *Asset) error {
	return r.db.Save(asset).Error
}

// UpdatePosition writes quantity and average cost and reports whether a row matched.
func (r *Repository) UpdatePosition(name string, quantity, avgBuyPrice float64, at time.Time) (bool, error) {
	res := r.db.Model(&Asset{}).Where("asset_name = ?", name).Updates(map[string]any{
		"quantity":      quantity,
		"avg_buy_price": avgBuyPrice,
		"last_updated":  at,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) SetCurrentPrice(name string, price float64, at time.Time) error {
	res := r.db.Model(&Asset{}).Where("asset_name = ?", name).Updates(map[string]any{
		"current_price": price,
		"last_updated":  at,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Cash

func (r *Repository) GetCashBalance() (*CashBalance, error) {
	var balance CashBalance
	if err := r.db.First(&balance, CashBalanceID).Error; err != nil {
		return nil, notFound(err)
	}
	return &balance, nil
}

func (r *Repository) SetCashAmount(amount float64, at time.Time) error {
	res := r.db.Model(&CashBalance{}).Where("id = ?", CashBalanceID).Updates(map[string]any{
		"amount_irr":   amount,
		"last_updated": at,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Strategies

func (r *Repository) CreateStrategy(strategy *Strategy) error {
	return r.db.Create(strategy).Error
}

// ListStrategies returns strategies newest first.
func (r *Repository) ListStrategies() ([]Strategy, error) {
	var strategies []Strategy
	err := r.db.Order("created_at DESC").Order("id DESC").Find(&strategies).Error
	return strategies, err
}

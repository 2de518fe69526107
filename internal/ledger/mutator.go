package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camuig/trade-journal/internal/config"
	"github.com/camuig/trade-journal/internal/logger"
	"github.com/camuig/trade-journal/internal/storage"
)

// CategoryReinvestment is assigned to purchases linked to a sale when the
// caller gives no category.
const CategoryReinvestment = "reinvestment"

const defaultAssetType = "other"

// TradeInput carries user-entered trade fields. On Edit, an empty Currency
// and nil TradeCategory or IsProfitSale keep the stored values, and
// RelatedTradeID is ignored.
type TradeInput struct {
	TradeDate      time.Time `json:"trade_date"`
	AssetName      string    `json:"asset_name"`
	AssetType      string    `json:"asset_type"`
	TradeType      string    `json:"trade_type"`
	Quantity       float64   `json:"quantity"`
	Price          float64   `json:"price"`
	RelatedTradeID *uint     `json:"related_trade_id,omitempty"`
	TradeCategory  *string   `json:"trade_category,omitempty"`
	IsProfitSale   *bool     `json:"is_profit_sale,omitempty"`
	Currency       string    `json:"currency"`
	Notes          string    `json:"notes"`
}

// Receipt reports the state left behind by a recorded trade.
type Receipt struct {
	Trade       *storage.Trade `json:"trade"`
	Position    *storage.Asset `json:"position"`
	CashBalance float64        `json:"cash_balance"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// Mutator is the only writer of trades. Each step is its own commit; a
// failure part-way leaves earlier steps in place and the caller should
// recalculate the asset.
type Mutator struct {
	store       Store
	recalc      *Recalculator
	allocations *Allocations
	cash        *Cash
	notifier    Notifier
	config      *config.Config
	logger      *logger.Logger
	now         func() time.Time
}

func NewMutator(
	store Store,
	recalc *Recalculator,
	allocations *Allocations,
	cash *Cash,
	notifier Notifier,
	cfg *config.Config,
	log *logger.Logger,
) *Mutator {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Mutator{
		store:       store,
		recalc:      recalc,
		allocations: allocations,
		cash:        cash,
		notifier:    notifier,
		config:      cfg,
		logger:      log,
		now:         time.Now,
	}
}

func (m *Mutator) normalize(in TradeInput) (TradeInput, error) {
	in.AssetName = strings.TrimSpace(in.AssetName)
	in.AssetType = strings.TrimSpace(in.AssetType)
	in.TradeType = strings.ToUpper(strings.TrimSpace(in.TradeType))

	if in.AssetName == "" {
		return in, invalid("asset_name", "is required")
	}
	if in.TradeType != storage.TradeBuy && in.TradeType != storage.TradeSell {
		return in, invalid("trade_type", "must be BUY or SELL, got %q", in.TradeType)
	}
	if !(in.Quantity > 0) {
		return in, invalid("quantity", "must be greater than zero")
	}
	if !finite(in.Quantity) {
		return in, invalid("quantity", "must be a finite number")
	}
	if !(in.Price > 0) {
		return in, invalid("price", "must be greater than zero")
	}
	if !finite(in.Price) {
		return in, invalid("price", "must be a finite number")
	}
	if !finite(TradeTotal(in.Quantity, in.Price)) {
		return in, invalid("total_amount", "quantity × price is out of range")
	}
	if in.AssetType == "" {
		in.AssetType = defaultAssetType
	}
	if in.TradeDate.IsZero() {
		in.TradeDate = m.now()
	}
	return in, nil
}

// Create validates and records a new trade, applies the incremental
// position update and moves cash by the full trade amount.
func (m *Mutator) Create(in TradeInput) (*Receipt, error) {
	in, err := m.normalize(in)
	if err != nil {
		return nil, err
	}
	if in.Currency == "" {
		in.Currency = m.config.Ledger.DefaultCurrency
	}

	trade := &storage.Trade{
		TradeDate:     in.TradeDate,
		AssetName:     in.AssetName,
		AssetType:     in.AssetType,
		TradeType:     in.TradeType,
		Quantity:      in.Quantity,
		Price:         in.Price,
		TotalAmount:   TradeTotal(in.Quantity, in.Price),
		TradeCategory: in.TradeCategory,
		Currency:      in.Currency,
		Notes:         in.Notes,
	}

	var warnings []string
	var overAllocated *overAllocation

	switch trade.TradeType {
	case storage.TradeBuy:
		if in.RelatedTradeID != nil {
			over, err := m.checkLink(*in.RelatedTradeID, trade.TotalAmount)
			if err != nil {
				return nil, err
			}
			trade.RelatedTradeID = in.RelatedTradeID
			if trade.TradeCategory == nil {
				category := CategoryReinvestment
				trade.TradeCategory = &category
			}
			if over != nil {
				overAllocated = over
				warnings = append(warnings, over.String())
			}
		}
	case storage.TradeSell:
		if in.RelatedTradeID != nil {
			return nil, invalid("related_trade_id", "only purchases can be linked to a sale")
		}
		if err := m.checkHoldings(trade.AssetName, trade.Quantity); err != nil {
			return nil, err
		}
		profitSale := in.IsProfitSale != nil && *in.IsProfitSale
		trade.IsProfitSale = &profitSale
	}

	if err := m.store.CreateTrade(trade); err != nil {
		return nil, persistence("insert trade", err)
	}

	pos, err := m.applyIncremental(trade)
	if err != nil {
		m.notifier.NotifyError("position update "+trade.AssetName, err)
		return nil, err
	}

	if trade.IsSell() {
		trade.ProfitLoss = SellProfit(trade.Quantity, trade.Price, pos.AvgBuyPrice)
		if err := m.store.SetProfitLoss(trade.ID, trade.ProfitLoss); err != nil {
			return nil, persistence("write profit/loss", err)
		}
	}

	// A linked purchase still debits its full amount.
	balance, err := m.cash.Update(trade.TotalAmount, trade.IsSell())
	if err != nil {
		m.notifier.NotifyError("cash update "+trade.AssetName, err)
		return nil, err
	}

	if overAllocated != nil {
		m.logger.Warn("over-allocation",
			"sale_id", overAllocated.saleID, "amount", overAllocated.amount, "available", overAllocated.available)
		m.notifier.NotifyOverAllocation(overAllocated.saleID, overAllocated.amount, overAllocated.available)
	}
	m.notifier.NotifyTrade(trade)
	m.logger.Info("trade recorded",
		"id", trade.ID, "asset", trade.AssetName, "type", trade.TradeType,
		"quantity", trade.Quantity, "price", trade.Price, "cash", balance)

	return &Receipt{
		Trade:       trade,
		Position:    pos,
		CashBalance: balance,
		Warnings:    warnings,
	}, nil
}

type overAllocation struct {
	saleID    uint
	amount    float64
	available float64
}

func (o *overAllocation) String() string {
	return fmt.Sprintf("purchase amount %.2f exceeds the %.2f still available from sale %d; the remainder is paid from cash",
		o.amount, o.available, o.saleID)
}

func (m *Mutator) checkLink(saleID uint, amount float64) (*overAllocation, error) {
	sale, err := m.store.GetTrade(saleID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, invalid("related_trade_id", "sale %d not found", saleID)
	}
	if err != nil {
		return nil, persistence("load linked sale", err)
	}
	if !sale.IsSell() {
		return nil, invalid("related_trade_id", "trade %d is not a sale", saleID)
	}
	available, err := m.allocations.available(sale)
	if err != nil {
		return nil, err
	}
	if amount > available {
		return &overAllocation{saleID: saleID, amount: amount, available: available}, nil
	}
	return nil, nil
}

func (m *Mutator) checkHoldings(assetName string, quantity float64) error {
	asset, err := m.store.GetAsset(assetName)
	if errors.Is(err, storage.ErrNotFound) {
		return &InsufficientHoldingsError{Asset: assetName, Requested: quantity}
	}
	if err != nil {
		return persistence("load position", err)
	}
	if asset.Quantity < quantity {
		return &InsufficientHoldingsError{Asset: assetName, Held: asset.Quantity, Requested: quantity}
	}
	return nil
}

// applyIncremental is the create-only fast path. The mark price follows
// the latest trade price.
func (m *Mutator) applyIncremental(trade *storage.Trade) (*storage.Asset, error) {
	asset, err := m.store.GetAsset(trade.AssetName)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		asset = &storage.Asset{
			AssetName:   trade.AssetName,
			AssetType:   trade.AssetType,
			Quantity:    trade.Quantity,
			AvgBuyPrice: trade.Price,
		}
		if trade.IsSell() {
			// checkHoldings saw a row; it vanished before this write.
			asset.Quantity = -trade.Quantity
		}
	case err != nil:
		return nil, persistence("load position", err)
	default:
		pos := Position{Quantity: asset.Quantity, AvgCost: asset.AvgBuyPrice}
		if trade.IsSell() {
			pos = ApplySell(pos, trade.Quantity)
		} else {
			pos = ApplyBuy(pos, trade.Quantity, trade.Price)
		}
		asset.Quantity = pos.Quantity
		asset.AvgBuyPrice = pos.AvgCost
	}

	asset.CurrentPrice = trade.Price
	asset.LastUpdated = m.now()
	if err := m.store.SaveAsset(asset); err != nil {
		return nil, persistence("save position", err)
	}
	return asset, nil
}

// Edit rewrites a trade, re-deriving its total and an interim profit/loss,
// then fully recalculates the affected asset (and the previous one on rename).
// Cash is not adjusted.
func (m *Mutator) Edit(id uint, in TradeInput) (*storage.Trade, error) {
	in, err := m.normalize(in)
	if err != nil {
		return nil, err
	}

	trade, err := m.store.GetTrade(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrTradeNotFound
	}
	if err != nil {
		return nil, persistence("load trade", err)
	}
	originalName, originalType := trade.AssetName, trade.AssetType

	trade.TradeDate = in.TradeDate
	trade.AssetName = in.AssetName
	trade.AssetType = in.AssetType
	trade.TradeType = in.TradeType
	trade.Quantity = in.Quantity
	trade.Price = in.Price
	trade.TotalAmount = TradeTotal(in.Quantity, in.Price)
	trade.Notes = in.Notes
	if in.Currency != "" {
		trade.Currency = in.Currency
	}
	if in.TradeCategory != nil {
		trade.TradeCategory = in.TradeCategory
	}

	trade.ProfitLoss = 0
	if trade.IsSell() {
		if in.IsProfitSale != nil {
			trade.IsProfitSale = in.IsProfitSale
		}
		asset, err := m.store.GetAsset(trade.AssetName)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, persistence("load position", err)
		}
		if asset != nil {
			trade.ProfitLoss = SellProfit(trade.Quantity, trade.Price, asset.AvgBuyPrice)
		}
	}

	if err := m.store.UpdateTrade(trade); err != nil {
		return nil, persistence("update trade", err)
	}

	if err := m.recalculate(trade.AssetName, trade.AssetType); err != nil {
		return nil, err
	}
	if originalName != trade.AssetName {
		if err := m.recalculate(originalName, originalType); err != nil {
			return nil, err
		}
	}

	m.logger.Info("trade edited", "id", id, "asset", trade.AssetName, "previous_asset", originalName)

	updated, err := m.store.GetTrade(id)
	if err != nil {
		return nil, persistence("reload trade", err)
	}
	return updated, nil
}

// Delete removes a trade and recalculates its asset. Purchases linked to a
// deleted sale keep their now dangling reference.
func (m *Mutator) Delete(id uint) (*storage.Asset, error) {
	trade, err := m.store.GetTrade(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrTradeNotFound
	}
	if err != nil {
		return nil, persistence("load trade", err)
	}

	if err := m.store.DeleteTrade(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, persistence("delete trade", err)
	}

	asset, err := m.recalc.Recalculate(trade.AssetName, trade.AssetType)
	if err != nil {
		m.notifier.NotifyError("recalculate "+trade.AssetName, err)
		return nil, err
	}

	m.logger.Info("trade deleted", "id", id, "asset", trade.AssetName)
	return asset, nil
}

func (m *Mutator) recalculate(assetName, assetType string) error {
	if _, err := m.recalc.Recalculate(assetName, assetType); err != nil {
		m.notifier.NotifyError("recalculate "+assetName, err)
		return err
	}
	return nil
}

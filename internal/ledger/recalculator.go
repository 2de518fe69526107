package ledger

import (
	"errors"
	"sort"
	"time"

	"github.com/camuig/trade-journal/internal/logger"
	"github.com/camuig/trade-journal/internal/storage"
)

// Recalculator rebuilds an asset's position and its sells' profit/loss purely
// from trade history. Running it again without trade changes is a no-op, so it
// is the recovery path after any interrupted mutation.
type Recalculator struct {
	store  Store
	logger *logger.Logger
	now    func() time.Time
}

func NewRecalculator(store Store, log *logger.Logger) *Recalculator {
	return &Recalculator{store: store, logger: log, now: time.Now}
}

func (r *Recalculator) Recalculate(assetName, assetType string) (*storage.Asset, error) {
	buys, err := r.store.TradesForAsset(assetName, storage.TradeBuy)
	if err != nil {
		return nil, persistence("load buys", err)
	}
	sells, err := r.store.TradesForAsset(assetName, storage.TradeSell)
	if err != nil {
		return nil, persistence("load sells", err)
	}

	pos := Rebuild(buys, sells)
	now := r.now()

	matched, err := r.store.UpdatePosition(assetName, pos.Quantity, pos.AvgCost, now)
	if err != nil {
		return nil, persistence("update position", err)
	}
	if !matched {
		asset := &storage.Asset{
			AssetName:   assetName,
			AssetType:   assetType,
			Quantity:    pos.Quantity,
			AvgBuyPrice: pos.AvgCost,
			LastUpdated: now,
		}
		if err := r.store.SaveAsset(asset); err != nil {
			return nil, persistence("insert position", err)
		}
	}

	// Every sell is re-priced against the new pooled average, including
	// sells dated before the buy that changed it.
	for _, s := range sells {
		if err := r.store.SetProfitLoss(s.ID, SellProfit(s.Quantity, s.Price, pos.AvgCost)); err != nil {
			return nil, persistence("rewrite profit/loss", err)
		}
	}

	asset, err := r.store.GetAsset(assetName)
	if err != nil {
		return nil, persistence("reload position", err)
	}

	r.logger.Debug("position recalculated",
		"asset", assetName, "quantity", pos.Quantity, "avg_cost", pos.AvgCost, "sells", len(sells))
	return asset, nil
}

// RecalculateAll rebuilds every asset seen in trades or positions, in name order.
// It stops at the first failure; positions already rebuilt stay rebuilt.
func (r *Recalculator) RecalculateAll() ([]storage.Asset, error) {
	names, err := r.store.AssetNames()
	if err != nil {
		return nil, persistence("list asset names", err)
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	out := make([]storage.Asset, 0, len(sorted))
	for _, name := range sorted {
		asset, err := r.Recalculate(name, names[name])
		if err != nil {
			return out, err
		}
		out = append(out, *asset)
	}
	return out, nil
}

// RecalculateByName looks up the asset type from the stored position.
func (r *Recalculator) RecalculateByName(assetName string) (*storage.Asset, error) {
	asset, err := r.store.GetAsset(assetName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, persistence("load position", err)
	}
	return r.Recalculate(asset.AssetName, asset.AssetType)
}

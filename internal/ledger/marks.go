package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/camuig/trade-journal/internal/logger"
	"github.com/camuig/trade-journal/internal/storage"
)

// QuoteSource returns last prices keyed by security id.
type QuoteSource interface {
	LastPrices(ctx context.Context, secids []string) (map[string]float64, error)
}

// Marks sets the current price of positions, by hand or from a quote source.
type Marks struct {
	store   Store
	quotes  QuoteSource
	tickers map[string]string
	logger  *logger.Logger
	now     func() time.Time
}

// NewMarks accepts a nil quotes source, in which case Refresh is disabled.
func NewMarks(store Store, quotes QuoteSource, tickers map[string]string, log *logger.Logger) *Marks {
	return &Marks{store: store, quotes: quotes, tickers: tickers, logger: log, now: time.Now}
}

func (m *Marks) SetPrice(assetName string, price float64) (*storage.Asset, error) {
	if price < 0 {
		return nil, invalid("current_price", "must not be negative")
	}
	if !finite(price) {
		return nil, invalid("current_price", "must be a finite number")
	}
	if err := m.store.SetCurrentPrice(assetName, price, m.now()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, persistence("set current price", err)
	}
	asset, err := m.store.GetAsset(assetName)
	if err != nil {
		return nil, persistence("reload position", err)
	}
	return asset, nil
}

// Refresh pulls prices for configured tickers and returns the ones applied,
// keyed by asset name. Assets without a position row are skipped.
func (m *Marks) Refresh(ctx context.Context) (map[string]float64, error) {
	if m.quotes == nil {
		return nil, ErrQuotesDisabled
	}

	secids := make([]string, 0, len(m.tickers))
	for _, secid := range m.tickers {
		secids = append(secids, secid)
	}
	prices, err := m.quotes.LastPrices(ctx, secids)
	if err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}

	applied := make(map[string]float64)
	for name, secid := range m.tickers {
		price, ok := prices[secid]
		if !ok || price <= 0 {
			m.logger.Debug("no quote for asset", "asset", name, "secid", secid)
			continue
		}
		err := m.store.SetCurrentPrice(name, price, m.now())
		if errors.Is(err, storage.ErrNotFound) {
			m.logger.Debug("quoted asset has no position", "asset", name)
			continue
		}
		if err != nil {
			return applied, persistence("set current price", err)
		}
		applied[name] = price
	}
	m.logger.Info("mark prices refreshed", "count", len(applied))
	return applied, nil
}

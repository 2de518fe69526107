package ledger

import (
	"strings"

	"github.com/camuig/trade-journal/internal/storage"
)

const (
	RiskVeryLow  = "very_low"
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskVeryHigh = "very_high"
)

var riskLevels = map[string]bool{
	RiskVeryLow: true, RiskLow: true, RiskMedium: true, RiskHigh: true, RiskVeryHigh: true,
}

type StrategyInput struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	AssetAllocation string `json:"asset_allocation"`
	RiskLevel       string `json:"risk_level"`
}

// Strategies stores portfolio plans. They are notes only; nothing in the
// ledger enforces an allocation.
type Strategies struct {
	store Store
}

func NewStrategies(store Store) *Strategies {
	return &Strategies{store: store}
}

// Create records a strategy. An empty risk level defaults to very_low.
func (s *Strategies) Create(in StrategyInput) (*storage.Strategy, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	risk := strings.ToLower(strings.TrimSpace(in.RiskLevel))
	if risk == "" {
		risk = RiskVeryLow
	}
	if !riskLevels[risk] {
		return nil, invalid("risk_level", "unknown level %q", in.RiskLevel)
	}

	strategy := &storage.Strategy{
		Name:            name,
		Description:     strings.TrimSpace(in.Description),
		AssetAllocation: strings.TrimSpace(in.AssetAllocation),
		RiskLevel:       risk,
	}
	if err := s.store.CreateStrategy(strategy); err != nil {
		return nil, persistence("insert strategy", err)
	}
	return strategy, nil
}

func (s *Strategies) List() ([]storage.Strategy, error) {
	strategies, err := s.store.ListStrategies()
	if err != nil {
		return nil, persistence("list strategies", err)
	}
	return strategies, nil
}

package storage

import "time"

const (
	TradeBuy  = "BUY"
	TradeSell = "SELL"
)

// CashBalanceID is the fixed id of the single cash_balance row.
const CashBalanceID = 1

type Trade struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TradeDate   time.Time `gorm:"not null;index" json:"trade_date"`
	AssetName   string    `gorm:"index;not null" json:"asset_name"`
	AssetType   string    `gorm:"not null" json:"asset_type"`
	TradeType   string    `gorm:"index;not null" json:"trade_type"` // BUY or SELL
	Quantity    float64   `gorm:"not null" json:"quantity"`
	Price       float64   `gorm:"not null" json:"price"`
	TotalAmount float64   `gorm:"not null" json:"total_amount"`
	ProfitLoss  float64   `gorm:"not null;default:0" json:"profit_loss"`

	// RelatedTradeID is a plain reference to the SELL that funded this BUY.
	RelatedTradeID *uint   `gorm:"index" json:"related_trade_id,omitempty"`
	TradeCategory  *string `json:"trade_category,omitempty"`
	IsProfitSale   *bool   `json:"is_profit_sale,omitempty"`
	Currency       string  `gorm:"not null" json:"currency"`
	Notes          string  `gorm:"type:text" json:"notes"`
}

func (t *Trade) IsSell() bool {
	return t.TradeType == TradeSell
}

type Asset struct {
	ID uint `gorm:"primarykey" json:"id"`

	AssetName    string    `gorm:"uniqueIndex;not null" json:"asset_name"`
	AssetType    string    `gorm:"not null" json:"asset_type"`
	Quantity     float64   `gorm:"not null;default:0" json:"quantity"`
	AvgBuyPrice  float64   `gorm:"not null;default:0" json:"avg_buy_price"`
	CurrentPrice float64   `gorm:"not null;default:0" json:"current_price"`
	LastUpdated  time.Time `json:"last_updated"`
}

type CashBalance struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	AmountIRR   float64   `gorm:"column:amount_irr;not null;default:0" json:"amount_irr"`
	AmountUSD   float64   `gorm:"column:amount_usd;not null;default:0" json:"amount_usd"`
	LastUpdated time.Time `json:"last_updated"`
}

func (CashBalance) TableName() string {
	return "cash_balance"
}

// Strategy is a free-form portfolio plan kept alongside the journal.
type Strategy struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	Name            string    `gorm:"not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	AssetAllocation string    `gorm:"type:text" json:"asset_allocation"`
	RiskLevel       string    `gorm:"not null" json:"risk_level"`
}

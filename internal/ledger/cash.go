package ledger

import (
	"time"

	"github.com/camuig/trade-journal/internal/storage"
)

// Cash maintains the single local-currency running balance.
type Cash struct {
	store Store
	now   func() time.Time
}

func NewCash(store Store) *Cash {
	return &Cash{store: store, now: time.Now}
}

// Update adds amount on deposit and subtracts it otherwise, returning the new balance.
func (c *Cash) Update(amount float64, deposit bool) (float64, error) {
	if !finite(amount) {
		return 0, invalid("amount", "must be a finite number")
	}
	current, err := c.store.GetCashBalance()
	if err != nil {
		return 0, persistence("read cash balance", err)
	}
	balance := addCash(current.AmountIRR, amount, deposit)
	if !finite(balance) {
		return 0, invalid("amount", "balance would be out of range")
	}
	if err := c.store.SetCashAmount(balance, c.now()); err != nil {
		return 0, persistence("write cash balance", err)
	}
	return balance, nil
}

// Adjust is a manual deposit or withdrawal outside of any trade.
func (c *Cash) Adjust(amount float64, deposit bool) (float64, error) {
	if !(amount > 0) {
		return 0, invalid("amount", "must be greater than zero")
	}
	if !finite(amount) {
		return 0, invalid("amount", "must be a finite number")
	}
	return c.Update(amount, deposit)
}

func (c *Cash) Balance() (*storage.CashBalance, error) {
	balance, err := c.store.GetCashBalance()
	if err != nil {
		return nil, persistence("read cash balance", err)
	}
	return balance, nil
}

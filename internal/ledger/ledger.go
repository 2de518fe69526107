package ledger

import (
	"github.com/camuig/trade-journal/internal/config"
	"github.com/camuig/trade-journal/internal/logger"
)

// Ledger groups the journal components over one store.
type Ledger struct {
	Recalculator *Recalculator
	Allocations  *Allocations
	Cash         *Cash
	Mutator      *Mutator
	Journal      *Journal
	Marks        *Marks
	Strategies   *Strategies
}

// New wires the components. notifier and quotes may be nil.
func New(store Store, notifier Notifier, quotes QuoteSource, cfg *config.Config, log *logger.Logger) *Ledger {
	l := &Ledger{
		Recalculator: NewRecalculator(store, log),
		Allocations:  NewAllocations(store),
		Cash:         NewCash(store),
		Journal:      NewJournal(store),
		Marks:        NewMarks(store, quotes, cfg.Quotes.Tickers, log),
		Strategies:   NewStrategies(store),
	}
	l.Mutator = NewMutator(store, l.Recalculator, l.Allocations, l.Cash, notifier, cfg, log)
	return l
}

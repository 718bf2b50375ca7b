// Package ledger tracks the authoritative cash balance of one strategy.
//
// The ledger enforces no balance policy of its own: negative balances from
// execution losses are legal data, and callers decide whether to reject
// negative inputs. Access to one ledger is serialized internally; different
// strategies own different ledgers and never block each other.
package ledger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/internal/utils"
)

// Ledger is a per-strategy cash balance with staleness tracking.
type Ledger struct {
	mu        sync.Mutex
	balance   decimal.Decimal
	source    types.BalanceSource
	updatedAt time.Time
	now       func() time.Time
}

// New creates a ledger seeded with the given balance. The source is stamped
// as "initial".
func New(initial decimal.Decimal) *Ledger {
	l := &Ledger{now: time.Now}
	l.balance = initial
	l.source = types.BalanceSourceInitial
	l.updatedAt = l.now()

	return l
}

// Restore recreates a ledger from persisted balance state, keeping the
// original source and update time.
func Restore(amount decimal.Decimal, source types.BalanceSource, updatedAt time.Time) *Ledger {
	return &Ledger{
		balance:   amount,
		source:    source,
		updatedAt: updatedAt,
		now:       time.Now,
	}
}

// Balance returns the current amount, what set it, and when.
func (l *Ledger) Balance() (decimal.Decimal, types.BalanceSource, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balance, l.source, l.updatedAt
}

// Amount returns just the current balance.
func (l *Ledger) Amount() decimal.Decimal {
	amount, _, _ := l.Balance()

	return amount
}

// SetBalance overwrites the balance and stamps the update time.
func (l *Ledger) SetBalance(amount decimal.Decimal, source types.BalanceSource) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balance = amount
	l.source = source
	l.updatedAt = l.now()
}

// ApplyDelta adjusts the balance by the given amount. Used after trade
// settlement to commit realized cash per leg.
func (l *Ledger) ApplyDelta(delta decimal.Decimal, source types.BalanceSource) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balance = l.balance.Add(delta)
	l.source = source
	l.updatedAt = l.now()

	return l.balance
}

// Info returns the balance with staleness fields for the snapshot boundary.
func (l *Ledger) Info() types.BalanceInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	age := l.now().Sub(l.updatedAt)

	return types.BalanceInfo{
		Amount:       l.balance,
		Source:       l.source,
		UpdatedAt:    l.updatedAt,
		AgeSeconds:   age.Seconds(),
		AgeFormatted: utils.FormatAge(age),
	}
}

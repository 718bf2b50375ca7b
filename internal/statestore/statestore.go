// Package statestore persists the durable state of strategies: cash
// balance, cooldown window, configured symbols, and timestamps. Call
// history persists separately through the call log store.
package statestore

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradehook-lab/tradehook/internal/types"
)

// Record is the persisted form of one strategy.
type Record struct {
	User        string
	Name        string
	DisplayName string

	// LongSymbol and ShortSymbol are empty when unconfigured.
	LongSymbol  string
	ShortSymbol string

	Balance          decimal.Decimal
	BalanceSource    types.BalanceSource
	BalanceUpdatedAt time.Time

	// CooldownEnd is nil when no cooldown window is running.
	CooldownEnd *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store saves and reloads strategy records. Save overwrites any record
// with the same user and name.
type Store interface {
	Save(record Record) error
	Delete(user, name string) error
	LoadAll() ([]Record, error)
	Close() error
}

// NopStore discards writes and loads nothing. Used when persistence is
// not configured.
type NopStore struct{}

func (NopStore) Save(Record) error           { return nil }
func (NopStore) Delete(string, string) error { return nil }
func (NopStore) LoadAll() ([]Record, error)  { return nil, nil }
func (NopStore) Close() error                { return nil }

var _ Store = NopStore{}

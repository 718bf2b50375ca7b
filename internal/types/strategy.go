// Package types holds the shared domain vocabulary: strategy naming,
// balances, cooldowns, action plans and call log records.
package types

import (
	"regexp"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/tradehook-lab/tradehook/pkg/errors"
)

// Strategy name bounds.
const (
	StrategyNameMinLength = 3
	StrategyNameMaxLength = 50
)

var strategyNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// reservedStrategyNames would collide with fixed routes if allowed as
// path segments.
var reservedStrategyNames = map[string]struct{}{
	"strategies": {},
	"static":     {},
	"api":        {},
	"status":     {},
	"debug":      {},
}

// NormalizeStrategyName lowercases and trims a name. All lookups go
// through this, so names differing only in case are the same strategy.
func NormalizeStrategyName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateStrategyName checks length, character set and the reserved
// list. Validation is case-insensitive for the reserved list.
func ValidateStrategyName(name string) error {
	if len(name) < StrategyNameMinLength || len(name) > StrategyNameMaxLength {
		return errors.Newf(errors.ErrCodeInvalidStrategyName,
			"name must be %d to %d characters, got %d", StrategyNameMinLength, StrategyNameMaxLength, len(name))
	}

	if !strategyNamePattern.MatchString(name) {
		return errors.Newf(errors.ErrCodeInvalidStrategyName,
			"name %q may only contain letters, digits and underscores", name)
	}

	if _, reserved := reservedStrategyNames[strings.ToLower(name)]; reserved {
		return errors.Newf(errors.ErrCodeReservedStrategyName, "name %q is reserved", name)
	}

	return nil
}

// BalanceSource records which actor last wrote the cash balance.
type BalanceSource string

const (
	// BalanceSourceInitial is the seed balance at strategy creation.
	BalanceSourceInitial BalanceSource = "initial"
	// BalanceSourceUser is a manual adjustment through the API.
	BalanceSourceUser BalanceSource = "user"
	// BalanceSourceTrade is a movement caused by an executed trade.
	BalanceSourceTrade BalanceSource = "trade"
)

// BalanceInfo is the dashboard view of a strategy's cash balance. The
// age fields tell the user how stale the figure is.
type BalanceInfo struct {
	Amount       decimal.Decimal `json:"amount"`
	Source       BalanceSource   `json:"source"`
	UpdatedAt    time.Time       `json:"updated_at"`
	AgeSeconds   float64         `json:"age_seconds"`
	AgeFormatted string          `json:"age_formatted"`
}

// CooldownInfo is the dashboard view of the cooldown gate.
type CooldownInfo struct {
	Active             bool       `json:"active"`
	EndTime            *time.Time `json:"end_time,omitempty"`
	RemainingSeconds   float64    `json:"remaining_seconds"`
	RemainingFormatted string     `json:"remaining_formatted,omitempty"`
}

// StrategySnapshot is the full read model of one strategy.
type StrategySnapshot struct {
	Name        string                  `json:"name"`
	DisplayName string                  `json:"display_name"`
	LongSymbol  optional.Option[string] `json:"long_symbol"`
	ShortSymbol optional.Option[string] `json:"short_symbol"`
	Balance     BalanceInfo             `json:"balance"`
	Cooldown    CooldownInfo            `json:"cooldown"`
	LogTotal    int64                   `json:"log_total"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

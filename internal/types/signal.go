package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// ActionType is the kind of a single step in an action plan.
type ActionType string

const (
	ActionSell ActionType = "SELL"
	ActionBuy  ActionType = "BUY"
)

// HoldCashToken is the signal path segment meaning "do not buy, hold cash".
const HoldCashToken = "none"

// ActionPlan is the ordered sell/buy sequence derived from one webhook
// invocation. It is never persisted beyond the call log entry recording it.
type ActionPlan struct {
	// BuySymbol is the purchase target; None means hold cash.
	BuySymbol optional.Option[string] `json:"buy_symbol"`
	// Sells holds the sell symbols in the order they were written in the path.
	Sells []string `json:"sells"`
}

// SellOrder returns the sell symbols in execution order. The last symbol
// listed in the path executes first: a path reads "target, then legacy
// positions to unwind" while execution unwinds the oldest-named position
// first. This ordering is a documented contract, not an accident.
func (p ActionPlan) SellOrder() []string {
	order := make([]string, 0, len(p.Sells))
	for i := len(p.Sells) - 1; i >= 0; i-- {
		order = append(order, p.Sells[i])
	}

	return order
}

// IsNoop reports whether the plan neither sells nor buys. A no-op plan is
// still logged when accepted.
func (p ActionPlan) IsNoop() bool {
	return len(p.Sells) == 0 && p.BuySymbol.IsNone()
}

// TradeStatus mirrors the status vocabulary of the trade collaborator.
type TradeStatus string

const (
	// TradeStatusFilled means the order executed and moved cash.
	TradeStatusFilled TradeStatus = "filled"
	// TradeStatusAccepted means the collaborator accepted the request but
	// nothing traded (e.g. closing a symbol with no open position).
	TradeStatusAccepted TradeStatus = "accepted"
	// TradeStatusFailed means the leg was rejected or the collaborator was
	// unreachable.
	TradeStatusFailed TradeStatus = "failed"
)

// ActionResult is the outcome of one executed plan step.
type ActionResult struct {
	Type     ActionType      `json:"type"`
	Symbol   string          `json:"symbol"`
	Status   TradeStatus     `json:"status"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	// Proceeds is cash realized by a sell leg.
	Proceeds decimal.Decimal `json:"proceeds"`
	// Spent is cash consumed by a buy leg.
	Spent decimal.Decimal `json:"spent"`
	Error string          `json:"error,omitempty"`
}

// SignalOutcome classifies how a processed signal ended.
type SignalOutcome string

const (
	// OutcomeExecuted means every plan step completed.
	OutcomeExecuted SignalOutcome = "executed"
	// OutcomeSuppressedByCooldown means the cooldown gate blocked automated
	// execution. Not a failure: logged, balance unchanged.
	OutcomeSuppressedByCooldown SignalOutcome = "suppressed_by_cooldown"
	// OutcomeFailed means a leg failed; completed legs stay committed.
	OutcomeFailed SignalOutcome = "failed"
)

// ForceDirection selects which configured symbol a forced operation targets.
type ForceDirection string

const (
	ForceLong  ForceDirection = "long"
	ForceShort ForceDirection = "short"
	ForceClose ForceDirection = "close"
)

// SignalResult mirrors the call log entry appended for one accepted signal.
type SignalResult struct {
	RequestID    string          `json:"request_id"`
	User         string          `json:"user"`
	Strategy     string          `json:"strategy"`
	Forced       bool            `json:"forced"`
	Plan         ActionPlan      `json:"plan"`
	Outcome      SignalOutcome   `json:"outcome"`
	Actions      []ActionResult  `json:"actions"`
	FinalBalance decimal.Decimal `json:"final_balance"`
	Error        string          `json:"error,omitempty"`
	Seq          int64           `json:"seq"`
	Timestamp    time.Time       `json:"timestamp"`
}

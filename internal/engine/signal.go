package engine

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/tradehook-lab/tradehook/internal/metrics"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/pkg/errors"
	"go.uber.org/zap"
)

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9.\-]{1,20}$`)

// ParseSignalPath decodes the trailing webhook path segments into an
// action plan. The first segment is the buy target ("none" holds cash),
// every following segment is a position to sell:
//
//	MSTU/MSTZ/SQQQ  ->  sell SQQQ, sell MSTZ, then buy MSTU
//	none/TQQQ       ->  sell TQQQ, hold cash
//
// Symbols are normalized to upper case.
func ParseSignalPath(path string) (types.ActionPlan, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return types.ActionPlan{}, errors.New(errors.ErrCodeInvalidSignalPath, "signal path is empty")
	}

	segments := strings.Split(trimmed, "/")

	var plan types.ActionPlan

	for i, segment := range segments {
		if segment == "" {
			return types.ActionPlan{}, errors.Newf(errors.ErrCodeInvalidSignalPath, "empty segment in signal path %q", path)
		}

		if i == 0 {
			if strings.EqualFold(segment, types.HoldCashToken) {
				continue
			}

			if !symbolPattern.MatchString(segment) {
				return types.ActionPlan{}, errors.Newf(errors.ErrCodeInvalidSignalPath, "invalid buy symbol %q", segment)
			}

			plan.BuySymbol = optional.Some(strings.ToUpper(segment))

			continue
		}

		if strings.EqualFold(segment, types.HoldCashToken) || !symbolPattern.MatchString(segment) {
			return types.ActionPlan{}, errors.Newf(errors.ErrCodeInvalidSignalPath, "invalid sell symbol %q", segment)
		}

		plan.Sells = append(plan.Sells, strings.ToUpper(segment))
	}

	return plan, nil
}

// ProcessSignal executes one automated webhook signal. Validation
// failures and lock timeouts return before anything is logged; every
// request that passes those gates appends exactly one call log entry,
// whatever its outcome.
func (s *Service) ProcessSignal(ctx context.Context, user, name, rawPath string) (types.SignalResult, error) {
	plan, err := ParseSignalPath(rawPath)
	if err != nil {
		return types.SignalResult{}, err
	}

	return s.execute(ctx, user, name, rawPath, plan, false)
}

func (s *Service) execute(ctx context.Context, user, name, rawPath string, plan types.ActionPlan, forced bool) (types.SignalResult, error) {
	strategy, err := s.repo.Get(user, name)
	if err != nil {
		return types.SignalResult{}, err
	}

	release, err := s.locks.Acquire(ctx, strategy.Key(), s.config.LockTimeout)
	if err != nil {
		metrics.IncBusyRejection()

		return types.SignalResult{}, err
	}
	defer release()

	start := s.now()
	result := types.SignalResult{
		RequestID: uuid.NewString(),
		User:      strategy.User,
		Strategy:  strategy.Name,
		Forced:    forced,
		Plan:      plan,
		Timestamp: start,
	}

	if !forced && strategy.Cooldown.IsActive() {
		result.Outcome = types.OutcomeSuppressedByCooldown
		result.FinalBalance = strategy.Ledger.Amount()

		s.log.Info("signal suppressed by cooldown",
			zap.String("user", strategy.User),
			zap.String("strategy", strategy.Name),
			zap.String("path", rawPath),
			zap.String("request_id", result.RequestID),
		)

		return s.finish(strategy, rawPath, result, start)
	}

	result.Outcome = types.OutcomeExecuted

	for _, symbol := range plan.SellOrder() {
		sell, sellErr := s.executor.Sell(ctx, symbol)
		if sellErr != nil {
			metrics.IncTrade("sell", string(types.TradeStatusFailed))
			result.Outcome = types.OutcomeFailed
			result.Error = sellErr.Error()
			result.Actions = append(result.Actions, types.ActionResult{
				Type:   types.ActionSell,
				Symbol: symbol,
				Status: types.TradeStatusFailed,
				Error:  sellErr.Error(),
			})

			s.log.Error("sell leg failed",
				zap.String("user", strategy.User),
				zap.String("strategy", strategy.Name),
				zap.String("symbol", symbol),
				zap.Error(sellErr),
			)

			break
		}

		// Proceeds pool with the current balance immediately so a later
		// failed leg still leaves this one committed.
		if sell.Proceeds.IsPositive() {
			strategy.Ledger.ApplyDelta(sell.Proceeds, types.BalanceSourceTrade)
		}

		metrics.IncTrade("sell", string(sell.Status))
		result.Actions = append(result.Actions, types.ActionResult{
			Type:     types.ActionSell,
			Symbol:   symbol,
			Status:   sell.Status,
			Quantity: sell.Quantity,
			Price:    sell.Price,
			Proceeds: sell.Proceeds,
		})
	}

	if result.Outcome == types.OutcomeExecuted {
		if buySymbol, takeErr := plan.BuySymbol.Take(); takeErr == nil {
			cash := strategy.Ledger.Amount()

			buy, buyErr := s.executor.Buy(ctx, buySymbol, cash)
			if buyErr != nil {
				metrics.IncTrade("buy", string(types.TradeStatusFailed))
				result.Outcome = types.OutcomeFailed
				result.Error = buyErr.Error()
				result.Actions = append(result.Actions, types.ActionResult{
					Type:   types.ActionBuy,
					Symbol: buySymbol,
					Status: types.TradeStatusFailed,
					Error:  buyErr.Error(),
				})

				s.log.Error("buy leg failed",
					zap.String("user", strategy.User),
					zap.String("strategy", strategy.Name),
					zap.String("symbol", buySymbol),
					zap.Error(buyErr),
				)
			} else {
				// The executor reports the authoritative post-trade cash.
				strategy.Ledger.SetBalance(buy.Remaining, types.BalanceSourceTrade)
				metrics.IncTrade("buy", string(buy.Status))
				result.Actions = append(result.Actions, types.ActionResult{
					Type:     types.ActionBuy,
					Symbol:   buySymbol,
					Status:   buy.Status,
					Quantity: buy.Quantity,
					Price:    buy.Price,
					Spent:    buy.Spent,
				})
			}
		}
	}

	// A no-op plan traded nothing, so it never re-arms the cooldown.
	if result.Outcome == types.OutcomeExecuted && !forced && !plan.IsNoop() && s.config.AutoStartCooldown {
		strategy.Cooldown.Start(s.config.DefaultCooldown)
	}

	result.FinalBalance = strategy.Ledger.Amount()

	s.log.Info("signal processed",
		zap.String("user", strategy.User),
		zap.String("strategy", strategy.Name),
		zap.String("path", rawPath),
		zap.String("request_id", result.RequestID),
		zap.String("outcome", string(result.Outcome)),
		zap.String("final_balance", result.FinalBalance.String()),
	)

	return s.finish(strategy, rawPath, result, start)
}

// finish appends the single call log entry for the request and updates
// metrics. The engine's audit invariant lives here: one accepted request,
// one entry.
func (s *Service) finish(strategy *Strategy, rawPath string, result types.SignalResult, start time.Time) (types.SignalResult, error) {
	seq, err := strategy.CallLog.Append(buildCallRequest(rawPath, result), buildCallResponse(result))
	if err != nil {
		return types.SignalResult{}, errors.Wrapf(errors.ErrCodeLogStoreFailed, err,
			"failed to record call log entry for %s", strategy.Key())
	}

	result.Seq = seq
	s.repo.Touch(strategy)
	s.persist(strategy)
	metrics.IncSignal(string(result.Outcome))
	metrics.ObserveSignalDuration(s.now().Sub(start))

	return result, nil
}

func buildCallRequest(rawPath string, result types.SignalResult) types.CallRequest {
	request := types.CallRequest{
		"request_id":   result.RequestID,
		"user":         result.User,
		"strategy":     result.Strategy,
		"path":         rawPath,
		"forced":       result.Forced,
		"sell_symbols": result.Plan.Sells,
	}

	if buySymbol, err := result.Plan.BuySymbol.Take(); err == nil {
		request["buy_symbol"] = buySymbol
	} else {
		request["buy_symbol"] = nil
	}

	return request
}

func buildCallResponse(result types.SignalResult) types.CallResponse {
	body := map[string]any{
		"actions":       actionMaps(result.Actions),
		"final_balance": result.FinalBalance.String(),
	}

	if result.Error != "" {
		body["error"] = result.Error
	}

	return types.CallResponse{
		Status: string(result.Outcome),
		Body:   body,
	}
}

// actionMaps round-trips action results through JSON so the call log
// stores plain maps rather than engine structs.
func actionMaps(actions []types.ActionResult) []any {
	raw, err := json.Marshal(actions)
	if err != nil {
		return nil
	}

	var out []any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}

	return out
}

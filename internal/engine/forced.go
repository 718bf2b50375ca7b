package engine

import (
	"context"

	"github.com/moznion/go-optional"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/pkg/errors"
)

// Force executes a manual long, short or close against the strategy's
// configured symbols. Forced execution bypasses the cooldown gate but is
// otherwise identical to an automated signal: same serialization, same
// ledger movements, same single call log entry.
func (s *Service) Force(ctx context.Context, user, name string, direction types.ForceDirection) (types.SignalResult, error) {
	strategy, err := s.repo.Get(user, name)
	if err != nil {
		return types.SignalResult{}, err
	}

	plan, err := forcedPlan(strategy, direction)
	if err != nil {
		return types.SignalResult{}, err
	}

	return s.execute(ctx, user, name, "force/"+string(direction), plan, true)
}

// forcedPlan maps a direction onto the configured long/short symbols.
// Entering one side always unwinds the other side first.
func forcedPlan(strategy *Strategy, direction types.ForceDirection) (types.ActionPlan, error) {
	long, longErr := strategy.LongSymbol.Take()
	short, shortErr := strategy.ShortSymbol.Take()

	switch direction {
	case types.ForceLong:
		if longErr != nil {
			return types.ActionPlan{}, errors.Newf(errors.ErrCodeSymbolNotConfigured,
				"strategy %s has no long symbol configured", strategy.Key())
		}

		plan := types.ActionPlan{BuySymbol: optional.Some(long)}
		if shortErr == nil {
			plan.Sells = []string{short}
		}

		return plan, nil
	case types.ForceShort:
		if shortErr != nil {
			return types.ActionPlan{}, errors.Newf(errors.ErrCodeSymbolNotConfigured,
				"strategy %s has no short symbol configured", strategy.Key())
		}

		plan := types.ActionPlan{BuySymbol: optional.Some(short)}
		if longErr == nil {
			plan.Sells = []string{long}
		}

		return plan, nil
	case types.ForceClose:
		var plan types.ActionPlan

		if longErr == nil {
			plan.Sells = append(plan.Sells, long)
		}

		if shortErr == nil {
			plan.Sells = append(plan.Sells, short)
		}

		if len(plan.Sells) == 0 {
			return types.ActionPlan{}, errors.Newf(errors.ErrCodeSymbolNotConfigured,
				"strategy %s has no symbols configured to close", strategy.Key())
		}

		return plan, nil
	default:
		return types.ActionPlan{}, errors.Newf(errors.ErrCodeInvalidDirection, "unknown direction %q", direction)
	}
}

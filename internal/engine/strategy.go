package engine

import (
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/tradehook-lab/tradehook/internal/calllog"
	"github.com/tradehook-lab/tradehook/internal/cooldown"
	"github.com/tradehook-lab/tradehook/internal/ledger"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/pkg/errors"
)

// Strategy is one user's trading strategy: its cash ledger, its cooldown
// gate, and its call log. Signal execution for a strategy is serialized
// by the engine, but snapshots read concurrently with it, so the one
// field mutated after creation lives behind its own lock.
type Strategy struct {
	User        string
	Name        string
	DisplayName string

	// LongSymbol and ShortSymbol are the instruments used by forced
	// long/short/close execution. Automated signals carry their own
	// symbols in the webhook path.
	LongSymbol  optional.Option[string]
	ShortSymbol optional.Option[string]

	Ledger   *ledger.Ledger
	Cooldown *cooldown.Gate
	CallLog  calllog.Log

	CreatedAt time.Time

	mu        sync.RWMutex
	updatedAt time.Time
}

// Key returns the arena key identifying this strategy.
func (s *Strategy) Key() string {
	return s.User + "/" + s.Name
}

// Touch stamps the strategy as mutated at the given time.
func (s *Strategy) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updatedAt = now
}

// UpdatedAt returns when the strategy last mutated.
func (s *Strategy) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.updatedAt
}

// Snapshot assembles the dashboard view of the strategy.
func (s *Strategy) Snapshot() (types.StrategySnapshot, error) {
	total, err := s.CallLog.Total()
	if err != nil {
		return types.StrategySnapshot{}, errors.Wrapf(errors.ErrCodeQueryFailed, err,
			"failed to count call log entries for %s", s.Key())
	}

	return types.StrategySnapshot{
		Name:        s.Name,
		DisplayName: s.DisplayName,
		LongSymbol:  s.LongSymbol,
		ShortSymbol: s.ShortSymbol,
		Balance:     s.Ledger.Info(),
		Cooldown:    s.Cooldown.Info(),
		LogTotal:    total,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt(),
	}, nil
}

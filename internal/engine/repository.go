package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/tradehook-lab/tradehook/internal/calllog"
	"github.com/tradehook-lab/tradehook/internal/cooldown"
	"github.com/tradehook-lab/tradehook/internal/ledger"
	"github.com/tradehook-lab/tradehook/internal/statestore"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/pkg/errors"
)

// StrategyParams carries the caller-supplied fields of a new strategy.
type StrategyParams struct {
	DisplayName string
	LongSymbol  optional.Option[string]
	ShortSymbol optional.Option[string]
	InitialCash decimal.Decimal
}

// Repository holds all strategies, keyed by user then strategy name.
// Users exist implicitly: creating a user's first strategy creates the
// user, deleting their last one leaves an empty user behind harmlessly.
type Repository struct {
	mu     sync.RWMutex
	users  map[string]map[string]*Strategy
	newLog calllog.Factory
	now    func() time.Time
}

// NewRepository creates an empty repository whose strategies persist
// their call logs through the given factory.
func NewRepository(newLog calllog.Factory) *Repository {
	return &Repository{
		users:  make(map[string]map[string]*Strategy),
		newLog: newLog,
		now:    time.Now,
	}
}

// Create registers a new strategy. Both user and strategy names are
// normalized to lowercase before lookup, so "Alice/Momentum" and
// "alice/momentum" are the same strategy.
func (r *Repository) Create(user, name string, params StrategyParams) (*Strategy, error) {
	user = types.NormalizeStrategyName(user)
	name = types.NormalizeStrategyName(name)

	if err := types.ValidateStrategyName(user); err != nil {
		return nil, err
	}

	if err := types.ValidateStrategyName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	strategies, ok := r.users[user]
	if !ok {
		strategies = make(map[string]*Strategy)
		r.users[user] = strategies
	}

	if _, exists := strategies[name]; exists {
		return nil, errors.Newf(errors.ErrCodeStrategyExists, "strategy %s already exists for user %s", name, user)
	}

	log, err := r.newLog(user, name)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStorageInitFailed, err, "failed to open call log for %s/%s", user, name)
	}

	displayName := params.DisplayName
	if displayName == "" {
		displayName = name
	}

	created := r.now()
	strategy := &Strategy{
		User:        user,
		Name:        name,
		DisplayName: displayName,
		LongSymbol:  params.LongSymbol,
		ShortSymbol: params.ShortSymbol,
		Ledger:      ledger.New(params.InitialCash),
		Cooldown:    cooldown.New(),
		CallLog:     log,
		CreatedAt:   created,
		updatedAt:   created,
	}
	strategies[name] = strategy

	return strategy, nil
}

// Restore re-registers a persisted strategy with its saved balance,
// cooldown window and timestamps. Names were validated when the strategy
// was first created, so only normalization applies here.
func (r *Repository) Restore(record statestore.Record) (*Strategy, error) {
	user := types.NormalizeStrategyName(record.User)
	name := types.NormalizeStrategyName(record.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	strategies, ok := r.users[user]
	if !ok {
		strategies = make(map[string]*Strategy)
		r.users[user] = strategies
	}

	if _, exists := strategies[name]; exists {
		return nil, errors.Newf(errors.ErrCodeStrategyExists, "strategy %s already exists for user %s", name, user)
	}

	log, err := r.newLog(user, name)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStorageInitFailed, err, "failed to open call log for %s/%s", user, name)
	}

	gate := cooldown.New()
	if record.CooldownEnd != nil {
		gate.Restore(*record.CooldownEnd)
	}

	strategy := &Strategy{
		User:        user,
		Name:        name,
		DisplayName: record.DisplayName,
		LongSymbol:  optionalSymbol(record.LongSymbol),
		ShortSymbol: optionalSymbol(record.ShortSymbol),
		Ledger:      ledger.Restore(record.Balance, record.BalanceSource, record.BalanceUpdatedAt),
		Cooldown:    gate,
		CallLog:     log,
		CreatedAt:   record.CreatedAt,
		updatedAt:   record.UpdatedAt,
	}
	strategies[name] = strategy

	return strategy, nil
}

func optionalSymbol(symbol string) optional.Option[string] {
	if symbol == "" {
		return optional.None[string]()
	}

	return optional.Some(symbol)
}

// Get looks up a strategy by user and name.
func (r *Repository) Get(user, name string) (*Strategy, error) {
	user = types.NormalizeStrategyName(user)
	name = types.NormalizeStrategyName(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	strategies, ok := r.users[user]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUserNotFound, "unknown user %s", user)
	}

	strategy, ok := strategies[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound, "unknown strategy %s for user %s", name, user)
	}

	return strategy, nil
}

// List returns a user's strategies ordered by creation time. An unknown
// user has no strategies rather than being an error.
func (r *Repository) List(user string) []*Strategy {
	user = types.NormalizeStrategyName(user)

	r.mu.RLock()
	defer r.mu.RUnlock()

	strategies := make([]*Strategy, 0, len(r.users[user]))
	for _, strategy := range r.users[user] {
		strategies = append(strategies, strategy)
	}

	sort.Slice(strategies, func(i, j int) bool {
		if strategies[i].CreatedAt.Equal(strategies[j].CreatedAt) {
			return strategies[i].Name < strategies[j].Name
		}

		return strategies[i].CreatedAt.Before(strategies[j].CreatedAt)
	})

	return strategies
}

// Users returns all known user names, sorted.
func (r *Repository) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.users))
	for user := range r.users {
		users = append(users, user)
	}

	sort.Strings(users)

	return users
}

// Delete removes a strategy, stopping its cooldown and closing its call
// log. The call log store is released; history is not recoverable through
// the engine afterwards.
func (r *Repository) Delete(user, name string) error {
	user = types.NormalizeStrategyName(user)
	name = types.NormalizeStrategyName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	strategies, ok := r.users[user]
	if !ok {
		return errors.Newf(errors.ErrCodeUserNotFound, "unknown user %s", user)
	}

	strategy, ok := strategies[name]
	if !ok {
		return errors.Newf(errors.ErrCodeStrategyNotFound, "unknown strategy %s for user %s", name, user)
	}

	strategy.Cooldown.Stop()

	if err := strategy.CallLog.Close(); err != nil {
		return errors.Wrapf(errors.ErrCodeLogStoreFailed, err, "failed to close call log for %s/%s", user, name)
	}

	delete(strategies, name)

	return nil
}

// Touch records a mutation on the strategy.
func (r *Repository) Touch(strategy *Strategy) {
	strategy.Touch(r.now())
}

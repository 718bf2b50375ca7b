// Package engine implements the signal execution core: strategy
// registry, sell-then-buy plan execution, cooldown gating, and the
// authoritative cash ledger behind each strategy.
package engine

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/tradehook-lab/tradehook/internal/calllog"
	"github.com/tradehook-lab/tradehook/internal/executor"
	"github.com/tradehook-lab/tradehook/internal/logger"
	"github.com/tradehook-lab/tradehook/internal/metrics"
	"github.com/tradehook-lab/tradehook/internal/statestore"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/pkg/errors"
	"go.uber.org/zap"
)

// Engine tuning defaults.
const (
	DefaultCooldownPeriod = 12 * time.Hour
	DefaultLockTimeout    = 5 * time.Second
	DefaultInitialCash    = 10000
)

// Config tunes the engine.
type Config struct {
	// InitialCash seeds new strategies that do not specify a balance.
	InitialCash decimal.Decimal
	// DefaultCooldown applies when a cooldown is started without an
	// explicit duration.
	DefaultCooldown time.Duration
	// LockTimeout bounds how long a signal waits for a strategy already
	// processing another signal.
	LockTimeout time.Duration
	// AutoStartCooldown restarts the cooldown after every executed
	// automated signal. Off unless configured.
	AutoStartCooldown bool
	// StateStore persists strategy state across restarts. Nil disables
	// persistence.
	StateStore statestore.Store
}

func (c *Config) applyDefaults() {
	if c.StateStore == nil {
		c.StateStore = statestore.NopStore{}
	}

	if c.InitialCash.IsZero() {
		c.InitialCash = decimal.NewFromInt(DefaultInitialCash)
	}

	if c.DefaultCooldown <= 0 {
		c.DefaultCooldown = DefaultCooldownPeriod
	}

	if c.LockTimeout <= 0 {
		c.LockTimeout = DefaultLockTimeout
	}
}

// CreateStrategyParams are the caller-facing creation options. Absent
// options fall back to engine defaults.
type CreateStrategyParams struct {
	DisplayName string
	LongSymbol  optional.Option[string]
	ShortSymbol optional.Option[string]
	InitialCash optional.Option[decimal.Decimal]
}

// Service ties the strategy repository, the trade executor and the
// per-strategy locks together. It is safe for concurrent use.
type Service struct {
	repo     *Repository
	executor executor.TradeExecutor
	locks    *LockArena
	log      *logger.Logger
	config   Config
	now      func() time.Time
}

// NewService creates the engine service.
func NewService(config Config, exec executor.TradeExecutor, newLog calllog.Factory, log *logger.Logger) *Service {
	config.applyDefaults()

	return &Service{
		repo:     NewRepository(newLog),
		executor: exec,
		locks:    NewLockArena(),
		log:      log,
		config:   config,
		now:      time.Now,
	}
}

// Restore reloads persisted strategies into the repository. Called once
// at startup, before the service takes traffic.
func (s *Service) Restore() error {
	records, err := s.config.StateStore.LoadAll()
	if err != nil {
		return err
	}

	for _, record := range records {
		if _, err := s.repo.Restore(record); err != nil {
			return err
		}

		metrics.IncStrategies()
	}

	if len(records) > 0 {
		s.log.Info("restored strategies", zap.Int("count", len(records)))
	}

	return nil
}

// persist writes the strategy's durable state. Best effort: a broken
// state store must not block trading, so failures are only logged.
func (s *Service) persist(strategy *Strategy) {
	if err := s.config.StateStore.Save(stateRecord(strategy)); err != nil {
		s.log.Warn("failed to persist strategy state",
			zap.String("user", strategy.User),
			zap.String("strategy", strategy.Name),
			zap.Error(err),
		)
	}
}

func stateRecord(strategy *Strategy) statestore.Record {
	amount, source, balanceUpdated := strategy.Ledger.Balance()

	record := statestore.Record{
		User:             strategy.User,
		Name:             strategy.Name,
		DisplayName:      strategy.DisplayName,
		LongSymbol:       strategy.LongSymbol.TakeOr(""),
		ShortSymbol:      strategy.ShortSymbol.TakeOr(""),
		Balance:          amount,
		BalanceSource:    source,
		BalanceUpdatedAt: balanceUpdated,
		CreatedAt:        strategy.CreatedAt,
		UpdatedAt:        strategy.UpdatedAt(),
	}

	if end, ok := strategy.Cooldown.EndTime(); ok {
		record.CooldownEnd = &end
	}

	return record
}

// CreateStrategy registers a strategy for a user, creating the user
// implicitly.
func (s *Service) CreateStrategy(user, name string, params CreateStrategyParams) (types.StrategySnapshot, error) {
	strategy, err := s.repo.Create(user, name, StrategyParams{
		DisplayName: params.DisplayName,
		LongSymbol:  params.LongSymbol,
		ShortSymbol: params.ShortSymbol,
		InitialCash: params.InitialCash.TakeOr(s.config.InitialCash),
	})
	if err != nil {
		return types.StrategySnapshot{}, err
	}

	s.persist(strategy)
	metrics.IncStrategies()
	s.log.Info("strategy created",
		zap.String("user", strategy.User),
		zap.String("strategy", strategy.Name),
		zap.String("initial_balance", strategy.Ledger.Amount().String()),
	)

	return strategy.Snapshot()
}

// DeleteStrategy removes a strategy and its call log.
func (s *Service) DeleteStrategy(user, name string) error {
	strategy, err := s.repo.Get(user, name)
	if err != nil {
		return err
	}

	// Wait for any in-flight signal so the call log is not closed under it.
	release, err := s.locks.Acquire(context.Background(), strategy.Key(), s.config.LockTimeout)
	if err != nil {
		return err
	}
	defer release()

	if err := s.repo.Delete(user, name); err != nil {
		return err
	}

	if err := s.config.StateStore.Delete(strategy.User, strategy.Name); err != nil {
		s.log.Warn("failed to delete persisted strategy state",
			zap.String("user", strategy.User),
			zap.String("strategy", strategy.Name),
			zap.Error(err),
		)
	}

	s.locks.Forget(strategy.Key())
	metrics.DecStrategies()
	s.log.Info("strategy deleted", zap.String("user", strategy.User), zap.String("strategy", strategy.Name))

	return nil
}

// Snapshot returns the dashboard view of one strategy.
func (s *Service) Snapshot(user, name string) (types.StrategySnapshot, error) {
	strategy, err := s.repo.Get(user, name)
	if err != nil {
		return types.StrategySnapshot{}, err
	}

	return strategy.Snapshot()
}

// ListStrategies returns snapshots of a user's strategies ordered by
// creation time.
func (s *Service) ListStrategies(user string) ([]types.StrategySnapshot, error) {
	strategies := s.repo.List(user)
	snapshots := make([]types.StrategySnapshot, 0, len(strategies))

	for _, strategy := range strategies {
		snapshot, err := strategy.Snapshot()
		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

// Users returns all known users.
func (s *Service) Users() []string {
	return s.repo.Users()
}

// SetBalance overwrites the strategy's cash balance with a user-supplied
// amount. The adjustment takes effect on the next signal; it never
// triggers trading by itself.
func (s *Service) SetBalance(user, name string, amount decimal.Decimal) (types.BalanceInfo, error) {
	strategy, err := s.repo.Get(user, name)
	if err != nil {
		return types.BalanceInfo{}, err
	}

	if amount.IsNegative() {
		return types.BalanceInfo{}, errors.New(errors.ErrCodeInvalidParameter, "balance must not be negative")
	}

	strategy.Ledger.SetBalance(amount, types.BalanceSourceUser)
	s.repo.Touch(strategy)
	s.persist(strategy)
	s.log.Info("balance set",
		zap.String("user", strategy.User),
		zap.String("strategy", strategy.Name),
		zap.String("balance", amount.String()),
	)

	return strategy.Ledger.Info(), nil
}

// StartCooldown activates the cooldown gate, overwriting any running
// window. An absent duration uses the configured default.
func (s *Service) StartCooldown(user, name string, duration optional.Option[time.Duration]) (types.CooldownInfo, error) {
	strategy, err := s.repo.Get(user, name)
	if err != nil {
		return types.CooldownInfo{}, err
	}

	d := duration.TakeOr(s.config.DefaultCooldown)
	if d <= 0 {
		return types.CooldownInfo{}, errors.New(errors.ErrCodeInvalidParameter, "cooldown duration must be positive")
	}

	strategy.Cooldown.Start(d)
	s.repo.Touch(strategy)
	s.persist(strategy)
	s.log.Info("cooldown started",
		zap.String("user", strategy.User),
		zap.String("strategy", strategy.Name),
		zap.Duration("duration", d),
	)

	return strategy.Cooldown.Info(), nil
}

// StopCooldown deactivates the cooldown gate immediately.
func (s *Service) StopCooldown(user, name string) (types.CooldownInfo, error) {
	strategy, err := s.repo.Get(user, name)
	if err != nil {
		return types.CooldownInfo{}, err
	}

	strategy.Cooldown.Stop()
	s.repo.Touch(strategy)
	s.persist(strategy)
	s.log.Info("cooldown stopped", zap.String("user", strategy.User), zap.String("strategy", strategy.Name))

	return strategy.Cooldown.Info(), nil
}

// Logs returns one page of the strategy's call log, newest first.
func (s *Service) Logs(user, name string, skip, limit int) ([]types.CallLogEntry, int64, bool, error) {
	strategy, err := s.repo.Get(user, name)
	if err != nil {
		return nil, 0, false, err
	}

	return strategy.CallLog.Page(skip, limit)
}

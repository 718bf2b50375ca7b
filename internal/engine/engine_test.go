package engine

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/tradehook-lab/tradehook/internal/calllog"
	"github.com/tradehook-lab/tradehook/internal/logger"
	"github.com/tradehook-lab/tradehook/internal/statestore"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/mocks"
	"github.com/tradehook-lab/tradehook/pkg/errors"
	"go.uber.org/mock/gomock"
)

type ServiceTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = NewService(Config{}, mocks.NewMockTradeExecutor(s.ctrl), calllog.MemoryFactory, logger.NewNopLogger())
}

func (s *ServiceTestSuite) TestCreateUsesDefaults() {
	snapshot, err := s.service.CreateStrategy("alice", "momentum", CreateStrategyParams{})
	s.Require().NoError(err)

	s.Equal("momentum", snapshot.Name)
	s.True(snapshot.Balance.Amount.Equal(decimal.NewFromInt(DefaultInitialCash)))
	s.Equal(types.BalanceSourceInitial, snapshot.Balance.Source)
	s.False(snapshot.Cooldown.Active)
	s.Equal(int64(0), snapshot.LogTotal)
}

func (s *ServiceTestSuite) TestCreateWithExplicitBalance() {
	snapshot, err := s.service.CreateStrategy("alice", "momentum", CreateStrategyParams{
		DisplayName: "Momentum Rotation",
		InitialCash: optional.Some(decimal.NewFromInt(250)),
	})
	s.Require().NoError(err)

	s.Equal("Momentum Rotation", snapshot.DisplayName)
	s.True(snapshot.Balance.Amount.Equal(decimal.NewFromInt(250)))
}

func (s *ServiceTestSuite) TestSetBalance() {
	_, err := s.service.CreateStrategy("alice", "momentum", CreateStrategyParams{})
	s.Require().NoError(err)

	info, err := s.service.SetBalance("alice", "momentum", decimal.NewFromInt(500))
	s.Require().NoError(err)

	s.True(info.Amount.Equal(decimal.NewFromInt(500)))
	s.Equal(types.BalanceSourceUser, info.Source)

	_, err = s.service.SetBalance("alice", "momentum", decimal.NewFromInt(-1))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (s *ServiceTestSuite) TestCooldownLifecycle() {
	_, err := s.service.CreateStrategy("alice", "momentum", CreateStrategyParams{})
	s.Require().NoError(err)

	info, err := s.service.StartCooldown("alice", "momentum", optional.Some(time.Hour))
	s.Require().NoError(err)
	s.True(info.Active)
	s.Greater(info.RemainingSeconds, float64(0))

	info, err = s.service.StopCooldown("alice", "momentum")
	s.Require().NoError(err)
	s.False(info.Active)
}

func (s *ServiceTestSuite) TestCooldownRejectsNonPositiveDuration() {
	_, err := s.service.CreateStrategy("alice", "momentum", CreateStrategyParams{})
	s.Require().NoError(err)

	_, err = s.service.StartCooldown("alice", "momentum", optional.Some(-time.Minute))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (s *ServiceTestSuite) TestListStrategies() {
	_, err := s.service.CreateStrategy("alice", "alpha", CreateStrategyParams{})
	s.Require().NoError(err)
	_, err = s.service.CreateStrategy("alice", "beta", CreateStrategyParams{})
	s.Require().NoError(err)

	snapshots, err := s.service.ListStrategies("alice")
	s.Require().NoError(err)
	s.Len(snapshots, 2)
	s.Equal("alpha", snapshots[0].Name)
	s.Equal("beta", snapshots[1].Name)
}

func (s *ServiceTestSuite) TestDeleteStrategy() {
	_, err := s.service.CreateStrategy("alice", "momentum", CreateStrategyParams{})
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteStrategy("alice", "momentum"))

	_, err = s.service.Snapshot("alice", "momentum")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeStrategyNotFound))
}

func (s *ServiceTestSuite) TestLogsPagination() {
	_, err := s.service.CreateStrategy("alice", "momentum", CreateStrategyParams{})
	s.Require().NoError(err)

	strategy, err := s.service.repo.Get("alice", "momentum")
	s.Require().NoError(err)

	for i := 0; i < 15; i++ {
		_, appendErr := strategy.CallLog.Append(types.CallRequest{"n": i}, types.CallResponse{Status: "executed"})
		s.Require().NoError(appendErr)
	}

	entries, total, hasMore, err := s.service.Logs("alice", "momentum", 0, 10)
	s.Require().NoError(err)
	s.Len(entries, 10)
	s.Equal(int64(15), total)
	s.True(hasMore)
	s.Equal(int64(15), entries[0].Seq, "newest entry first")

	entries, _, hasMore, err = s.service.Logs("alice", "momentum", 10, 10)
	s.Require().NoError(err)
	s.Len(entries, 5)
	s.False(hasMore)
}

func (s *ServiceTestSuite) TestStateSurvivesRestart() {
	store, err := statestore.NewDuckDBStore("")
	s.Require().NoError(err)
	defer store.Close()

	first := NewService(Config{StateStore: store},
		mocks.NewMockTradeExecutor(s.ctrl), calllog.MemoryFactory, logger.NewNopLogger())

	_, err = first.CreateStrategy("alice", "momentum", CreateStrategyParams{
		DisplayName: "Momentum",
		LongSymbol:  optional.Some("MSTU"),
	})
	s.Require().NoError(err)

	_, err = first.SetBalance("alice", "momentum", decimal.NewFromInt(750))
	s.Require().NoError(err)

	_, err = first.StartCooldown("alice", "momentum", optional.Some(time.Hour))
	s.Require().NoError(err)

	_, err = first.CreateStrategy("alice", "swing", CreateStrategyParams{})
	s.Require().NoError(err)
	s.Require().NoError(first.DeleteStrategy("alice", "swing"))

	second := NewService(Config{StateStore: store},
		mocks.NewMockTradeExecutor(s.ctrl), calllog.MemoryFactory, logger.NewNopLogger())
	s.Require().NoError(second.Restore())

	snapshot, err := second.Snapshot("alice", "momentum")
	s.Require().NoError(err)
	s.Equal("Momentum", snapshot.DisplayName)
	s.True(snapshot.Balance.Amount.Equal(decimal.NewFromInt(750)))
	s.Equal(types.BalanceSourceUser, snapshot.Balance.Source)
	s.True(snapshot.Cooldown.Active)

	long, takeErr := snapshot.LongSymbol.Take()
	s.Require().NoError(takeErr)
	s.Equal("MSTU", long)

	_, err = second.Snapshot("alice", "swing")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeStrategyNotFound))
}

func (s *ServiceTestSuite) TestRestoredExpiredCooldownIsInactive() {
	store, err := statestore.NewDuckDBStore("")
	s.Require().NoError(err)
	defer store.Close()

	end := time.Now().Add(-time.Minute)
	s.Require().NoError(store.Save(statestore.Record{
		User:             "alice",
		Name:             "momentum",
		DisplayName:      "momentum",
		Balance:          decimal.NewFromInt(1000),
		BalanceSource:    types.BalanceSourceInitial,
		BalanceUpdatedAt: time.Now(),
		CooldownEnd:      &end,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}))

	service := NewService(Config{StateStore: store},
		mocks.NewMockTradeExecutor(s.ctrl), calllog.MemoryFactory, logger.NewNopLogger())
	s.Require().NoError(service.Restore())

	snapshot, err := service.Snapshot("alice", "momentum")
	s.Require().NoError(err)
	s.False(snapshot.Cooldown.Active)
}

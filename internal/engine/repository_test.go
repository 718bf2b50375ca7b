package engine

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/tradehook-lab/tradehook/internal/calllog"
	"github.com/tradehook-lab/tradehook/pkg/errors"
)

type RepositoryTestSuite struct {
	suite.Suite
	repo *Repository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) SetupTest() {
	s.repo = NewRepository(calllog.MemoryFactory)
}

func (s *RepositoryTestSuite) params() StrategyParams {
	return StrategyParams{InitialCash: decimal.NewFromInt(10000)}
}

func (s *RepositoryTestSuite) TestCreateAndGet() {
	created, err := s.repo.Create("alice", "momentum", s.params())
	s.Require().NoError(err)
	s.Equal("alice", created.User)
	s.Equal("momentum", created.Name)
	s.Equal("momentum", created.DisplayName)
	s.True(created.Ledger.Amount().Equal(decimal.NewFromInt(10000)))

	got, err := s.repo.Get("alice", "momentum")
	s.Require().NoError(err)
	s.Same(created, got)
}

func (s *RepositoryTestSuite) TestNamesNormalizedToLowercase() {
	_, err := s.repo.Create("Alice", "Momentum", s.params())
	s.Require().NoError(err)

	got, err := s.repo.Get("ALICE", "MOMENTUM")
	s.Require().NoError(err)
	s.Equal("alice", got.User)
	s.Equal("momentum", got.Name)
}

func (s *RepositoryTestSuite) TestDuplicateRejected() {
	_, err := s.repo.Create("alice", "momentum", s.params())
	s.Require().NoError(err)

	_, err = s.repo.Create("alice", "Momentum", s.params())
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeStrategyExists))
}

func (s *RepositoryTestSuite) TestReservedAndInvalidNames() {
	for _, name := range []string{"api", "static", "strategies", "status", "debug"} {
		_, err := s.repo.Create("alice", name, s.params())
		s.Require().Error(err, "name %q", name)
		s.True(errors.HasCode(err, errors.ErrCodeReservedStrategyName), "name %q", name)
	}

	for _, name := range []string{"ab", "has space", "has-dash", ""} {
		_, err := s.repo.Create("alice", name, s.params())
		s.Require().Error(err, "name %q", name)
		s.True(errors.HasCode(err, errors.ErrCodeInvalidStrategyName), "name %q", name)
	}
}

func (s *RepositoryTestSuite) TestSameNameAcrossUsersIsIndependent() {
	first, err := s.repo.Create("alice", "momentum", s.params())
	s.Require().NoError(err)

	second, err := s.repo.Create("bob", "momentum", s.params())
	s.Require().NoError(err)

	first.Ledger.SetBalance(decimal.NewFromInt(1), "user")
	s.True(second.Ledger.Amount().Equal(decimal.NewFromInt(10000)))
}

func (s *RepositoryTestSuite) TestListOrderedByCreation() {
	_, err := s.repo.Create("alice", "first", s.params())
	s.Require().NoError(err)
	_, err = s.repo.Create("alice", "second", s.params())
	s.Require().NoError(err)
	_, err = s.repo.Create("alice", "third", s.params())
	s.Require().NoError(err)

	names := make([]string, 0, 3)
	for _, strategy := range s.repo.List("alice") {
		names = append(names, strategy.Name)
	}

	s.Equal([]string{"first", "second", "third"}, names)
	s.Empty(s.repo.List("nobody"))
}

func (s *RepositoryTestSuite) TestDelete() {
	_, err := s.repo.Create("alice", "momentum", s.params())
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Delete("alice", "momentum"))

	_, err = s.repo.Get("alice", "momentum")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeStrategyNotFound))

	err = s.repo.Delete("alice", "momentum")
	s.Require().Error(err)
}

func (s *RepositoryTestSuite) TestTouchConcurrentWithSnapshot() {
	strategy, err := s.repo.Create("alice", "momentum", s.params())
	s.Require().NoError(err)

	before := strategy.UpdatedAt()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()

		for i := 0; i < 500; i++ {
			s.repo.Touch(strategy)
		}
	}()

	go func() {
		defer wg.Done()

		for i := 0; i < 500; i++ {
			_, snapErr := strategy.Snapshot()
			s.NoError(snapErr)
		}
	}()

	wg.Wait()

	s.False(strategy.UpdatedAt().Before(before))
}

func (s *RepositoryTestSuite) TestUsers() {
	_, err := s.repo.Create("bob", "momentum", s.params())
	s.Require().NoError(err)
	_, err = s.repo.Create("alice", "momentum", s.params())
	s.Require().NoError(err)

	s.Equal([]string{"alice", "bob"}, s.repo.Users())
}

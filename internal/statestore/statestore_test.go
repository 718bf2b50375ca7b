package statestore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/tradehook-lab/tradehook/internal/types"
)

type DuckDBStoreTestSuite struct {
	suite.Suite
	store *DuckDBStore
}

func TestDuckDBStoreSuite(t *testing.T) {
	suite.Run(t, new(DuckDBStoreTestSuite))
}

func (suite *DuckDBStoreTestSuite) SetupTest() {
	store, err := NewDuckDBStore("")
	suite.Require().NoError(err)
	suite.store = store
}

func (suite *DuckDBStoreTestSuite) TearDownTest() {
	if suite.store != nil {
		suite.store.Close()
	}
}

func (suite *DuckDBStoreTestSuite) record(user, name string) Record {
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	return Record{
		User:             user,
		Name:             name,
		DisplayName:      "Momentum",
		LongSymbol:       "MSTU",
		Balance:          decimal.NewFromInt(1000),
		BalanceSource:    types.BalanceSourceInitial,
		BalanceUpdatedAt: created,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

func (suite *DuckDBStoreTestSuite) TestSaveAndLoadRoundTrip() {
	record := suite.record("alice", "momentum")
	end := time.Date(2026, 8, 1, 22, 0, 0, 0, time.UTC)
	record.CooldownEnd = &end

	suite.Require().NoError(suite.store.Save(record))

	loaded, err := suite.store.LoadAll()
	suite.Require().NoError(err)
	suite.Require().Len(loaded, 1)

	got := loaded[0]
	suite.Equal("alice", got.User)
	suite.Equal("momentum", got.Name)
	suite.Equal("Momentum", got.DisplayName)
	suite.Equal("MSTU", got.LongSymbol)
	suite.Empty(got.ShortSymbol)
	suite.True(got.Balance.Equal(decimal.NewFromInt(1000)))
	suite.Equal(types.BalanceSourceInitial, got.BalanceSource)
	suite.Require().NotNil(got.CooldownEnd)
	suite.True(got.CooldownEnd.Equal(end))
	suite.True(got.CreatedAt.Equal(record.CreatedAt))
}

func (suite *DuckDBStoreTestSuite) TestSaveWithoutCooldownLoadsNil() {
	suite.Require().NoError(suite.store.Save(suite.record("alice", "momentum")))

	loaded, err := suite.store.LoadAll()
	suite.Require().NoError(err)
	suite.Require().Len(loaded, 1)
	suite.Nil(loaded[0].CooldownEnd)
}

func (suite *DuckDBStoreTestSuite) TestSaveOverwritesSameStrategy() {
	record := suite.record("alice", "momentum")
	suite.Require().NoError(suite.store.Save(record))

	record.Balance = decimal.NewFromInt(750)
	record.BalanceSource = types.BalanceSourceUser
	suite.Require().NoError(suite.store.Save(record))

	loaded, err := suite.store.LoadAll()
	suite.Require().NoError(err)
	suite.Require().Len(loaded, 1)
	suite.True(loaded[0].Balance.Equal(decimal.NewFromInt(750)))
	suite.Equal(types.BalanceSourceUser, loaded[0].BalanceSource)
}

func (suite *DuckDBStoreTestSuite) TestDelete() {
	suite.Require().NoError(suite.store.Save(suite.record("alice", "momentum")))
	suite.Require().NoError(suite.store.Save(suite.record("alice", "swing")))

	suite.Require().NoError(suite.store.Delete("alice", "swing"))

	loaded, err := suite.store.LoadAll()
	suite.Require().NoError(err)
	suite.Require().Len(loaded, 1)
	suite.Equal("momentum", loaded[0].Name)
}

func (suite *DuckDBStoreTestSuite) TestClosedStoreRejectsOperations() {
	suite.Require().NoError(suite.store.Close())

	suite.Error(suite.store.Save(suite.record("alice", "momentum")))

	_, err := suite.store.LoadAll()
	suite.Error(err)
}

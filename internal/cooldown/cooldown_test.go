package cooldown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type GateTestSuite struct {
	suite.Suite
	gate  *Gate
	clock time.Time
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateTestSuite))
}

func (suite *GateTestSuite) SetupTest() {
	suite.clock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	suite.gate = New()
	suite.gate.now = func() time.Time { return suite.clock }
}

func (suite *GateTestSuite) advance(d time.Duration) {
	suite.clock = suite.clock.Add(d)
}

func (suite *GateTestSuite) TestInitiallyInactive() {
	suite.False(suite.gate.IsActive())
	suite.Equal(time.Duration(0), suite.gate.Remaining())

	_, ok := suite.gate.EndTime()
	suite.False(ok)
}

func (suite *GateTestSuite) TestStartActivates() {
	suite.gate.Start(12 * time.Hour)

	suite.True(suite.gate.IsActive())
	suite.Equal(12*time.Hour, suite.gate.Remaining())

	end, ok := suite.gate.EndTime()
	suite.True(ok)
	suite.Equal(suite.clock.Add(12*time.Hour), end)
}

func (suite *GateTestSuite) TestStartOverwritesActiveWindow() {
	suite.gate.Start(12 * time.Hour)
	suite.advance(10 * time.Hour)

	// Restart while active: the window resets to a fresh duration,
	// it does not extend the old one.
	suite.gate.Start(12 * time.Hour)
	suite.Equal(12*time.Hour, suite.gate.Remaining())

	end, ok := suite.gate.EndTime()
	suite.True(ok)
	suite.Equal(suite.clock.Add(12*time.Hour), end)
}

func (suite *GateTestSuite) TestStopForcesInactive() {
	suite.gate.Start(time.Hour)
	suite.gate.Stop()

	suite.False(suite.gate.IsActive())
	suite.Equal(time.Duration(0), suite.gate.Remaining())

	// Stop on an inactive gate is a no-op.
	suite.gate.Stop()
	suite.False(suite.gate.IsActive())
}

func (suite *GateTestSuite) TestLazyExpiry() {
	suite.gate.Start(time.Hour)
	suite.advance(time.Hour)

	// At exactly end_time the gate is inactive.
	suite.False(suite.gate.IsActive())
	suite.Equal(time.Duration(0), suite.gate.Remaining())
}

func (suite *GateTestSuite) TestRemainingCountsDown() {
	suite.gate.Start(time.Hour)
	suite.advance(15 * time.Minute)
	suite.Equal(45*time.Minute, suite.gate.Remaining())
}

func (suite *GateTestSuite) TestInfoActive() {
	suite.gate.Start(12 * time.Hour)
	suite.advance(30 * time.Second)

	info := suite.gate.Info()
	suite.True(info.Active)
	suite.Require().NotNil(info.EndTime)
	suite.Equal("11h 59m", info.RemainingFormatted)
}

func (suite *GateTestSuite) TestInfoInactive() {
	info := suite.gate.Info()
	suite.False(info.Active)
	suite.Nil(info.EndTime)
	suite.Equal("0h 0m", info.RemainingFormatted)
}

func (suite *GateTestSuite) TestRestoreFutureEndActivates() {
	end := suite.clock.Add(2 * time.Hour)
	suite.gate.Restore(end)

	suite.True(suite.gate.IsActive())
	got, ok := suite.gate.EndTime()
	suite.True(ok)
	suite.Equal(end, got)
	suite.Equal(2*time.Hour, suite.gate.Remaining())
}

func (suite *GateTestSuite) TestRestorePastEndStaysInactive() {
	suite.gate.Restore(suite.clock.Add(-time.Minute))
	suite.False(suite.gate.IsActive())

	suite.gate.Restore(suite.clock)
	suite.False(suite.gate.IsActive())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/tradehook-lab/tradehook/pkg/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) write(content string) string {
	path := filepath.Join(s.T().TempDir(), "config.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))

	return path
}

func (s *ConfigTestSuite) TestDefaults() {
	path := s.write(`
executor:
  hook:
    url: http://localhost:9000/trade
`)

	config, err := Load(path)
	s.Require().NoError(err)

	s.Equal(DefaultHost, config.Server.Host)
	s.Equal(DefaultPort, config.Server.Port)
	s.Equal(float64(DefaultInitialBalance), config.Engine.InitialBalance)
	s.Equal(float64(DefaultCooldownPeriodHours), config.Engine.CooldownPeriodHours)
	s.Equal(StoreMemory, config.Engine.CallLogStore)
	s.Equal("hook", config.Executor.Provider)
	s.Equal("info", config.Log.Level)
}

func (s *ConfigTestSuite) TestFullFile() {
	path := s.write(`
server:
  host: 127.0.0.1
  port: 9090
engine:
  initial_balance: 2500
  cooldown_period_hours: 6
  auto_start_cooldown: true
  call_log_store: duckdb
  call_log_dir: /tmp/calllogs
executor:
  provider: hook
  hook:
    url: http://localhost:9000/trade
    max_attempts: 2
log:
  level: debug
`)

	config, err := Load(path)
	s.Require().NoError(err)

	s.Equal(9090, config.Server.Port)
	s.True(config.Engine.AutoStartCooldown)
	s.Equal(2, config.Executor.Hook.MaxAttempts)

	settings := config.EngineSettings()
	s.True(settings.InitialCash.Equal(decimal.NewFromInt(2500)))
	s.Equal(6*time.Hour, settings.DefaultCooldown)
	s.True(settings.AutoStartCooldown)
}

func (s *ConfigTestSuite) TestHookProviderRequiresURL() {
	path := s.write(`
executor:
  provider: hook
`)

	_, err := Load(path)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeProviderConfigError))
}

func (s *ConfigTestSuite) TestBinanceProviderIgnoresHookSection() {
	path := s.write(`
executor:
  provider: binance-paper
  binance:
    api_key: key
    secret_key: secret
`)

	config, err := Load(path)
	s.Require().NoError(err)
	s.Equal("binance-paper", config.Executor.Provider)
}

func (s *ConfigTestSuite) TestDuckDBRequiresDir() {
	path := s.write(`
engine:
  call_log_store: duckdb
executor:
  hook:
    url: http://localhost:9000/trade
`)

	_, err := Load(path)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (s *ConfigTestSuite) TestEnvOverrides() {
	s.T().Setenv("PORT", "7070")
	s.T().Setenv("COOLDOWN_PERIOD_HOURS", "3")
	s.T().Setenv("INITIAL_CASH_BALANCE", "123")
	s.T().Setenv("HOOK_URL", "http://collab:9000/trade")

	config, err := Load("")
	s.Require().NoError(err)

	s.Equal(7070, config.Server.Port)
	s.Equal(float64(3), config.Engine.CooldownPeriodHours)
	s.Equal(float64(123), config.Engine.InitialBalance)
	s.Equal("http://collab:9000/trade", config.Executor.Hook.URL)
}

func (s *ConfigTestSuite) TestMissingFile() {
	_, err := Load("/does/not/exist.yaml")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (s *ConfigTestSuite) TestInvalidLogLevel() {
	path := s.write(`
executor:
  hook:
    url: http://localhost:9000/trade
log:
  level: loud
`)

	_, err := Load(path)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

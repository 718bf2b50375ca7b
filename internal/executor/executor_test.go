package executor

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tradehook-lab/tradehook/internal/logger"
	"github.com/tradehook-lab/tradehook/pkg/errors"
)

type ProviderRegistryTestSuite struct {
	suite.Suite
}

func TestProviderRegistrySuite(t *testing.T) {
	suite.Run(t, new(ProviderRegistryTestSuite))
}

func (s *ProviderRegistryTestSuite) TestSupportedProviders() {
	providers := GetSupportedProviders()
	s.Contains(providers, string(ProviderHook))
	s.Contains(providers, string(ProviderBinancePaper))
	s.Contains(providers, string(ProviderBinanceLive))
}

func (s *ProviderRegistryTestSuite) TestProviderInfo() {
	info, err := GetProviderInfo(string(ProviderHook))
	s.Require().NoError(err)
	s.Equal(string(ProviderHook), info.Name)
	s.NotEmpty(info.Description)
}

func (s *ProviderRegistryTestSuite) TestUnknownProvider() {
	_, err := GetProviderInfo("etrade")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeUnsupportedProvider))
}

func (s *ProviderRegistryTestSuite) TestConfigSchema() {
	schema, err := GetProviderConfigSchema(string(ProviderHook))
	s.Require().NoError(err)
	s.Contains(schema, "url")
}

func (s *ProviderRegistryTestSuite) TestParseHookConfig() {
	config, err := ParseProviderConfig(string(ProviderHook), `{"url": "http://localhost:8000/hook"}`)
	s.Require().NoError(err)

	hookConfig, ok := config.(*HookConfig)
	s.Require().True(ok)
	s.Equal("http://localhost:8000/hook", hookConfig.URL)
	s.Equal(DefaultHookMaxAttempts, hookConfig.MaxAttempts)
}

func (s *ProviderRegistryTestSuite) TestParseBinanceConfigMissingKeys() {
	_, err := ParseProviderConfig(string(ProviderBinanceLive), `{"api_key": "k"}`)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeProviderConfigError))
}

func (s *ProviderRegistryTestSuite) TestNewHookExecutorFromRegistry() {
	executor, err := NewTradeExecutor(ProviderHook, &HookConfig{URL: "http://localhost:8000/hook"}, logger.NewNopLogger())
	s.Require().NoError(err)
	s.NotNil(executor)
}

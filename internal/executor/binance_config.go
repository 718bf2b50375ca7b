package executor

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/tradehook-lab/tradehook/pkg/errors"
)

// BinanceConfig holds the API credentials for the Binance executors. The
// same config shape serves both the paper (testnet) and live providers.
type BinanceConfig struct {
	APIKey    string `json:"api_key" yaml:"api_key" jsonschema:"description=Binance API key" validate:"required"`
	SecretKey string `json:"secret_key" yaml:"secret_key" jsonschema:"description=Binance API secret" validate:"required"`
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty" jsonschema:"description=Override the API endpoint,optional" validate:"omitempty,url"`
}

// Validate checks the config against its struct tags.
func (c *BinanceConfig) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeProviderConfigError, "invalid binance configuration", err)
	}

	return nil
}

func parseBinanceConfig(jsonConfig string) (*BinanceConfig, error) {
	var config BinanceConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeProviderConfigError, "failed to parse binance configuration", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

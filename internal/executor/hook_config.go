package executor

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tradehook-lab/tradehook/pkg/errors"
)

// Default hook provider tuning.
const (
	DefaultHookTimeoutSeconds      = 10
	DefaultHookMaxAttempts         = 5
	DefaultHookMinBackoffSeconds   = 1
	DefaultHookMaxBackoffSeconds   = 30
	DefaultMaxBuyRetries           = 5
	DefaultBuyRetryReductionPct    = 2.0
	DefaultBuySafetyMarginPct      = 2.0
)

// HookConfig contains configuration for the webhook trade collaborator.
type HookConfig struct {
	// URL is the collaborator endpoint receiving {symbol, action, quantity} payloads.
	URL string `json:"url" yaml:"url" jsonschema:"title=Hook URL,description=Trade collaborator webhook endpoint" validate:"required,url"`
	// TimeoutSeconds bounds one HTTP exchange.
	TimeoutSeconds int `json:"timeoutSeconds" yaml:"timeout_seconds" jsonschema:"title=Timeout Seconds" validate:"gte=0"`
	// MaxAttempts bounds transport-level retries per exchange. Trade-level
	// re-submission is never retried automatically: a blindly re-sent
	// sell/buy risks duplicate execution.
	MaxAttempts        int     `json:"maxAttempts" yaml:"max_attempts" jsonschema:"title=Max Transport Attempts" validate:"gte=0"`
	MinBackoffSeconds  float64 `json:"minBackoffSeconds" yaml:"min_backoff_seconds" jsonschema:"title=Min Backoff Seconds" validate:"gte=0"`
	MaxBackoffSeconds  float64 `json:"maxBackoffSeconds" yaml:"max_backoff_seconds" jsonschema:"title=Max Backoff Seconds" validate:"gte=0"`
	// MaxBuyRetries bounds the shrinking-quantity buy loop.
	MaxBuyRetries int `json:"maxBuyRetries" yaml:"max_buy_retries" jsonschema:"title=Max Buy Retries" validate:"gte=0"`
	// BuyRetryReductionPercent shrinks the requested quantity on each buy retry.
	BuyRetryReductionPercent float64 `json:"buyRetryReductionPercent" yaml:"buy_retry_reduction_percent" jsonschema:"title=Buy Retry Reduction Percent" validate:"gte=0,lte=100"`
	// BuySafetyMarginPercent holds back cash against price movement when
	// sizing the maximum whole-share purchase.
	BuySafetyMarginPercent float64 `json:"buySafetyMarginPercent" yaml:"buy_safety_margin_percent" jsonschema:"title=Buy Safety Margin Percent" validate:"gte=0,lte=100"`
}

// ApplyDefaults fills zero-valued tuning fields with defaults.
func (c *HookConfig) ApplyDefaults() {
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultHookTimeoutSeconds
	}

	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultHookMaxAttempts
	}

	if c.MinBackoffSeconds == 0 {
		c.MinBackoffSeconds = DefaultHookMinBackoffSeconds
	}

	if c.MaxBackoffSeconds == 0 {
		c.MaxBackoffSeconds = DefaultHookMaxBackoffSeconds
	}

	if c.MaxBuyRetries == 0 {
		c.MaxBuyRetries = DefaultMaxBuyRetries
	}

	if c.BuyRetryReductionPercent == 0 {
		c.BuyRetryReductionPercent = DefaultBuyRetryReductionPct
	}

	if c.BuySafetyMarginPercent == 0 {
		c.BuySafetyMarginPercent = DefaultBuySafetyMarginPct
	}
}

// Timeout returns the per-exchange timeout as a duration.
func (c HookConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate validates the HookConfig struct.
func (c *HookConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeProviderConfigError, "invalid hook provider config", err)
	}

	return nil
}

// parseHookConfig parses a JSON configuration string into a HookConfig.
func parseHookConfig(jsonConfig string) (*HookConfig, error) {
	var config HookConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeProviderConfigError, "failed to parse hook config", err)
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

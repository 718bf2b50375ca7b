// Package config loads the service configuration from YAML with
// environment overrides for deploy-time secrets.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/tradehook-lab/tradehook/internal/engine"
	"github.com/tradehook-lab/tradehook/internal/executor"
	"github.com/tradehook-lab/tradehook/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Call log store backends.
const (
	StoreMemory = "memory"
	StoreDuckDB = "duckdb"
)

const (
	DefaultHost                = "0.0.0.0"
	DefaultPort                = 8080
	DefaultCooldownPeriodHours = 12
	DefaultInitialBalance      = 10000
	DefaultLockTimeoutSeconds  = 5
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"gte=0,lte=65535"`
}

// EngineConfig tunes signal processing.
type EngineConfig struct {
	// InitialBalance seeds strategies created without an explicit balance.
	InitialBalance float64 `yaml:"initial_balance" validate:"gte=0"`
	// CooldownPeriodHours is the default cooldown window.
	CooldownPeriodHours float64 `yaml:"cooldown_period_hours" validate:"gte=0"`
	// LockTimeoutSeconds bounds the wait for a busy strategy.
	LockTimeoutSeconds float64 `yaml:"lock_timeout_seconds" validate:"gte=0"`
	// AutoStartCooldown restarts the cooldown after each executed
	// automated signal.
	AutoStartCooldown bool `yaml:"auto_start_cooldown"`
	// CallLogStore selects where call logs live.
	CallLogStore string `yaml:"call_log_store" validate:"omitempty,oneof=memory duckdb"`
	// CallLogDir is the directory for duckdb call log files.
	CallLogDir string `yaml:"call_log_dir"`
}

// ExecutorConfig selects and configures the trade executor provider.
type ExecutorConfig struct {
	Provider string `yaml:"provider" validate:"omitempty,oneof=hook binance-paper binance-live"`
	// Provider configs are validated individually for the selected
	// provider only; an unused section may stay incomplete.
	Hook    executor.HookConfig    `yaml:"hook" validate:"-"`
	Binance executor.BinanceConfig `yaml:"binance" validate:"-"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Config is the root service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Executor ExecutorConfig `yaml:"executor"`
	Log      LogConfig      `yaml:"log"`
}

// Load reads the YAML file at path, applies environment overrides, fills
// defaults and validates. An empty path yields a default configuration.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(raw, config); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
		}
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnv overrides file values with environment variables. Secrets are
// expected to arrive this way rather than via the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}

	if v := os.Getenv("COOLDOWN_PERIOD_HOURS"); v != "" {
		if hours, err := strconv.ParseFloat(v, 64); err == nil {
			c.Engine.CooldownPeriodHours = hours
		}
	}

	if v := os.Getenv("INITIAL_CASH_BALANCE"); v != "" {
		if balance, err := strconv.ParseFloat(v, 64); err == nil {
			c.Engine.InitialBalance = balance
		}
	}

	if v := os.Getenv("HOOK_URL"); v != "" {
		c.Executor.Hook.URL = v
	}

	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.Executor.Binance.APIKey = v
	}

	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		c.Executor.Binance.SecretKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	if c.Engine.InitialBalance == 0 {
		c.Engine.InitialBalance = DefaultInitialBalance
	}

	if c.Engine.CooldownPeriodHours == 0 {
		c.Engine.CooldownPeriodHours = DefaultCooldownPeriodHours
	}

	if c.Engine.LockTimeoutSeconds == 0 {
		c.Engine.LockTimeoutSeconds = DefaultLockTimeoutSeconds
	}

	if c.Engine.CallLogStore == "" {
		c.Engine.CallLogStore = StoreMemory
	}

	if c.Executor.Provider == "" {
		c.Executor.Provider = string(executor.ProviderHook)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.Executor.Hook.ApplyDefaults()
}

// Validate checks the whole tree, including the provider config selected
// by Executor.Provider.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	switch executor.ProviderType(c.Executor.Provider) {
	case executor.ProviderHook:
		if err := c.Executor.Hook.Validate(); err != nil {
			return err
		}
	case executor.ProviderBinancePaper, executor.ProviderBinanceLive:
		if err := c.Executor.Binance.Validate(); err != nil {
			return err
		}
	}

	if c.Engine.CallLogStore == StoreDuckDB && c.Engine.CallLogDir == "" {
		return errors.New(errors.ErrCodeInvalidConfiguration, "call_log_dir is required for the duckdb call log store")
	}

	return nil
}

// EngineSettings converts the tuning section into the engine's config type.
func (c *Config) EngineSettings() engine.Config {
	return engine.Config{
		InitialCash:       decimal.NewFromFloat(c.Engine.InitialBalance),
		DefaultCooldown:   time.Duration(c.Engine.CooldownPeriodHours * float64(time.Hour)),
		LockTimeout:       time.Duration(c.Engine.LockTimeoutSeconds * float64(time.Second)),
		AutoStartCooldown: c.Engine.AutoStartCooldown,
	}
}

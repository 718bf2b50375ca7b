// Package executor abstracts the external trade-execution collaborator.
//
// The engine speaks to the collaborator only through the TradeExecutor
// interface. Two provider families exist: the hook provider posts
// SignalStack-style payloads to a webhook URL, and the binance providers
// place market orders through the Binance API.
package executor

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tradehook-lab/tradehook/internal/logger"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/pkg/errors"
	"github.com/tradehook-lab/tradehook/pkg/schema"
)

// SellResult reports one liquidation leg.
type SellResult struct {
	Symbol   string
	Status   types.TradeStatus
	Quantity decimal.Decimal
	Price    decimal.Decimal
	// Proceeds is the cash realized. Zero when the collaborator accepted
	// the request but no position existed.
	Proceeds decimal.Decimal
	// Raw is the collaborator's response payload, recorded in the call log.
	Raw map[string]any
}

// BuyResult reports one purchase leg.
type BuyResult struct {
	Symbol   string
	Status   types.TradeStatus
	Quantity decimal.Decimal
	Price    decimal.Decimal
	// Spent is the cash consumed by the fill.
	Spent decimal.Decimal
	// Remaining is the post-trade cash reported by the executor; the
	// ledger is set to this amount after a buy.
	Remaining decimal.Decimal
	Raw       map[string]any
}

// TradeExecutor executes sell and buy legs against the external
// collaborator. A failed leg returns an error; the caller aborts the rest
// of the plan but keeps completed legs committed, since positions already
// sold cannot be un-sold at this layer.
type TradeExecutor interface {
	// Sell liquidates the full position for symbol and returns the
	// realized proceeds.
	Sell(ctx context.Context, symbol string) (SellResult, error)
	// Buy purchases symbol with all of the given cash and reports the
	// post-trade remaining amount.
	Buy(ctx context.Context, symbol string, cash decimal.Decimal) (BuyResult, error)
}

// ProviderType identifies a trade executor implementation.
type ProviderType string

const (
	ProviderHook         ProviderType = "hook"
	ProviderBinancePaper ProviderType = "binance-paper"
	ProviderBinanceLive  ProviderType = "binance-live"
)

// ProviderInfo is metadata about an executor provider.
type ProviderInfo struct {
	Name           string `json:"name"`
	DisplayName    string `json:"displayName"`
	Description    string `json:"description"`
	IsPaperTrading bool   `json:"isPaperTrading"`
}

var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderHook: {
		Name:           string(ProviderHook),
		DisplayName:    "Webhook Collaborator",
		Description:    "Posts buy/close payloads to a SignalStack-style webhook URL",
		IsPaperTrading: false,
	},
	ProviderBinancePaper: {
		Name:           string(ProviderBinancePaper),
		DisplayName:    "Binance Testnet",
		Description:    "Binance testnet for paper trading without real funds",
		IsPaperTrading: true,
	},
	ProviderBinanceLive: {
		Name:           string(ProviderBinanceLive),
		DisplayName:    "Binance Live",
		Description:    "Binance live environment for real-funds trading",
		IsPaperTrading: false,
	},
}

// GetSupportedProviders returns the names of all registered providers.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	return providers
}

// GetProviderInfo returns metadata for a specific executor provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeUnsupportedProvider, "unsupported trade executor provider: %s", providerName)
	}

	return info, nil
}

// GetProviderConfigSchema returns the JSON schema for a provider's configuration.
func GetProviderConfigSchema(providerName string) (string, error) {
	switch ProviderType(providerName) {
	case ProviderHook:
		return schema.ToJSONSchema(HookConfig{})
	case ProviderBinancePaper, ProviderBinanceLive:
		return schema.ToJSONSchema(BinanceConfig{})
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedProvider, "unsupported trade executor provider: %s", providerName)
	}
}

// ParseProviderConfig parses a JSON configuration string for the given provider.
func ParseProviderConfig(providerName string, jsonConfig string) (any, error) {
	switch ProviderType(providerName) {
	case ProviderHook:
		return parseHookConfig(jsonConfig)
	case ProviderBinancePaper, ProviderBinanceLive:
		return parseBinanceConfig(jsonConfig)
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedProvider, "unsupported trade executor provider: %s", providerName)
	}
}

// NewTradeExecutor creates a trade executor based on the provider type.
func NewTradeExecutor(providerType ProviderType, config any, log *logger.Logger) (TradeExecutor, error) {
	switch providerType {
	case ProviderHook:
		cfg, ok := config.(*HookConfig)
		if !ok {
			return nil, errors.New(errors.ErrCodeProviderConfigError, "invalid config type for hook provider")
		}

		return NewHookExecutor(*cfg, log)
	case ProviderBinancePaper:
		cfg, ok := config.(*BinanceConfig)
		if !ok {
			return nil, errors.New(errors.ErrCodeProviderConfigError, "invalid config type for binance paper provider")
		}

		return NewBinanceExecutor(*cfg, true, log)
	case ProviderBinanceLive:
		cfg, ok := config.(*BinanceConfig)
		if !ok {
			return nil, errors.New(errors.ErrCodeProviderConfigError, "invalid config type for binance live provider")
		}

		return NewBinanceExecutor(*cfg, false, log)
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedProvider, "unsupported trade executor provider: %s", providerType)
	}
}

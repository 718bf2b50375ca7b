package executor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jpillora/backoff"
	"github.com/shopspring/decimal"
	"github.com/tradehook-lab/tradehook/internal/logger"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/pkg/errors"
	"go.uber.org/zap"
)

// Collaborator payload actions.
const (
	hookActionBuy   = "buy"
	hookActionClose = "close"
)

// Collaborator response statuses.
const (
	hookStatusFilled          = "filled"
	hookStatusAccepted        = "accepted"
	hookStatusValidationError = "ValidationError"
)

// HookExecutor speaks the SignalStack-style webhook protocol: it posts
// {symbol, action, quantity} payloads and reads {status, price, quantity}
// responses. Transport failures are retried with exponential backoff;
// trade-level rejections are never re-submitted blindly.
type HookExecutor struct {
	client *resty.Client
	config HookConfig
	log    *logger.Logger
}

// NewHookExecutor creates a hook executor for the configured URL.
func NewHookExecutor(config HookConfig, log *logger.Logger) (*HookExecutor, error) {
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := resty.New().
		SetTimeout(config.Timeout()).
		SetHeader("Content-Type", "application/json")

	return &HookExecutor{
		client: client,
		config: config,
		log:    log,
	}, nil
}

// Sell implements TradeExecutor. It closes the full position for symbol.
// A collaborator answering "accepted" means no open position existed; that
// is a success with zero proceeds.
func (h *HookExecutor) Sell(ctx context.Context, symbol string) (SellResult, error) {
	payload := map[string]any{
		"symbol": symbol,
		"action": hookActionClose,
	}

	body, err := h.post(ctx, payload)
	if err != nil {
		return SellResult{}, errors.Wrapf(errors.ErrCodeSellFailed, err, "failed to close position for %s", symbol)
	}

	status, _ := body["status"].(string)

	switch status {
	case hookStatusFilled:
		price := decimalField(body, "price")
		quantity := decimalField(body, "quantity")
		proceeds := price.Mul(quantity)

		h.log.Info("closed position",
			zap.String("symbol", symbol),
			zap.String("quantity", quantity.String()),
			zap.String("price", price.String()),
			zap.String("proceeds", proceeds.String()),
		)

		return SellResult{
			Symbol:   symbol,
			Status:   types.TradeStatusFilled,
			Quantity: quantity,
			Price:    price,
			Proceeds: proceeds,
			Raw:      body,
		}, nil
	case hookStatusAccepted:
		h.log.Info("no open position to close", zap.String("symbol", symbol))

		return SellResult{
			Symbol: symbol,
			Status: types.TradeStatusAccepted,
			Raw:    body,
		}, nil
	default:
		return SellResult{}, errors.Newf(errors.ErrCodeUnexpectedTradeResponse,
			"unexpected close response status %q for %s", status, symbol)
	}
}

// Buy implements TradeExecutor. It buys one share to discover the current
// price, sizes the maximum whole-share purchase from the remaining cash
// (holding back the configured safety margin), and places the bulk order
// with a shrinking-quantity retry loop.
func (h *HookExecutor) Buy(ctx context.Context, symbol string, cash decimal.Decimal) (BuyResult, error) {
	probe, err := h.buyShares(ctx, symbol, 1)
	if err != nil {
		return BuyResult{}, errors.Wrapf(errors.ErrCodeBuyFailed, err, "price discovery buy failed for %s", symbol)
	}

	price := decimalField(probe, "price")
	if price.IsZero() {
		return BuyResult{}, errors.Newf(errors.ErrCodeUnexpectedTradeResponse,
			"price missing from probe response for %s", symbol)
	}

	budget := cash.Sub(price)
	usable := budget.Mul(decimal.NewFromFloat(1 - h.config.BuySafetyMarginPercent/100))
	maxShares := usable.Div(price).IntPart()

	if maxShares <= 0 {
		h.log.Warn("insufficient cash for bulk buy, keeping probe share only",
			zap.String("symbol", symbol),
			zap.String("cash", cash.String()),
			zap.String("price", price.String()),
		)

		return BuyResult{
			Symbol:    symbol,
			Status:    types.TradeStatusFilled,
			Quantity:  decimal.NewFromInt(1),
			Price:     price,
			Spent:     price,
			Remaining: cash.Sub(price),
			Raw:       probe,
		}, nil
	}

	var lastErr error

	for attempt := 0; attempt < h.config.MaxBuyRetries; attempt++ {
		shares := int64(float64(maxShares) * (1 - float64(attempt)*h.config.BuyRetryReductionPercent/100))
		if shares < 1 {
			shares = 1
		}

		h.log.Info("attempting bulk buy",
			zap.String("symbol", symbol),
			zap.Int64("shares", shares),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", h.config.MaxBuyRetries),
		)

		body, err := h.buyShares(ctx, symbol, shares)
		if err != nil {
			lastErr = err

			if ctx.Err() != nil {
				break
			}

			continue
		}

		fillPrice := decimalField(body, "price")
		if fillPrice.IsZero() {
			fillPrice = price
		}

		quantity := decimal.NewFromInt(shares).Add(decimal.NewFromInt(1))
		spent := fillPrice.Mul(decimal.NewFromInt(shares)).Add(price)

		return BuyResult{
			Symbol:    symbol,
			Status:    types.TradeStatusFilled,
			Quantity:  quantity,
			Price:     fillPrice,
			Spent:     spent,
			Remaining: cash.Sub(spent),
			Raw:       body,
		}, nil
	}

	return BuyResult{}, errors.Wrapf(errors.ErrCodeBuyFailed, lastErr,
		"failed to buy %s after %d attempts", symbol, h.config.MaxBuyRetries)
}

// buyShares posts one buy payload and returns the response body on
// filled/accepted.
func (h *HookExecutor) buyShares(ctx context.Context, symbol string, quantity int64) (map[string]any, error) {
	payload := map[string]any{
		"symbol":   symbol,
		"action":   hookActionBuy,
		"quantity": quantity,
	}

	body, err := h.post(ctx, payload)
	if err != nil {
		return nil, err
	}

	status, _ := body["status"].(string)
	if status != hookStatusFilled && status != hookStatusAccepted {
		message, _ := body["message"].(string)

		return nil, errors.Newf(errors.ErrCodeTradeRejected,
			"buy rejected for %s: status=%q message=%q", symbol, status, message)
	}

	return body, nil
}

// post sends one payload with transport-level retries. A ValidationError
// status fails immediately: re-submitting a rejected trade cannot succeed.
func (h *HookExecutor) post(ctx context.Context, payload map[string]any) (map[string]any, error) {
	retry := &backoff.Backoff{
		Min:    time.Duration(h.config.MinBackoffSeconds * float64(time.Second)),
		Max:    time.Duration(h.config.MaxBackoffSeconds * float64(time.Second)),
		Factor: 2,
		Jitter: true,
	}

	var lastErr error

	for attempt := 1; attempt <= h.config.MaxAttempts; attempt++ {
		resp, err := h.client.R().
			SetContext(ctx).
			SetBody(payload).
			Post(h.config.URL)

		switch {
		case err != nil:
			lastErr = err

			h.log.Warn("collaborator request failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", h.config.MaxAttempts),
				zap.Error(err),
			)
		case resp.StatusCode() >= 500:
			lastErr = errors.Newf(errors.ErrCodeCollaboratorUnavailable,
				"collaborator returned HTTP %d", resp.StatusCode())

			h.log.Warn("collaborator returned server error",
				zap.Int("attempt", attempt),
				zap.Int("http_status", resp.StatusCode()),
			)
		default:
			var body map[string]any
			if err := json.Unmarshal(resp.Body(), &body); err != nil {
				lastErr = errors.Wrap(errors.ErrCodeUnexpectedTradeResponse, "failed to decode collaborator response", err)

				break
			}

			if status, _ := body["status"].(string); status == hookStatusValidationError {
				message, _ := body["message"].(string)

				return nil, errors.Newf(errors.ErrCodeTradeRejected, "collaborator rejected request: %s", message)
			}

			return body, nil
		}

		if attempt == h.config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeCollaboratorUnavailable, "request cancelled", ctx.Err())
		case <-time.After(retry.Duration()):
		}
	}

	return nil, errors.Wrapf(errors.ErrCodeCollaboratorUnavailable, lastErr,
		"collaborator unreachable after %d attempts", h.config.MaxAttempts)
}

// decimalField reads a numeric JSON field into a decimal, tolerating both
// number and string encodings. Missing fields read as zero.
func decimalField(body map[string]any, key string) decimal.Decimal {
	switch v := body[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}

		return d
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero
		}

		return d
	default:
		return decimal.Zero
	}
}

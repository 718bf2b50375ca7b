package executor

import (
	"context"
	"strings"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"github.com/tradehook-lab/tradehook/internal/logger"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/pkg/errors"
	"go.uber.org/zap"
)

// quoteAssets are the quote currencies recognized when splitting a pair
// symbol into base and quote, longest suffix first.
var quoteAssets = []string{"USDT", "USDC", "BUSD", "BTC", "ETH", "BNB"}

// Service interfaces for mocking the Binance API.

// CreateOrderService interface for creating orders.
type CreateOrderService interface {
	Symbol(symbol string) CreateOrderService
	Side(side binance.SideType) CreateOrderService
	Type(orderType binance.OrderType) CreateOrderService
	Quantity(quantity string) CreateOrderService
	QuoteOrderQty(quoteOrderQty string) CreateOrderService
	Do(ctx context.Context) (*binance.CreateOrderResponse, error)
}

// GetAccountService interface for getting account info.
type GetAccountService interface {
	Do(ctx context.Context) (*binance.Account, error)
}

// BinanceClient interface abstracts the Binance client for testing.
type BinanceClient interface {
	NewCreateOrderService() CreateOrderService
	NewGetAccountService() GetAccountService
}

// realBinanceClient wraps the actual binance.Client.
type realBinanceClient struct {
	client *binance.Client
}

func (r *realBinanceClient) NewCreateOrderService() CreateOrderService {
	return &realCreateOrderService{service: r.client.NewCreateOrderService()}
}

func (r *realBinanceClient) NewGetAccountService() GetAccountService {
	return &realGetAccountService{service: r.client.NewGetAccountService()}
}

type realCreateOrderService struct {
	service *binance.CreateOrderService
}

func (s *realCreateOrderService) Symbol(symbol string) CreateOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCreateOrderService) Side(side binance.SideType) CreateOrderService {
	s.service = s.service.Side(side)

	return s
}

func (s *realCreateOrderService) Type(orderType binance.OrderType) CreateOrderService {
	s.service = s.service.Type(orderType)

	return s
}

func (s *realCreateOrderService) Quantity(quantity string) CreateOrderService {
	s.service = s.service.Quantity(quantity)

	return s
}

func (s *realCreateOrderService) QuoteOrderQty(quoteOrderQty string) CreateOrderService {
	s.service = s.service.QuoteOrderQty(quoteOrderQty)

	return s
}

func (s *realCreateOrderService) Do(ctx context.Context) (*binance.CreateOrderResponse, error) {
	return s.service.Do(ctx)
}

type realGetAccountService struct {
	service *binance.GetAccountService
}

func (s *realGetAccountService) Do(ctx context.Context) (*binance.Account, error) {
	return s.service.Do(ctx)
}

// BinanceExecutor executes market orders on Binance spot. It is stateless;
// position sizes are read from the account balances on every call.
type BinanceExecutor struct {
	client BinanceClient
	log    *logger.Logger
}

// NewBinanceExecutor creates a Binance executor.
// If useTestnet is true, connects to Binance Testnet.
// If config.BaseURL is set, it takes precedence over useTestnet.
func NewBinanceExecutor(config BinanceConfig, useTestnet bool, log *logger.Logger) (*BinanceExecutor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if useTestnet {
		binance.UseTestnet = true
	}

	client := binance.NewClient(config.APIKey, config.SecretKey)

	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	return &BinanceExecutor{
		client: &realBinanceClient{client: client},
		log:    log,
	}, nil
}

// newBinanceExecutorWithClient creates an executor with a custom client.
// This is used for testing with mock clients.
func newBinanceExecutorWithClient(client BinanceClient, log *logger.Logger) *BinanceExecutor {
	return &BinanceExecutor{
		client: client,
		log:    log,
	}
}

// Sell implements TradeExecutor. It market-sells the entire free balance
// of the pair's base asset. A zero balance is a success with no fill.
func (b *BinanceExecutor) Sell(ctx context.Context, symbol string) (SellResult, error) {
	base, err := baseAssetOf(symbol)
	if err != nil {
		return SellResult{}, err
	}

	account, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return SellResult{}, errors.Wrap(errors.ErrCodeSellFailed, "failed to get account info from Binance", err)
	}

	free := decimal.Zero

	for _, balance := range account.Balances {
		if balance.Asset == base {
			free, err = decimal.NewFromString(balance.Free)
			if err != nil {
				return SellResult{}, errors.Wrapf(errors.ErrCodeUnexpectedTradeResponse, err,
					"unparseable free balance for %s", base)
			}

			break
		}
	}

	if free.IsZero() {
		b.log.Info("no position to close", zap.String("symbol", symbol))

		return SellResult{
			Symbol: symbol,
			Status: types.TradeStatusAccepted,
		}, nil
	}

	resp, err := b.client.NewCreateOrderService().
		Symbol(symbol).
		Side(binance.SideTypeSell).
		Type(binance.OrderTypeMarket).
		Quantity(free.String()).
		Do(ctx)
	if err != nil {
		return SellResult{}, errors.Wrapf(errors.ErrCodeSellFailed, err, "failed to sell %s on Binance", symbol)
	}

	quantity, proceeds, price, err := fillTotals(resp)
	if err != nil {
		return SellResult{}, err
	}

	b.log.Info("closed position",
		zap.String("symbol", symbol),
		zap.String("quantity", quantity.String()),
		zap.String("proceeds", proceeds.String()),
	)

	return SellResult{
		Symbol:   symbol,
		Status:   types.TradeStatusFilled,
		Quantity: quantity,
		Price:    price,
		Proceeds: proceeds,
	}, nil
}

// Buy implements TradeExecutor. It places a quote-quantity market buy
// spending the given cash amount.
func (b *BinanceExecutor) Buy(ctx context.Context, symbol string, cash decimal.Decimal) (BuyResult, error) {
	if !cash.IsPositive() {
		return BuyResult{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"buy amount must be positive, got %s", cash)
	}

	resp, err := b.client.NewCreateOrderService().
		Symbol(symbol).
		Side(binance.SideTypeBuy).
		Type(binance.OrderTypeMarket).
		QuoteOrderQty(cash.Round(8).String()).
		Do(ctx)
	if err != nil {
		return BuyResult{}, errors.Wrapf(errors.ErrCodeBuyFailed, err, "failed to buy %s on Binance", symbol)
	}

	quantity, spent, price, err := fillTotals(resp)
	if err != nil {
		return BuyResult{}, err
	}

	b.log.Info("opened position",
		zap.String("symbol", symbol),
		zap.String("quantity", quantity.String()),
		zap.String("spent", spent.String()),
	)

	return BuyResult{
		Symbol:    symbol,
		Status:    types.TradeStatusFilled,
		Quantity:  quantity,
		Price:     price,
		Spent:     spent,
		Remaining: cash.Sub(spent),
	}, nil
}

// fillTotals extracts executed quantity, total quote amount and average
// price from an order response.
func fillTotals(resp *binance.CreateOrderResponse) (quantity, quote, price decimal.Decimal, err error) {
	quantity, err = decimal.NewFromString(resp.ExecutedQuantity)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero,
			errors.Wrap(errors.ErrCodeUnexpectedTradeResponse, "unparseable executed quantity", err)
	}

	quote, err = decimal.NewFromString(resp.CummulativeQuoteQuantity)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero,
			errors.Wrap(errors.ErrCodeUnexpectedTradeResponse, "unparseable quote quantity", err)
	}

	if quantity.IsPositive() {
		price = quote.Div(quantity)
	}

	return quantity, quote, price, nil
}

// baseAssetOf splits a pair symbol like BTCUSDT into its base asset.
func baseAssetOf(symbol string) (string, error) {
	for _, quote := range quoteAssets {
		if strings.HasSuffix(symbol, quote) && len(symbol) > len(quote) {
			return strings.TrimSuffix(symbol, quote), nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidParameter, "unrecognized quote asset in symbol %s", symbol)
}

var _ TradeExecutor = (*BinanceExecutor)(nil)
var _ TradeExecutor = (*HookExecutor)(nil)

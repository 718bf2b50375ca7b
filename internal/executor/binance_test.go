package executor

import (
	"context"
	"testing"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/tradehook-lab/tradehook/internal/logger"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/pkg/errors"
)

// fakeBinanceClient records order parameters and returns canned responses.
type fakeBinanceClient struct {
	account    *binance.Account
	accountErr error
	orderResp  *binance.CreateOrderResponse
	orderErr   error
	lastOrder  *fakeCreateOrderService
}

func (f *fakeBinanceClient) NewCreateOrderService() CreateOrderService {
	f.lastOrder = &fakeCreateOrderService{client: f}

	return f.lastOrder
}

func (f *fakeBinanceClient) NewGetAccountService() GetAccountService {
	return &fakeGetAccountService{client: f}
}

type fakeCreateOrderService struct {
	client        *fakeBinanceClient
	symbol        string
	side          binance.SideType
	orderType     binance.OrderType
	quantity      string
	quoteOrderQty string
}

func (s *fakeCreateOrderService) Symbol(symbol string) CreateOrderService {
	s.symbol = symbol

	return s
}

func (s *fakeCreateOrderService) Side(side binance.SideType) CreateOrderService {
	s.side = side

	return s
}

func (s *fakeCreateOrderService) Type(orderType binance.OrderType) CreateOrderService {
	s.orderType = orderType

	return s
}

func (s *fakeCreateOrderService) Quantity(quantity string) CreateOrderService {
	s.quantity = quantity

	return s
}

func (s *fakeCreateOrderService) QuoteOrderQty(quoteOrderQty string) CreateOrderService {
	s.quoteOrderQty = quoteOrderQty

	return s
}

func (s *fakeCreateOrderService) Do(ctx context.Context) (*binance.CreateOrderResponse, error) {
	return s.client.orderResp, s.client.orderErr
}

type fakeGetAccountService struct {
	client *fakeBinanceClient
}

func (s *fakeGetAccountService) Do(ctx context.Context) (*binance.Account, error) {
	return s.client.account, s.client.accountErr
}

type BinanceExecutorTestSuite struct {
	suite.Suite
	client   *fakeBinanceClient
	executor *BinanceExecutor
}

func TestBinanceExecutorSuite(t *testing.T) {
	suite.Run(t, new(BinanceExecutorTestSuite))
}

func (s *BinanceExecutorTestSuite) SetupTest() {
	s.client = &fakeBinanceClient{
		account: &binance.Account{
			Balances: []binance.Balance{
				{Asset: "BTC", Free: "0.5", Locked: "0"},
				{Asset: "USDT", Free: "10000", Locked: "0"},
			},
		},
	}
	s.executor = newBinanceExecutorWithClient(s.client, logger.NewNopLogger())
}

func (s *BinanceExecutorTestSuite) TestSellFullFreeBalance() {
	s.client.orderResp = &binance.CreateOrderResponse{
		ExecutedQuantity:         "0.5",
		CummulativeQuoteQuantity: "25000",
	}

	result, err := s.executor.Sell(context.Background(), "BTCUSDT")
	s.Require().NoError(err)

	s.Equal(types.TradeStatusFilled, result.Status)
	s.True(result.Quantity.Equal(decimal.NewFromFloat(0.5)))
	s.True(result.Proceeds.Equal(decimal.NewFromInt(25000)))
	s.True(result.Price.Equal(decimal.NewFromInt(50000)))

	s.Equal("BTCUSDT", s.client.lastOrder.symbol)
	s.Equal(binance.SideTypeSell, s.client.lastOrder.side)
	s.Equal(binance.OrderTypeMarket, s.client.lastOrder.orderType)
	s.Equal("0.5", s.client.lastOrder.quantity)
}

func (s *BinanceExecutorTestSuite) TestSellWithoutHolding() {
	result, err := s.executor.Sell(context.Background(), "ETHUSDT")
	s.Require().NoError(err)

	s.Equal(types.TradeStatusAccepted, result.Status)
	s.True(result.Proceeds.IsZero())
	s.Nil(s.client.lastOrder, "no order should be placed for an empty balance")
}

func (s *BinanceExecutorTestSuite) TestSellUnknownQuoteAsset() {
	_, err := s.executor.Sell(context.Background(), "BTCXYZ")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (s *BinanceExecutorTestSuite) TestBuySpendsQuoteQuantity() {
	s.client.orderResp = &binance.CreateOrderResponse{
		ExecutedQuantity:         "0.019",
		CummulativeQuoteQuantity: "950",
	}

	result, err := s.executor.Buy(context.Background(), "BTCUSDT", decimal.NewFromInt(1000))
	s.Require().NoError(err)

	s.Equal(types.TradeStatusFilled, result.Status)
	s.True(result.Spent.Equal(decimal.NewFromInt(950)))
	s.True(result.Remaining.Equal(decimal.NewFromInt(50)))

	s.Equal(binance.SideTypeBuy, s.client.lastOrder.side)
	s.Equal("1000", s.client.lastOrder.quoteOrderQty)
}

func (s *BinanceExecutorTestSuite) TestBuyRejectsNonPositiveCash() {
	_, err := s.executor.Buy(context.Background(), "BTCUSDT", decimal.Zero)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

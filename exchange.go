package cexkit

import "context"

// Params passes exchange-specific extras through a normalized method
// (e.g. Gemini's "options", Bittrex's "paymentid"). May be nil.
type Params map[string]any

// Capabilities flags which optional operations a venue supports,
// keyed by operation name ("fetchOHLCV", "withdraw", ...).
type Capabilities map[string]bool

func (c Capabilities) Can(op string) bool { return c[op] }

// Exchange is the uniform surface every adapter implements. Operations a
// venue cannot serve return an error wrapping ErrNotSupported; consult
// Has before relying on an optional method.
type Exchange interface {
	ID() string
	Name() string
	Has() Capabilities

	// LoadMarkets populates the instrument cache on first call and reuses
	// it afterward unless reload is set. Keys are normalized symbols.
	LoadMarkets(ctx context.Context, reload bool) (map[string]Market, error)
	// Market resolves a normalized symbol, loading markets first if the
	// cache is cold.
	Market(ctx context.Context, symbol string) (Market, error)

	FetchMarkets(ctx context.Context) ([]Market, error)
	FetchTicker(ctx context.Context, symbol string) (Ticker, error)
	FetchOrderBook(ctx context.Context, symbol string, limit int) (OrderBook, error)
	FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]OHLCV, error)
	FetchTrades(ctx context.Context, symbol string, since int64, limit int) ([]Trade, error)

	FetchBalance(ctx context.Context) (Balances, error)
	CreateOrder(ctx context.Context, symbol string, typ OrderType, side OrderSide, amount float64, price *float64, params Params) (Order, error)
	CancelOrder(ctx context.Context, id, symbol string) (Order, error)
	FetchOrder(ctx context.Context, id, symbol string) (Order, error)
	FetchOpenOrders(ctx context.Context, symbol string, since int64, limit int) ([]Order, error)
	FetchClosedOrders(ctx context.Context, symbol string, since int64, limit int) ([]Order, error)
	FetchMyTrades(ctx context.Context, symbol string, since int64, limit int) ([]Trade, error)

	FetchTransactions(ctx context.Context, code string, since int64, limit int) ([]Transaction, error)
	FetchDeposits(ctx context.Context, code string, since int64, limit int) ([]Transaction, error)
	FetchWithdrawals(ctx context.Context, code string, since int64, limit int) ([]Transaction, error)
	Withdraw(ctx context.Context, code string, amount float64, address, tag string, params Params) (Transaction, error)
	CreateDepositAddress(ctx context.Context, code string) (DepositAddress, error)
	FetchDepositAddress(ctx context.Context, code string) (DepositAddress, error)
}

package cexkit

import "context"

// Unimplemented supplies ErrNotSupported defaults for every optional
// operation. Adapters embed it and override what their venue supports.
type Unimplemented struct{ exch string }

func NewUnimplemented(exch string) Unimplemented { return Unimplemented{exch: exch} }

func (u Unimplemented) notSupported(op string) error {
	return NewError(ErrNotSupported, u.exch, op)
}

func (u Unimplemented) FetchTicker(ctx context.Context, symbol string) (Ticker, error) {
	return Ticker{}, u.notSupported("fetchTicker")
}

func (u Unimplemented) FetchOrderBook(ctx context.Context, symbol string, limit int) (OrderBook, error) {
	return OrderBook{}, u.notSupported("fetchOrderBook")
}

func (u Unimplemented) FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]OHLCV, error) {
	return nil, u.notSupported("fetchOHLCV")
}

func (u Unimplemented) FetchTrades(ctx context.Context, symbol string, since int64, limit int) ([]Trade, error) {
	return nil, u.notSupported("fetchTrades")
}

func (u Unimplemented) FetchBalance(ctx context.Context) (Balances, error) {
	return Balances{}, u.notSupported("fetchBalance")
}

func (u Unimplemented) CreateOrder(ctx context.Context, symbol string, typ OrderType, side OrderSide, amount float64, price *float64, params Params) (Order, error) {
	return Order{}, u.notSupported("createOrder")
}

func (u Unimplemented) CancelOrder(ctx context.Context, id, symbol string) (Order, error) {
	return Order{}, u.notSupported("cancelOrder")
}

func (u Unimplemented) FetchOrder(ctx context.Context, id, symbol string) (Order, error) {
	return Order{}, u.notSupported("fetchOrder")
}

func (u Unimplemented) FetchOpenOrders(ctx context.Context, symbol string, since int64, limit int) ([]Order, error) {
	return nil, u.notSupported("fetchOpenOrders")
}

func (u Unimplemented) FetchClosedOrders(ctx context.Context, symbol string, since int64, limit int) ([]Order, error) {
	return nil, u.notSupported("fetchClosedOrders")
}

func (u Unimplemented) FetchMyTrades(ctx context.Context, symbol string, since int64, limit int) ([]Trade, error) {
	return nil, u.notSupported("fetchMyTrades")
}

func (u Unimplemented) FetchTransactions(ctx context.Context, code string, since int64, limit int) ([]Transaction, error) {
	return nil, u.notSupported("fetchTransactions")
}

func (u Unimplemented) FetchDeposits(ctx context.Context, code string, since int64, limit int) ([]Transaction, error) {
	return nil, u.notSupported("fetchDeposits")
}

func (u Unimplemented) FetchWithdrawals(ctx context.Context, code string, since int64, limit int) ([]Transaction, error) {
	return nil, u.notSupported("fetchWithdrawals")
}

func (u Unimplemented) Withdraw(ctx context.Context, code string, amount float64, address, tag string, params Params) (Transaction, error) {
	return Transaction{}, u.notSupported("withdraw")
}

func (u Unimplemented) CreateDepositAddress(ctx context.Context, code string) (DepositAddress, error) {
	return DepositAddress{}, u.notSupported("createDepositAddress")
}

func (u Unimplemented) FetchDepositAddress(ctx context.Context, code string) (DepositAddress, error) {
	return DepositAddress{}, u.notSupported("fetchDepositAddress")
}

package cexkit

import "encoding/json"

type OrderType string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

type OrderStatus string

const (
	OrderStatusOpen     OrderStatus = "open"
	OrderStatusClosed   OrderStatus = "closed"
	OrderStatusCanceled OrderStatus = "canceled"
)

type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "pending"
	TransactionOK       TransactionStatus = "ok"
	TransactionFailed   TransactionStatus = "failed"
	TransactionCanceled TransactionStatus = "canceled"
)

// MinMax bounds are nil when the exchange does not declare them.
type MinMax struct {
	Min *float64
	Max *float64
}

// Precision is in decimal places.
type Precision struct {
	Amount int
	Price  int
}

type Limits struct {
	Amount MinMax
	Price  MinMax
	Cost   MinMax
}

// Market is one tradable base/quote pair. Built once by LoadMarkets and
// immutable afterward.
type Market struct {
	ID      string // exchange-native id, e.g. "BTC-LTC", "btcusd"
	Symbol  string // normalized BASE/QUOTE
	Base    string
	Quote   string
	BaseID  string
	QuoteID string

	// numeric instrument/currency ids, only on venues that use them (DX)
	NumericID      *int64
	BaseNumericID  *int64
	QuoteNumericID *int64

	Active    bool
	Precision Precision
	Limits    Limits
	Maker     float64
	Taker     float64
	Info      json.RawMessage
}

type Fee struct {
	Currency string
	Cost     *float64
	Rate     *float64
}

// Ticker is a point-in-time price/volume snapshot. Optional numerics stay
// nil when the venue omits them.
type Ticker struct {
	Symbol      string
	Timestamp   int64 // ms, 0 when the venue sends no timestamp
	Datetime    string
	High        *float64
	Low         *float64
	Bid         *float64
	BidVolume   *float64
	Ask         *float64
	AskVolume   *float64
	Open        *float64
	Close       *float64
	Last        *float64
	Average     *float64
	BaseVolume  *float64
	QuoteVolume *float64
	Info        json.RawMessage
}

type BookLevel struct {
	Price  float64
	Amount float64
}

// OrderBook levels are sorted best-first (bids descending, asks ascending).
type OrderBook struct {
	Symbol    string
	Bids      []BookLevel
	Asks      []BookLevel
	Timestamp int64
	Nonce     *int64
	Info      json.RawMessage
}

type Trade struct {
	ID        string
	OrderID   string
	Symbol    string
	Timestamp int64
	Type      OrderType
	Side      OrderSide
	Price     *float64
	Amount    *float64
	Cost      *float64
	Fee       *Fee
	Info      json.RawMessage
}

type Order struct {
	ID            string
	ClientOrderID string
	Symbol        string
	Type          OrderType
	Side          OrderSide
	Status        OrderStatus
	Price         *float64
	Amount        *float64
	Filled        *float64
	Remaining     *float64
	Cost          *float64
	Timestamp     int64
	Fee           *Fee
	Info          json.RawMessage
}

type Balance struct {
	Free  *float64
	Used  *float64
	Total *float64
}

type Balances struct {
	Currencies map[string]Balance
	Info       json.RawMessage
}

type Transaction struct {
	ID        string
	TxID      string
	Currency  string
	Amount    *float64
	Address   string
	Tag       string
	Type      TransactionType
	Status    TransactionStatus
	Timestamp int64
	Fee       *Fee
	Info      json.RawMessage
}

type OHLCV struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

type DepositAddress struct {
	Currency string
	Address  string
	Tag      string
	Info     json.RawMessage
}

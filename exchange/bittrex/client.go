// Package bittrex implements the Bittrex v1.1 REST API. The whole
// adapter is driven by a Config so API clones (see exchange/bleutrade)
// can reuse it with their own hostname, paths and error tables instead
// of reimplementing the wire format.
package bittrex

import (
	"context"
	"crypto/sha512"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cexkit/cexkit"
	"github.com/cexkit/cexkit/exchange/common"
	"github.com/cexkit/cexkit/internal/symbols"
)

const timeLayout = "2006-01-02T15:04:05"

// Paths are endpoint suffixes appended to BaseURL+APIPrefix. Derived
// venues override individual entries.
type Paths struct {
	Markets        string
	MarketSummary  string
	OrderBook      string
	MarketHistory  string
	BuyLimit       string
	SellLimit      string
	Cancel         string
	OpenOrders     string
	Balances       string
	Order          string
	OrderHistory   string
	Withdrawals    string
	Deposits       string
	Withdraw       string
	DepositAddress string
}

type Config struct {
	ID          string
	DisplayName string
	BaseURL     string
	APIPrefix   string
	APIKey      string
	Secret      string
	HTTP        *common.Options
	Logger      *zap.Logger
	Maker       float64
	Taker       float64
	Paths       Paths
	Errors      common.ErrorMap
	// OrderStatuses maps an explicit status field onto the taxonomy.
	// Bittrex proper has no such field (status is derived from
	// IsOpen/CancelInitiated/Closed) and leaves this nil.
	OrderStatuses map[string]cexkit.OrderStatus
}

// DefaultConfig returns Bittrex-proper settings.
func DefaultConfig(apiKey, secret string) Config {
	return Config{
		ID:          "bittrex",
		DisplayName: "Bittrex",
		BaseURL:     "https://api.bittrex.com",
		APIPrefix:   "/api/v1.1",
		APIKey:      apiKey,
		Secret:      secret,
		Maker:       0.0025,
		Taker:       0.0025,
		Paths: Paths{
			Markets:        "/public/getmarkets",
			MarketSummary:  "/public/getmarketsummary",
			OrderBook:      "/public/getorderbook",
			MarketHistory:  "/public/getmarkethistory",
			BuyLimit:       "/market/buylimit",
			SellLimit:      "/market/selllimit",
			Cancel:         "/market/cancel",
			OpenOrders:     "/market/getopenorders",
			Balances:       "/account/getbalances",
			Order:          "/account/getorder",
			OrderHistory:   "/account/getorderhistory",
			Withdrawals:    "/account/getwithdrawalhistory",
			Deposits:       "/account/getdeposithistory",
			Withdraw:       "/account/withdraw",
			DepositAddress: "/account/getdepositaddress",
		},
		Errors: common.ErrorMap{
			Exact: map[string]error{
				"APIKEY_INVALID":                          cexkit.ErrAuthentication,
				"APISIGN_NOT_PROVIDED":                    cexkit.ErrAuthentication,
				"INVALID_SIGNATURE":                       cexkit.ErrAuthentication,
				"INVALID_PERMISSION":                      cexkit.ErrPermissionDenied,
				"INSUFFICIENT_FUNDS":                      cexkit.ErrInsufficientFunds,
				"QUANTITY_NOT_PROVIDED":                   cexkit.ErrInvalidOrder,
				"MIN_TRADE_REQUIREMENT_NOT_MET":           cexkit.ErrInvalidOrder,
				"DUST_TRADE_DISALLOWED_MIN_VALUE_50K_SAT": cexkit.ErrInvalidOrder,
				"ORDER_NOT_OPEN":                          cexkit.ErrInvalidOrder,
				"UUID_INVALID":                            cexkit.ErrOrderNotFound,
				"WHITELIST_VIOLATION_WITHDRAWAL":          cexkit.ErrPermissionDenied,
				"NONCE_NOT_PROVIDED":                      cexkit.ErrInvalidNonce,
			},
			Broad: []common.BroadRule{
				{Substr: "throttled", Err: cexkit.ErrDDoSProtection},
				{Substr: "problem", Err: cexkit.ErrExchangeNotAvailable},
			},
		},
	}
}

type Client struct {
	cexkit.Unimplemented
	cfg     Config
	c       *common.Client
	markets common.MarketCache
}

var _ cexkit.Exchange = (*Client)(nil)

func New(apiKey, secret string) *Client {
	return NewWithConfig(DefaultConfig(apiKey, secret))
}

func NewWithConfig(cfg Config) *Client {
	opts := common.DefaultOptionsFromEnv()
	if cfg.HTTP != nil {
		opts = *cfg.HTTP
	}
	return &Client{
		Unimplemented: cexkit.NewUnimplemented(cfg.ID),
		cfg:           cfg,
		c:             common.NewWith(cfg.ID, cfg.BaseURL+cfg.APIPrefix, opts, cfg.Logger),
	}
}

// SetBaseURL points the client at a different host. Tests use it.
func (cl *Client) SetBaseURL(base string) {
	cl.cfg.BaseURL = base
	cl.c.R.SetBaseURL(base + cl.cfg.APIPrefix)
}

func (cl *Client) ID() string   { return cl.cfg.ID }
func (cl *Client) Name() string { return cl.cfg.DisplayName }

func (cl *Client) Has() cexkit.Capabilities {
	return cexkit.Capabilities{
		"fetchMarkets":        true,
		"fetchTicker":         true,
		"fetchOrderBook":      true,
		"fetchTrades":         true,
		"fetchBalance":        true,
		"createOrder":         true,
		"cancelOrder":         true,
		"fetchOrder":          true,
		"fetchOpenOrders":     true,
		"fetchClosedOrders":   true,
		"fetchTransactions":   true,
		"fetchDeposits":       true,
		"fetchWithdrawals":    true,
		"withdraw":            true,
		"fetchDepositAddress": true,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (cl *Client) public(ctx context.Context, path string, q url.Values, out any) error {
	res, err := cl.c.Get(ctx, path, q, nil)
	if err != nil {
		return err
	}
	return cl.unwrap(res, out)
}

// private signs the full URL with HMAC-SHA512 and sends the digest in
// the apisign header; apikey and nonce travel as query parameters.
func (cl *Client) private(ctx context.Context, path string, q url.Values, out any) error {
	if cl.cfg.APIKey == "" || cl.cfg.Secret == "" {
		return cexkit.NewError(cexkit.ErrAuthentication, cl.cfg.ID, "missing api credentials")
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("apikey", cl.cfg.APIKey)
	q.Set("nonce", strconv.FormatInt(cl.c.Nonce(), 10))
	full := cl.cfg.BaseURL + cl.cfg.APIPrefix + path + "?" + q.Encode()
	sig := common.HexSignature(sha512.New, cl.cfg.Secret, full)
	// never replay: buylimit/selllimit/cancel/withdraw mutate state over
	// GET, and the signed URL embeds its nonce
	res, err := cl.c.Get(common.WithoutRetry(ctx), full, nil, map[string]string{"apisign": sig})
	if err != nil {
		return err
	}
	return cl.unwrap(res, out)
}

func (cl *Client) unwrap(res *common.Response, out any) error {
	var env envelope
	if err := res.Decode(&env); err != nil {
		return cexkit.NewError(cexkit.ErrExchange, cl.cfg.ID, string(res.Body))
	}
	if !res.OK() || !env.Success {
		return cl.cfg.Errors.Dispatch(cl.cfg.ID, env.Message, env.Message, res.Body)
	}
	if out == nil || len(env.Result) == 0 {
		return nil
	}
	return json.Unmarshal(env.Result, out)
}

type rawMarket struct {
	MarketCurrency string   `json:"MarketCurrency"`
	BaseCurrency   string   `json:"BaseCurrency"`
	MarketName     string   `json:"MarketName"`
	MinTradeSize   *float64 `json:"MinTradeSize"`
	IsActive       bool     `json:"IsActive"`
}

func (cl *Client) FetchMarkets(ctx context.Context) ([]cexkit.Market, error) {
	var raws []json.RawMessage
	if err := cl.public(ctx, cl.cfg.Paths.Markets, nil, &raws); err != nil {
		return nil, err
	}
	out := make([]cexkit.Market, 0, len(raws))
	for _, raw := range raws {
		var m rawMarket
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, cexkit.NewError(cexkit.ErrExchange, cl.cfg.ID, string(raw))
		}
		// Bittrex naming is inverted: MarketCurrency is the base of the
		// pair, BaseCurrency the quote.
		base := symbols.CommonCode(m.MarketCurrency)
		quote := symbols.CommonCode(m.BaseCurrency)
		out = append(out, cexkit.Market{
			ID:        m.MarketName,
			Symbol:    base + "/" + quote,
			Base:      base,
			Quote:     quote,
			BaseID:    m.MarketCurrency,
			QuoteID:   m.BaseCurrency,
			Active:    m.IsActive,
			Precision: cexkit.Precision{Amount: 8, Price: 8},
			Limits: cexkit.Limits{
				Amount: cexkit.MinMax{Min: m.MinTradeSize},
			},
			Maker: cl.cfg.Maker,
			Taker: cl.cfg.Taker,
			Info:  raw,
		})
	}
	return out, nil
}

func (cl *Client) LoadMarkets(ctx context.Context, reload bool) (map[string]cexkit.Market, error) {
	return cl.markets.Ensure(ctx, reload, cl.FetchMarkets)
}

func (cl *Client) Market(ctx context.Context, symbol string) (cexkit.Market, error) {
	if _, err := cl.LoadMarkets(ctx, false); err != nil {
		return cexkit.Market{}, err
	}
	m, ok := cl.markets.Symbol(symbol)
	if !ok {
		return cexkit.Market{}, cexkit.NewError(cexkit.ErrBadRequest, cl.cfg.ID, "unknown symbol "+symbol)
	}
	return m, nil
}

type marketSummary struct {
	MarketName string   `json:"MarketName"`
	High       *float64 `json:"High"`
	Low        *float64 `json:"Low"`
	Volume     *float64 `json:"Volume"`
	Last       *float64 `json:"Last"`
	BaseVolume *float64 `json:"BaseVolume"`
	TimeStamp  string   `json:"TimeStamp"`
	Bid        *float64 `json:"Bid"`
	Ask        *float64 `json:"Ask"`
	PrevDay    *float64 `json:"PrevDay"`
}

func (cl *Client) FetchTicker(ctx context.Context, symbol string) (cexkit.Ticker, error) {
	m, err := cl.Market(ctx, symbol)
	if err != nil {
		return cexkit.Ticker{}, err
	}
	var raws []json.RawMessage
	q := url.Values{"market": {m.ID}}
	if err := cl.public(ctx, cl.cfg.Paths.MarketSummary, q, &raws); err != nil {
		return cexkit.Ticker{}, err
	}
	if len(raws) == 0 {
		return cexkit.Ticker{}, cexkit.NewError(cexkit.ErrExchange, cl.cfg.ID, "empty market summary")
	}
	return cl.parseTicker(raws[0], m)
}

func (cl *Client) parseTicker(raw json.RawMessage, m cexkit.Market) (cexkit.Ticker, error) {
	var s marketSummary
	if err := json.Unmarshal(raw, &s); err != nil {
		return cexkit.Ticker{}, cexkit.NewError(cexkit.ErrExchange, cl.cfg.ID, string(raw))
	}
	ts := common.TimeMs(timeLayout, s.TimeStamp)
	return cexkit.Ticker{
		Symbol:    m.Symbol,
		Timestamp: ts,
		Datetime:  common.ISO8601(ts),
		High:      s.High,
		Low:       s.Low,
		Bid:       s.Bid,
		Ask:       s.Ask,
		Last:      s.Last,
		Close:     s.Last,
		Open:      s.PrevDay,
		// Volume is denominated in base units, BaseVolume in quote units
		BaseVolume:  s.Volume,
		QuoteVolume: s.BaseVolume,
		Info:        raw,
	}, nil
}

func (cl *Client) FetchOrderBook(ctx context.Context, symbol string, limit int) (cexkit.OrderBook, error) {
	m, err := cl.Market(ctx, symbol)
	if err != nil {
		return cexkit.OrderBook{}, err
	}
	var book struct {
		Buy []struct {
			Quantity float64 `json:"Quantity"`
			Rate     float64 `json:"Rate"`
		} `json:"buy"`
		Sell []struct {
			Quantity float64 `json:"Quantity"`
			Rate     float64 `json:"Rate"`
		} `json:"sell"`
	}
	q := url.Values{"market": {m.ID}, "type": {"both"}}
	if err := cl.public(ctx, cl.cfg.Paths.OrderBook, q, &book); err != nil {
		return cexkit.OrderBook{}, err
	}
	ob := cexkit.OrderBook{Symbol: m.Symbol}
	for _, lv := range book.Buy {
		ob.Bids = append(ob.Bids, cexkit.BookLevel{Price: lv.Rate, Amount: lv.Quantity})
	}
	for _, lv := range book.Sell {
		ob.Asks = append(ob.Asks, cexkit.BookLevel{Price: lv.Rate, Amount: lv.Quantity})
	}
	sort.Slice(ob.Bids, func(i, j int) bool { return ob.Bids[i].Price > ob.Bids[j].Price })
	sort.Slice(ob.Asks, func(i, j int) bool { return ob.Asks[i].Price < ob.Asks[j].Price })
	if limit > 0 {
		if len(ob.Bids) > limit {
			ob.Bids = ob.Bids[:limit]
		}
		if len(ob.Asks) > limit {
			ob.Asks = ob.Asks[:limit]
		}
	}
	return ob, nil
}

type rawTrade struct {
	ID        int64    `json:"Id"`
	TimeStamp string   `json:"TimeStamp"`
	Quantity  *float64 `json:"Quantity"`
	Price     *float64 `json:"Price"`
	Total     *float64 `json:"Total"`
	OrderType string   `json:"OrderType"` // BUY / SELL
}

func (cl *Client) FetchTrades(ctx context.Context, symbol string, since int64, limit int) ([]cexkit.Trade, error) {
	m, err := cl.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	q := url.Values{"market": {m.ID}}
	if err := cl.public(ctx, cl.cfg.Paths.MarketHistory, q, &raws); err != nil {
		return nil, err
	}
	out := make([]cexkit.Trade, 0, len(raws))
	for _, raw := range raws {
		var t rawTrade
		if err := json.Unmarshal(raw, &t); err != nil {
			continue
		}
		ts := common.TimeMs(timeLayout, t.TimeStamp)
		if since > 0 && ts < since {
			continue
		}
		out = append(out, cexkit.Trade{
			ID:        strconv.FormatInt(t.ID, 10),
			Symbol:    m.Symbol,
			Timestamp: ts,
			Side:      cexkit.OrderSide(strings.ToLower(t.OrderType)),
			Price:     t.Price,
			Amount:    t.Quantity,
			Cost:      t.Total,
			Info:      raw,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (cl *Client) FetchBalance(ctx context.Context) (cexkit.Balances, error) {
	var raws []json.RawMessage
	if err := cl.private(ctx, cl.cfg.Paths.Balances, nil, &raws); err != nil {
		return cexkit.Balances{}, err
	}
	bals := cexkit.Balances{Currencies: make(map[string]cexkit.Balance, len(raws))}
	for _, raw := range raws {
		var b struct {
			Currency  string   `json:"Currency"`
			Balance   *float64 `json:"Balance"`
			Available *float64 `json:"Available"`
		}
		if err := json.Unmarshal(raw, &b); err != nil {
			continue
		}
		bal := cexkit.Balance{Free: b.Available, Total: b.Balance}
		if b.Balance != nil && b.Available != nil {
			used := *b.Balance - *b.Available
			bal.Used = &used
		}
		bals.Currencies[symbols.CommonCode(b.Currency)] = bal
	}
	return bals, nil
}

func (cl *Client) CreateOrder(ctx context.Context, symbol string, typ cexkit.OrderType, side cexkit.OrderSide, amount float64, price *float64, params cexkit.Params) (cexkit.Order, error) {
	if typ != cexkit.OrderTypeLimit {
		return cexkit.Order{}, cexkit.NewError(cexkit.ErrNotSupported, cl.cfg.ID, "only limit orders are supported")
	}
	if price == nil {
		return cexkit.Order{}, cexkit.NewError(cexkit.ErrInvalidOrder, cl.cfg.ID, "limit order requires a price")
	}
	m, err := cl.Market(ctx, symbol)
	if err != nil {
		return cexkit.Order{}, err
	}
	path := cl.cfg.Paths.BuyLimit
	if side == cexkit.OrderSideSell {
		path = cl.cfg.Paths.SellLimit
	}
	q := url.Values{
		"market":   {m.ID},
		"quantity": {common.AmountToPrecision(amount, m.Precision.Amount)},
		"rate":     {common.PriceToPrecision(*price, m.Precision.Price)},
	}
	var res struct {
		UUID string `json:"uuid"`
	}
	if err := cl.private(ctx, path, q, &res); err != nil {
		return cexkit.Order{}, err
	}
	return cexkit.Order{
		ID:     res.UUID,
		Symbol: m.Symbol,
		Type:   typ,
		Side:   side,
		Status: cexkit.OrderStatusOpen,
		Price:  price,
		Amount: &amount,
	}, nil
}

func (cl *Client) CancelOrder(ctx context.Context, id, symbol string) (cexkit.Order, error) {
	q := url.Values{"uuid": {id}}
	if err := cl.private(ctx, cl.cfg.Paths.Cancel, q, nil); err != nil {
		return cexkit.Order{}, err
	}
	return cexkit.Order{ID: id, Symbol: symbol, Status: cexkit.OrderStatusCanceled}, nil
}

type rawOrder struct {
	OrderUuid         string   `json:"OrderUuid"`
	Uuid              string   `json:"Uuid"`
	Exchange          string   `json:"Exchange"`
	Type              string   `json:"Type"`
	OrderType         string   `json:"OrderType"`
	Quantity          *float64 `json:"Quantity"`
	QuantityRemaining *float64 `json:"QuantityRemaining"`
	Limit             *float64 `json:"Limit"`
	Price             *float64 `json:"Price"`
	PricePerUnit      *float64 `json:"PricePerUnit"`
	CommissionPaid    *float64 `json:"CommissionPaid"`
	Commission        *float64 `json:"Commission"`
	Opened            string   `json:"Opened"`
	Closed            string   `json:"Closed"`
	TimeStamp         string   `json:"TimeStamp"`
	Created           string   `json:"Created"`
	IsOpen            bool     `json:"IsOpen"`
	CancelInitiated   bool     `json:"CancelInitiated"`
	Status            string   `json:"Status"`
}

func (cl *Client) parseOrder(raw json.RawMessage) (cexkit.Order, error) {
	var o rawOrder
	if err := json.Unmarshal(raw, &o); err != nil {
		return cexkit.Order{}, cexkit.NewError(cexkit.ErrExchange, cl.cfg.ID, string(raw))
	}
	id := o.OrderUuid
	if id == "" {
		id = o.Uuid
	}
	typeField := o.Type
	if typeField == "" {
		typeField = o.OrderType
	}
	side := cexkit.OrderSideBuy
	if strings.Contains(strings.ToUpper(typeField), "SELL") {
		side = cexkit.OrderSideSell
	}
	typ := cexkit.OrderTypeLimit
	if strings.Contains(strings.ToUpper(typeField), "MARKET") {
		typ = cexkit.OrderTypeMarket
	}

	status := cl.orderStatus(o)

	var filled *float64
	if o.Quantity != nil && o.QuantityRemaining != nil {
		f := *o.Quantity - *o.QuantityRemaining
		filled = &f
	}
	ts := common.TimeMs(timeLayout, firstNonEmpty(o.Opened, o.TimeStamp, o.Created))

	ord := cexkit.Order{
		ID:        id,
		Type:      typ,
		Side:      side,
		Status:    status,
		Price:     o.Limit,
		Amount:    o.Quantity,
		Filled:    filled,
		Remaining: o.QuantityRemaining,
		Cost:      o.Price,
		Timestamp: ts,
		Info:      raw,
	}
	if m, ok := cl.markets.NativeID(o.Exchange); ok {
		ord.Symbol = m.Symbol
	}
	fee := o.CommissionPaid
	if fee == nil {
		fee = o.Commission
	}
	if fee != nil {
		ord.Fee = &cexkit.Fee{Cost: fee}
		if ord.Symbol != "" {
			ord.Fee.Currency = strings.SplitN(ord.Symbol, "/", 2)[1]
		}
	}
	return ord, nil
}

func (cl *Client) orderStatus(o rawOrder) cexkit.OrderStatus {
	if cl.cfg.OrderStatuses != nil && o.Status != "" {
		if st, ok := cl.cfg.OrderStatuses[strings.ToUpper(o.Status)]; ok {
			return st
		}
	}
	switch {
	case o.CancelInitiated:
		return cexkit.OrderStatusCanceled
	case o.IsOpen:
		return cexkit.OrderStatusOpen
	case o.Closed != "" && o.QuantityRemaining != nil && *o.QuantityRemaining > 0:
		// closed without a full fill means it was cancelled
		return cexkit.OrderStatusCanceled
	default:
		return cexkit.OrderStatusClosed
	}
}

func (cl *Client) FetchOrder(ctx context.Context, id, symbol string) (cexkit.Order, error) {
	if _, err := cl.LoadMarkets(ctx, false); err != nil {
		return cexkit.Order{}, err
	}
	var raw json.RawMessage
	if err := cl.private(ctx, cl.cfg.Paths.Order, url.Values{"uuid": {id}}, &raw); err != nil {
		return cexkit.Order{}, err
	}
	return cl.parseOrder(raw)
}

func (cl *Client) fetchOrderList(ctx context.Context, path, symbol string, since int64, limit int, openOnly bool) ([]cexkit.Order, error) {
	if _, err := cl.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	q := url.Values{}
	if symbol != "" {
		m, err := cl.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		q.Set("market", m.ID)
	}
	var raws []json.RawMessage
	if err := cl.private(ctx, path, q, &raws); err != nil {
		return nil, err
	}
	out := make([]cexkit.Order, 0, len(raws))
	for _, raw := range raws {
		ord, err := cl.parseOrder(raw)
		if err != nil {
			continue
		}
		if since > 0 && ord.Timestamp < since {
			continue
		}
		if openOnly && ord.Status != cexkit.OrderStatusOpen {
			continue
		}
		out = append(out, ord)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (cl *Client) FetchOpenOrders(ctx context.Context, symbol string, since int64, limit int) ([]cexkit.Order, error) {
	// defensive: clone venues serve mixed-status history on this path
	return cl.fetchOrderList(ctx, cl.cfg.Paths.OpenOrders, symbol, since, limit, true)
}

func (cl *Client) FetchClosedOrders(ctx context.Context, symbol string, since int64, limit int) ([]cexkit.Order, error) {
	return cl.fetchOrderList(ctx, cl.cfg.Paths.OrderHistory, symbol, since, limit, false)
}

type rawWithdrawal struct {
	PaymentUuid    string   `json:"PaymentUuid"`
	Currency       string   `json:"Currency"`
	Amount         *float64 `json:"Amount"`
	Address        string   `json:"Address"`
	Opened         string   `json:"Opened"`
	Authorized     bool     `json:"Authorized"`
	PendingPayment bool     `json:"PendingPayment"`
	TxCost         *float64 `json:"TxCost"`
	TxId           string   `json:"TxId"`
	Canceled       bool     `json:"Canceled"`
	InvalidAddress bool     `json:"InvalidAddress"`
}

type rawDeposit struct {
	Id            int64    `json:"Id"`
	Amount        *float64 `json:"Amount"`
	Currency      string   `json:"Currency"`
	Confirmations int      `json:"Confirmations"`
	LastUpdated   string   `json:"LastUpdated"`
	TxId          string   `json:"TxId"`
	CryptoAddress string   `json:"CryptoAddress"`
}

func (cl *Client) FetchWithdrawals(ctx context.Context, code string, since int64, limit int) ([]cexkit.Transaction, error) {
	q := url.Values{}
	if code != "" {
		q.Set("currency", code)
	}
	var raws []json.RawMessage
	if err := cl.private(ctx, cl.cfg.Paths.Withdrawals, q, &raws); err != nil {
		return nil, err
	}
	out := make([]cexkit.Transaction, 0, len(raws))
	for _, raw := range raws {
		var w rawWithdrawal
		if err := json.Unmarshal(raw, &w); err != nil {
			continue
		}
		status := cexkit.TransactionPending
		switch {
		case w.Canceled:
			status = cexkit.TransactionCanceled
		case w.InvalidAddress:
			status = cexkit.TransactionFailed
		case w.Authorized && !w.PendingPayment:
			status = cexkit.TransactionOK
		}
		tx := cexkit.Transaction{
			ID:        w.PaymentUuid,
			TxID:      w.TxId,
			Currency:  symbols.CommonCode(w.Currency),
			Amount:    w.Amount,
			Address:   w.Address,
			Type:      cexkit.TransactionWithdrawal,
			Status:    status,
			Timestamp: common.TimeMs(timeLayout, w.Opened),
			Info:      raw,
		}
		if w.TxCost != nil {
			tx.Fee = &cexkit.Fee{Currency: tx.Currency, Cost: w.TxCost}
		}
		if keepTx(tx, since) {
			out = append(out, tx)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (cl *Client) FetchDeposits(ctx context.Context, code string, since int64, limit int) ([]cexkit.Transaction, error) {
	q := url.Values{}
	if code != "" {
		q.Set("currency", code)
	}
	var raws []json.RawMessage
	if err := cl.private(ctx, cl.cfg.Paths.Deposits, q, &raws); err != nil {
		return nil, err
	}
	out := make([]cexkit.Transaction, 0, len(raws))
	for _, raw := range raws {
		var d rawDeposit
		if err := json.Unmarshal(raw, &d); err != nil {
			continue
		}
		status := cexkit.TransactionPending
		if d.Confirmations > 0 {
			status = cexkit.TransactionOK
		}
		tx := cexkit.Transaction{
			ID:        strconv.FormatInt(d.Id, 10),
			TxID:      d.TxId,
			Currency:  symbols.CommonCode(d.Currency),
			Amount:    d.Amount,
			Address:   d.CryptoAddress,
			Type:      cexkit.TransactionDeposit,
			Status:    status,
			Timestamp: common.TimeMs(timeLayout, d.LastUpdated),
			Info:      raw,
		}
		if keepTx(tx, since) {
			out = append(out, tx)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (cl *Client) FetchTransactions(ctx context.Context, code string, since int64, limit int) ([]cexkit.Transaction, error) {
	deps, err := cl.FetchDeposits(ctx, code, since, 0)
	if err != nil {
		return nil, err
	}
	wds, err := cl.FetchWithdrawals(ctx, code, since, 0)
	if err != nil {
		return nil, err
	}
	all := append(deps, wds...)
	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp < all[j].Timestamp })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (cl *Client) Withdraw(ctx context.Context, code string, amount float64, address, tag string, params cexkit.Params) (cexkit.Transaction, error) {
	if err := cexkit.CheckAddress(cl.cfg.ID, address); err != nil {
		return cexkit.Transaction{}, err
	}
	q := url.Values{
		"currency": {code},
		"quantity": {strconv.FormatFloat(amount, 'f', -1, 64)},
		"address":  {address},
	}
	if tag != "" {
		q.Set("paymentid", tag)
	}
	var res struct {
		UUID string `json:"uuid"`
	}
	if err := cl.private(ctx, cl.cfg.Paths.Withdraw, q, &res); err != nil {
		return cexkit.Transaction{}, err
	}
	return cexkit.Transaction{
		ID:       res.UUID,
		Currency: symbols.CommonCode(code),
		Amount:   &amount,
		Address:  address,
		Tag:      tag,
		Type:     cexkit.TransactionWithdrawal,
		Status:   cexkit.TransactionPending,
	}, nil
}

func (cl *Client) FetchDepositAddress(ctx context.Context, code string) (cexkit.DepositAddress, error) {
	var res struct {
		Currency string `json:"Currency"`
		Address  string `json:"Address"`
	}
	if err := cl.private(ctx, cl.cfg.Paths.DepositAddress, url.Values{"currency": {code}}, &res); err != nil {
		return cexkit.DepositAddress{}, err
	}
	return cexkit.DepositAddress{
		Currency: symbols.CommonCode(res.Currency),
		Address:  res.Address,
	}, nil
}

func keepTx(tx cexkit.Transaction, since int64) bool {
	return since <= 0 || tx.Timestamp >= since
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

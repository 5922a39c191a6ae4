// Package dx implements the DX.Exchange JSON-RPC API. Every request is
// an HTTP POST of {id, method, params} against a single endpoint, all
// numeric fields travel as {value, decimals} objects, and private
// methods need a session token obtained through SignIn.
package dx

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cexkit/cexkit"
	"github.com/cexkit/cexkit/exchange/common"
	"github.com/cexkit/cexkit/internal/symbols"
)

const (
	exchangeID = "dx"
	baseURL    = "https://acl.dx.exchange"
	rpcPath    = "/"

	// tokens are refused this close to their expiry rather than risk a
	// mid-flight rejection
	tokenSafety = time.Minute
)

// wire enums
const (
	sideBuy  = 0
	sideSell = 1

	orderTypeMarket = 1
	orderTypeLimit  = 2
)

var errorMap = common.ErrorMap{
	Exact: map[string]error{
		"3005": cexkit.ErrAuthentication, // bad token
		"3006": cexkit.ErrAuthentication, // token expired
		"3016": cexkit.ErrPermissionDenied,
		"4001": cexkit.ErrBadRequest,
		"4002": cexkit.ErrInsufficientFunds,
		"4003": cexkit.ErrInvalidOrder,
		"4004": cexkit.ErrOrderNotFound,
		"4029": cexkit.ErrInvalidNonce,
		"5001": cexkit.ErrDDoSProtection,
		"5002": cexkit.ErrExchangeNotAvailable,
	},
	Broad: []common.BroadRule{
		{Substr: "Insufficient", Err: cexkit.ErrInsufficientFunds},
		{Substr: "not found", Err: cexkit.ErrOrderNotFound},
		{Substr: "Too many requests", Err: cexkit.ErrDDoSProtection},
	},
}

var timeframes = map[string]string{
	"1m":  "1",
	"5m":  "5",
	"15m": "15",
	"30m": "30",
	"1h":  "60",
	"1d":  "1D",
}

type Config struct {
	APIKey  string
	Secret  string
	BaseURL string
	HTTP    *common.Options
	Logger  *zap.Logger
}

type Client struct {
	cexkit.Unimplemented
	c       *common.Client
	apiKey  string
	secret  string
	markets common.MarketCache

	reqID atomic.Int64

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

var _ cexkit.Exchange = (*Client)(nil)

func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = baseURL
	}
	opts := common.DefaultOptionsFromEnv()
	if cfg.HTTP != nil {
		opts = *cfg.HTTP
	}
	return &Client{
		Unimplemented: cexkit.NewUnimplemented(exchangeID),
		c:             common.NewWith(exchangeID, base, opts, cfg.Logger),
		apiKey:        cfg.APIKey,
		secret:        cfg.Secret,
	}
}

func (*Client) ID() string   { return exchangeID }
func (*Client) Name() string { return "DX.Exchange" }

func (*Client) Has() cexkit.Capabilities {
	return cexkit.Capabilities{
		"fetchMarkets":      true,
		"fetchTicker":       true,
		"fetchOHLCV":        true,
		"fetchBalance":      true,
		"createOrder":       true,
		"cancelOrder":       true,
		"fetchOpenOrders":   true,
		"fetchClosedOrders": true,
	}
}

type rpcRequest struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (cl *Client) call(ctx context.Context, method string, params any, headers map[string]string, out any) error {
	body := rpcRequest{ID: cl.reqID.Add(1), Method: method, Params: params}
	res, err := cl.c.Post(ctx, rpcPath, headers, body)
	if err != nil {
		return err
	}
	var rpc rpcResponse
	if err := res.Decode(&rpc); err != nil {
		return cexkit.NewError(cexkit.ErrExchange, exchangeID, string(res.Body))
	}
	if rpc.Error != nil {
		return errorMap.Dispatch(exchangeID, strconv.Itoa(rpc.Error.Code), rpc.Error.Message, res.Body)
	}
	if !res.OK() {
		return cexkit.NewError(cexkit.ErrExchange, exchangeID, string(res.Body))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(rpc.Result, out)
}

func (cl *Client) public(ctx context.Context, method string, params any, out any) error {
	return cl.call(ctx, method, params, nil, out)
}

// private fails fast: no credentials or an expired previously held
// token surface as ErrAuthentication before any network call. SignIn
// runs automatically only when no token was ever obtained.
func (cl *Client) private(ctx context.Context, method string, params any, out any) error {
	token, err := cl.sessionToken(ctx)
	if err != nil {
		return err
	}
	return cl.call(ctx, method, params, map[string]string{"Authorization": "Bearer " + token}, out)
}

func (cl *Client) sessionToken(ctx context.Context) (string, error) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.token != "" {
		if time.Until(cl.tokenExpiry) < tokenSafety {
			cl.token = ""
			return "", cexkit.NewError(cexkit.ErrAuthentication, exchangeID, "session token expired, sign in again")
		}
		return cl.token, nil
	}
	return cl.signInLocked(ctx)
}

// SignIn obtains a fresh session token. Private methods call it
// implicitly on first use.
func (cl *Client) SignIn(ctx context.Context) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	_, err := cl.signInLocked(ctx)
	return err
}

func (cl *Client) signInLocked(ctx context.Context) (string, error) {
	if cl.apiKey == "" || cl.secret == "" {
		return "", cexkit.NewError(cexkit.ErrAuthentication, exchangeID, "missing api credentials")
	}
	var res struct {
		Token            string `json:"token"`
		ExpiresInSeconds int64  `json:"expiresInSeconds"`
	}
	params := map[string]any{"accessKey": cl.apiKey, "secretKey": cl.secret}
	if err := cl.call(ctx, "Authorization.SignIn", params, nil, &res); err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", cexkit.NewError(cexkit.ErrAuthentication, exchangeID, "sign in returned no token")
	}
	cl.token = res.Token
	cl.tokenExpiry = time.Now().Add(time.Duration(res.ExpiresInSeconds) * time.Second)
	return cl.token, nil
}

type rawInstrument struct {
	ID               int64                `json:"id"`
	Type             string               `json:"type"` // CryptoPair
	Name             string               `json:"name"` // BTC/USD
	BaseCurrency     string               `json:"baseCurrency"`
	QuotedCurrency   string               `json:"quotedCurrency"`
	BaseCurrencyID   int64                `json:"baseCurrencyId"`
	QuotedCurrencyID int64                `json:"quotedCurrencyId"`
	AmountPrecision  int                  `json:"amountPrecision"`
	PricePrecision   int                  `json:"pricePrecision"`
	MinOrderQuantity *common.NumberObject `json:"minOrderQuantity"`
	Status           string               `json:"status"` // Open
}

func (cl *Client) FetchMarkets(ctx context.Context) ([]cexkit.Market, error) {
	var res struct {
		Instruments []json.RawMessage `json:"instruments"`
	}
	if err := cl.public(ctx, "AssetManagement.GetInstruments", map[string]any{}, &res); err != nil {
		return nil, err
	}
	out := make([]cexkit.Market, 0, len(res.Instruments))
	for _, raw := range res.Instruments {
		var in rawInstrument
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, cexkit.NewError(cexkit.ErrExchange, exchangeID, string(raw))
		}
		base := symbols.CommonCode(in.BaseCurrency)
		quote := symbols.CommonCode(in.QuotedCurrency)
		id := in.ID
		baseNum, quoteNum := in.BaseCurrencyID, in.QuotedCurrencyID
		m := cexkit.Market{
			ID:             strconv.FormatInt(in.ID, 10),
			Symbol:         base + "/" + quote,
			Base:           base,
			Quote:          quote,
			BaseID:         in.BaseCurrency,
			QuoteID:        in.QuotedCurrency,
			NumericID:      &id,
			BaseNumericID:  &baseNum,
			QuoteNumericID: &quoteNum,
			Active:         strings.EqualFold(in.Status, "Open"),
			Precision:      cexkit.Precision{Amount: in.AmountPrecision, Price: in.PricePrecision},
			Info:           raw,
		}
		if in.MinOrderQuantity != nil {
			min := common.ObjectToNumber(*in.MinOrderQuantity)
			m.Limits.Amount.Min = &min
		}
		out = append(out, m)
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
		return cexkit.Market{}, cexkit.NewError(cexkit.ErrBadRequest, exchangeID, "unknown symbol "+symbol)
	}
	return m, nil
}

type rawTicker struct {
	InstrumentID int64                `json:"instrumentId"`
	High         *common.NumberObject `json:"high"`
	Low          *common.NumberObject `json:"low"`
	LastPrice    *common.NumberObject `json:"lastPrice"`
	BestBid      *common.NumberObject `json:"bestBid"`
	BestAsk      *common.NumberObject `json:"bestAsk"`
	Volume24H    *common.NumberObject `json:"volume24h"`
	Time         int64                `json:"time"` // seconds
}

func (cl *Client) FetchTicker(ctx context.Context, symbol string) (cexkit.Ticker, error) {
	m, err := cl.Market(ctx, symbol)
	if err != nil {
		return cexkit.Ticker{}, err
	}
	var res struct {
		Tickers []json.RawMessage `json:"tickers"`
	}
	params := map[string]any{"instrumentIds": []int64{*m.NumericID}}
	if err := cl.public(ctx, "AssetManagement.GetTicker", params, &res); err != nil {
		return cexkit.Ticker{}, err
	}
	if len(res.Tickers) == 0 {
		return cexkit.Ticker{}, cexkit.NewError(cexkit.ErrExchange, exchangeID, "empty ticker response")
	}
	return parseTicker(res.Tickers[0], m)
}

func parseTicker(raw json.RawMessage, m cexkit.Market) (cexkit.Ticker, error) {
	var t rawTicker
	if err := json.Unmarshal(raw, &t); err != nil {
		return cexkit.Ticker{}, cexkit.NewError(cexkit.ErrExchange, exchangeID, string(raw))
	}
	return cexkit.Ticker{
		Symbol:     m.Symbol,
		Timestamp:  t.Time * 1000,
		Datetime:   common.ISO8601(t.Time * 1000),
		High:       objNum(t.High),
		Low:        objNum(t.Low),
		Bid:        objNum(t.BestBid),
		Ask:        objNum(t.BestAsk),
		Last:       objNum(t.LastPrice),
		Close:      objNum(t.LastPrice),
		BaseVolume: objNum(t.Volume24H),
		Info:       raw,
	}, nil
}

// objNum converts an optional wire number; missing stays nil, never zero.
func objNum(o *common.NumberObject) *float64 {
	if o == nil {
		return nil
	}
	f := common.ObjectToNumber(*o)
	return &f
}

func (cl *Client) FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]cexkit.OHLCV, error) {
	m, err := cl.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	resolution, ok := timeframes[timeframe]
	if !ok {
		return nil, cexkit.NewError(cexkit.ErrNotSupported, exchangeID, "timeframe "+timeframe)
	}
	to := time.Now().Unix()
	from := to - 86400
	if since > 0 {
		from = since / 1000
	}
	params := map[string]any{
		"instrumentId":  *m.NumericID,
		"resolution":    resolution,
		"timestampFrom": from,
		"timestampTo":   to,
	}
	// history comes back column-oriented, TradingView style
	var res struct {
		T []int64   `json:"t"`
		O []float64 `json:"o"`
		H []float64 `json:"h"`
		L []float64 `json:"l"`
		C []float64 `json:"c"`
		V []float64 `json:"v"`
	}
	if err := cl.public(ctx, "AssetManagement.History", params, &res); err != nil {
		return nil, err
	}
	n := len(res.T)
	out := make([]cexkit.OHLCV, 0, n)
	for i := 0; i < n; i++ {
		if i >= len(res.O) || i >= len(res.H) || i >= len(res.L) || i >= len(res.C) || i >= len(res.V) {
			break
		}
		out = append(out, cexkit.OHLCV{
			Timestamp: res.T[i] * 1000,
			Open:      res.O[i],
			High:      res.H[i],
			Low:       res.L[i],
			Close:     res.C[i],
			Volume:    res.V[i],
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (cl *Client) FetchBalance(ctx context.Context) (cexkit.Balances, error) {
	var res struct {
		Currencies []struct {
			CurrencyCode string               `json:"currencyCode"`
			Available    *common.NumberObject `json:"available"`
			Frozen       *common.NumberObject `json:"frozen"`
		} `json:"currencies"`
	}
	if err := cl.private(ctx, "Balance.Get", map[string]any{}, &res); err != nil {
		return cexkit.Balances{}, err
	}
	bals := cexkit.Balances{Currencies: make(map[string]cexkit.Balance, len(res.Currencies))}
	for _, c := range res.Currencies {
		free := objNum(c.Available)
		used := objNum(c.Frozen)
		bal := cexkit.Balance{Free: free, Used: used}
		if free != nil && used != nil {
			total := *free + *used
			bal.Total = &total
		}
		bals.Currencies[symbols.CommonCode(c.CurrencyCode)] = bal
	}
	return bals, nil
}

type rawOrder struct {
	ExternalOrderID string               `json:"externalOrderId"`
	InstrumentID    int64                `json:"instrumentId"`
	OrderType       int                  `json:"orderType"`
	Side            int                  `json:"side"`
	Price           *common.NumberObject `json:"price"`
	Quantity        *common.NumberObject `json:"quantity"`
	FilledQuantity  *common.NumberObject `json:"filledQuantity"`
	CreatedAt       int64                `json:"createdAt"` // seconds
	Status          string               `json:"status"`    // Open/Filled/Cancelled
}

func (cl *Client) parseOrder(raw json.RawMessage) (cexkit.Order, error) {
	var o rawOrder
	if err := json.Unmarshal(raw, &o); err != nil {
		return cexkit.Order{}, cexkit.NewError(cexkit.ErrExchange, exchangeID, string(raw))
	}
	side := cexkit.OrderSideBuy
	if o.Side == sideSell {
		side = cexkit.OrderSideSell
	}
	typ := cexkit.OrderTypeLimit
	if o.OrderType == orderTypeMarket {
		typ = cexkit.OrderTypeMarket
	}
	status := cexkit.OrderStatusOpen
	switch strings.ToLower(o.Status) {
	case "filled":
		status = cexkit.OrderStatusClosed
	case "cancelled", "canceled":
		status = cexkit.OrderStatusCanceled
	}
	ord := cexkit.Order{
		ID:        o.ExternalOrderID,
		Type:      typ,
		Side:      side,
		Status:    status,
		Price:     objNum(o.Price),
		Amount:    objNum(o.Quantity),
		Filled:    objNum(o.FilledQuantity),
		Timestamp: o.CreatedAt * 1000,
		Info:      raw,
	}
	if ord.Amount != nil && ord.Filled != nil {
		rem := *ord.Amount - *ord.Filled
		ord.Remaining = &rem
	}
	if m, ok := cl.markets.NativeID(strconv.FormatInt(o.InstrumentID, 10)); ok {
		ord.Symbol = m.Symbol
	}
	return ord, nil
}

func (cl *Client) CreateOrder(ctx context.Context, symbol string, typ cexkit.OrderType, side cexkit.OrderSide, amount float64, price *float64, params cexkit.Params) (cexkit.Order, error) {
	m, err := cl.Market(ctx, symbol)
	if err != nil {
		return cexkit.Order{}, err
	}
	wireType := orderTypeLimit
	if typ == cexkit.OrderTypeMarket {
		wireType = orderTypeMarket
	} else if price == nil {
		return cexkit.Order{}, cexkit.NewError(cexkit.ErrInvalidOrder, exchangeID, "limit order requires a price")
	}
	wireSide := sideBuy
	if side == cexkit.OrderSideSell {
		wireSide = sideSell
	}
	p := map[string]any{
		"instrumentId": *m.NumericID,
		"orderType":    wireType,
		"side":         wireSide,
		"quantity":     common.NumberToObject(amount),
	}
	if price != nil {
		p["price"] = common.NumberToObject(*price)
	}
	var res struct {
		ExternalOrderID string `json:"externalOrderId"`
	}
	if err := cl.private(ctx, "OrderManagement.Create", p, &res); err != nil {
		return cexkit.Order{}, err
	}
	ord := cexkit.Order{
		ID:     res.ExternalOrderID,
		Symbol: m.Symbol,
		Type:   typ,
		Side:   side,
		Status: cexkit.OrderStatusOpen,
		Amount: &amount,
		Price:  price,
	}
	return ord, nil
}

func (cl *Client) CancelOrder(ctx context.Context, id, symbol string) (cexkit.Order, error) {
	params := map[string]any{"externalOrderId": id}
	if err := cl.private(ctx, "OrderManagement.Cancel", params, nil); err != nil {
		return cexkit.Order{}, err
	}
	return cexkit.Order{ID: id, Symbol: symbol, Status: cexkit.OrderStatusCanceled}, nil
}

func (cl *Client) FetchOpenOrders(ctx context.Context, symbol string, since int64, limit int) ([]cexkit.Order, error) {
	return cl.fetchOrderList(ctx, "OrderManagement.OpenOrders", symbol, since, limit)
}

func (cl *Client) FetchClosedOrders(ctx context.Context, symbol string, since int64, limit int) ([]cexkit.Order, error) {
	return cl.fetchOrderList(ctx, "OrderManagement.OrderHistory", symbol, since, limit)
}

func (cl *Client) fetchOrderList(ctx context.Context, method, symbol string, since int64, limit int) ([]cexkit.Order, error) {
	if _, err := cl.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	params := map[string]any{}
	if symbol != "" {
		m, err := cl.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		params["instrumentId"] = *m.NumericID
	}
	var res struct {
		Orders []json.RawMessage `json:"orders"`
	}
	if err := cl.private(ctx, method, params, &res); err != nil {
		return nil, err
	}
	out := make([]cexkit.Order, 0, len(res.Orders))
	for _, raw := range res.Orders {
		ord, err := cl.parseOrder(raw)
		if err != nil {
			continue
		}
		if since > 0 && ord.Timestamp < since {
			continue
		}
		out = append(out, ord)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

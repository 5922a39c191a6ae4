// Package gemini implements the Gemini REST API (v1 endpoints plus the
// v2 candles). Private requests carry a base64 JSON payload signed with
// HMAC-SHA384.
package gemini

import (
	"context"
	"crypto/sha512"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cexkit/cexkit"
	"github.com/cexkit/cexkit/exchange/common"
	"github.com/cexkit/cexkit/internal/symbols"
)

const (
	exchangeID = "gemini"
	baseURL    = "https://api.gemini.com"
)

var timeframes = map[string]string{
	"1m":  "1m",
	"5m":  "5m",
	"15m": "15m",
	"30m": "30m",
	"1h":  "1hr",
	"6h":  "6hr",
	"1d":  "1day",
}

var errorMap = common.ErrorMap{
	Exact: map[string]error{
		"InvalidJson":            cexkit.ErrBadRequest,
		"InvalidNonce":           cexkit.ErrInvalidNonce,
		"InvalidOrderType":       cexkit.ErrInvalidOrder,
		"InvalidPrice":           cexkit.ErrInvalidOrder,
		"InvalidQuantity":        cexkit.ErrInvalidOrder,
		"InvalidSide":            cexkit.ErrInvalidOrder,
		"InvalidSymbol":          cexkit.ErrBadRequest,
		"InvalidSignature":       cexkit.ErrAuthentication,
		"InvalidApiKey":          cexkit.ErrAuthentication,
		"MissingApikeyHeader":    cexkit.ErrAuthentication,
		"MissingPayloadHeader":   cexkit.ErrAuthentication,
		"MissingSignatureHeader": cexkit.ErrAuthentication,
		"InsufficientFunds":      cexkit.ErrInsufficientFunds,
		"OrderNotFound":          cexkit.ErrOrderNotFound,
		"RateLimit":              cexkit.ErrDDoSProtection,
		"System":                 cexkit.ErrExchangeNotAvailable,
		"Maintenance":            cexkit.ErrExchangeNotAvailable,
		"NotAcceptingOrders":     cexkit.ErrExchangeNotAvailable,
	},
	Broad: []common.BroadRule{
		{Substr: "currently undergoing maintenance", Err: cexkit.ErrExchangeNotAvailable},
		{Substr: "investigating technical issues", Err: cexkit.ErrExchangeNotAvailable},
	},
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
func (*Client) Name() string { return "Gemini" }

func (*Client) Has() cexkit.Capabilities {
	return cexkit.Capabilities{
		"fetchMarkets":         true,
		"fetchTicker":          true,
		"fetchOrderBook":       true,
		"fetchTrades":          true,
		"fetchOHLCV":           true,
		"fetchBalance":         true,
		"createOrder":          true,
		"cancelOrder":          true,
		"fetchOrder":           true,
		"fetchOpenOrders":      true,
		"fetchMyTrades":        true,
		"fetchTransactions":    true,
		"fetchDeposits":        true,
		"fetchWithdrawals":     true,
		"withdraw":             true,
		"createDepositAddress": true,
	}
}

type apiError struct {
	Result  string `json:"result"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (cl *Client) dispatch(res *common.Response) error {
	var e apiError
	_ = json.Unmarshal(res.Body, &e)
	return errorMap.Dispatch(exchangeID, e.Reason, e.Message, res.Body)
}

func (cl *Client) public(ctx context.Context, path string, out any) error {
	res, err := cl.c.Get(ctx, path, nil, nil)
	if err != nil {
		return err
	}
	if !res.OK() {
		return cl.dispatch(res)
	}
	return res.Decode(out)
}

// private posts an empty body; the request travels base64-encoded in
// X-GEMINI-PAYLOAD with its HMAC-SHA384 in X-GEMINI-SIGNATURE.
func (cl *Client) private(ctx context.Context, path string, params map[string]any, out any) error {
	if cl.apiKey == "" || cl.secret == "" {
		return cexkit.NewError(cexkit.ErrAuthentication, exchangeID, "missing api credentials")
	}
	payload := map[string]any{
		"request": path,
		"nonce":   cl.c.Nonce(),
	}
	for k, v := range params {
		payload[k] = v
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b64 := common.Base64Payload(raw)
	headers := map[string]string{
		"Content-Type":       "text/plain",
		"X-GEMINI-APIKEY":    cl.apiKey,
		"X-GEMINI-PAYLOAD":   b64,
		"X-GEMINI-SIGNATURE": common.HexSignature(sha512.New384, cl.secret, b64),
		"Cache-Control":      "no-cache",
	}
	res, err := cl.c.Post(ctx, path, headers, nil)
	if err != nil {
		return err
	}
	if !res.OK() {
		return cl.dispatch(res)
	}
	if out == nil {
		return nil
	}
	return res.Decode(out)
}

func (cl *Client) FetchMarkets(ctx context.Context) ([]cexkit.Market, error) {
	var ids []string
	if err := cl.public(ctx, "/v1/symbols", &ids); err != nil {
		return nil, err
	}
	out := make([]cexkit.Market, 0, len(ids))
	for _, id := range ids {
		base, quote, ok := symbols.Split(id, symbols.StyleConcat)
		if !ok {
			// unknown quote suffix, venue added a pair we cannot place
			continue
		}
		info, _ := json.Marshal(id)
		out = append(out, cexkit.Market{
			ID:        id,
			Symbol:    symbols.Pair(base, quote),
			Base:      symbols.CommonCode(base),
			Quote:     symbols.CommonCode(quote),
			BaseID:    strings.ToLower(base),
			QuoteID:   strings.ToLower(quote),
			Active:    true,
			Precision: cexkit.Precision{Amount: 8, Price: 8},
			Taker:     0.0035,
			Maker:     0.001,
			Info:      info,
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
		return cexkit.Market{}, cexkit.NewError(cexkit.ErrBadRequest, exchangeID, "unknown symbol "+symbol)
	}
	return m, nil
}

func (cl *Client) FetchTicker(ctx context.Context, symbol string) (cexkit.Ticker, error) {
	m, err := cl.Market(ctx, symbol)
	if err != nil {
		return cexkit.Ticker{}, err
	}
	var raw json.RawMessage
	if err := cl.public(ctx, "/v1/pubticker/"+m.ID, &raw); err != nil {
		return cexkit.Ticker{}, err
	}
	return parseTicker(raw, m)
}

func parseTicker(raw json.RawMessage, m cexkit.Market) (cexkit.Ticker, error) {
	var t struct {
		Bid    string         `json:"bid"`
		Ask    string         `json:"ask"`
		Last   string         `json:"last"`
		Volume map[string]any `json:"volume"`
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		return cexkit.Ticker{}, cexkit.NewError(cexkit.ErrExchange, exchangeID, string(raw))
	}
	tk := cexkit.Ticker{
		Symbol: m.Symbol,
		Bid:    common.Float(t.Bid),
		Ask:    common.Float(t.Ask),
		Last:   common.Float(t.Last),
		Close:  common.Float(t.Last),
		Info:   raw,
	}
	// the volume object is keyed by the native currency codes and also
	// carries the snapshot timestamp
	if ts := common.FloatFromAny(t.Volume["timestamp"]); ts != nil {
		tk.Timestamp = int64(*ts)
		tk.Datetime = common.ISO8601(tk.Timestamp)
	}
	for k, v := range t.Volume {
		switch strings.ToUpper(k) {
		case m.Base:
			tk.BaseVolume = common.FloatFromAny(v)
		case m.Quote:
			tk.QuoteVolume = common.FloatFromAny(v)
		}
	}
	return tk, nil
}

func (cl *Client) FetchOrderBook(ctx context.Context, symbol string, limit int) (cexkit.OrderBook, error) {
	m, err := cl.Market(ctx, symbol)
	if err != nil {
		return cexkit.OrderBook{}, err
	}
	path := "/v1/book/" + m.ID
	if limit > 0 {
		// the venue caps both sides with the same parameter
		path += "?limit_bids=" + strconv.Itoa(limit) + "&limit_asks=" + strconv.Itoa(limit)
	}
	var book struct {
		Bids []bookEntry `json:"bids"`
		Asks []bookEntry `json:"asks"`
	}
	if err := cl.public(ctx, path, &book); err != nil {
		return cexkit.OrderBook{}, err
	}
	ob := cexkit.OrderBook{Symbol: m.Symbol}
	for _, e := range book.Bids {
		if lv, ok := e.level(); ok {
			ob.Bids = append(ob.Bids, lv)
		}
	}
	for _, e := range book.Asks {
		if lv, ok := e.level(); ok {
			ob.Asks = append(ob.Asks, lv)
		}
	}
	return ob, nil
}

type bookEntry struct {
	Price  string `json:"price"`
	Amount string `json:"amount"`
}

func (e bookEntry) level() (cexkit.BookLevel, bool) {
	p, a := common.Float(e.Price), common.Float(e.Amount)
	if p == nil || a == nil {
		return cexkit.BookLevel{}, false
	}
	return cexkit.BookLevel{Price: *p, Amount: *a}, true
}

type rawTrade struct {
	Timestampms int64  `json:"timestampms"`
	TID         int64  `json:"tid"`
	OrderID     string `json:"order_id"`
	Price       string `json:"price"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	FeeCurrency string `json:"fee_currency"`
	FeeAmount   string `json:"fee_amount"`
}

func (cl *Client) parseTrade(raw json.RawMessage, m cexkit.Market) (cexkit.Trade, error) {
	var t rawTrade
	if err := json.Unmarshal(raw, &t); err != nil {
		return cexkit.Trade{}, cexkit.NewError(cexkit.ErrExchange, exchangeID, string(raw))
	}
	tr := cexkit.Trade{
		ID:        strconv.FormatInt(t.TID, 10),
		OrderID:   t.OrderID,
		Symbol:    m.Symbol,
		Timestamp: t.Timestampms,
		Side:      cexkit.OrderSide(strings.ToLower(t.Type)),
		Price:     common.Float(t.Price),
		Amount:    common.Float(t.Amount),
		Info:      raw,
	}
	if tr.Price != nil && tr.Amount != nil {
		cost := *tr.Price * *tr.Amount
		tr.Cost = &cost
	}
	if fee := common.Float(t.FeeAmount); fee != nil {
		tr.Fee = &cexkit.Fee{Currency: symbols.CommonCode(t.FeeCurrency), Cost: fee}
	}
	return tr, nil
}

func (cl *Client) FetchTrades(ctx context.Context, symbol string, since int64, limit int) ([]cexkit.Trade, error) {
	m, err := cl.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	if err := cl.public(ctx, "/v1/trades/"+m.ID, &raws); err != nil {
		return nil, err
	}
	return cl.collectTrades(raws, m, since, limit)
}

func (cl *Client) collectTrades(raws []json.RawMessage, m cexkit.Market, since int64, limit int) ([]cexkit.Trade, error) {
	out := make([]cexkit.Trade, 0, len(raws))
	for _, raw := range raws {
		tr, err := cl.parseTrade(raw, m)
		if err != nil {
			continue
		}
		if since > 0 && tr.Timestamp < since {
			continue
		}
		out = append(out, tr)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (cl *Client) FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]cexkit.OHLCV, error) {
	m, err := cl.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	tf, ok := timeframes[timeframe]
	if !ok {
		return nil, cexkit.NewError(cexkit.ErrNotSupported, exchangeID, "timeframe "+timeframe)
	}
	var rows [][]float64
	if err := cl.public(ctx, "/v2/candles/"+m.ID+"/"+tf, &rows); err != nil {
		return nil, err
	}
	out := make([]cexkit.OHLCV, 0, len(rows))
	for _, r := range rows {
		if len(r) < 6 {
			continue
		}
		c := cexkit.OHLCV{
			Timestamp: int64(r[0]),
			Open:      r[1],
			High:      r[2],
			Low:       r[3],
			Close:     r[4],
			Volume:    r[5],
		}
		if since > 0 && c.Timestamp < since {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (cl *Client) FetchBalance(ctx context.Context) (cexkit.Balances, error) {
	var raws []json.RawMessage
	if err := cl.private(ctx, "/v1/balances", nil, &raws); err != nil {
		return cexkit.Balances{}, err
	}
	bals := cexkit.Balances{Currencies: make(map[string]cexkit.Balance, len(raws))}
	for _, raw := range raws {
		var b struct {
			Currency  string `json:"currency"`
			Amount    string `json:"amount"`
			Available string `json:"available"`
		}
		if err := json.Unmarshal(raw, &b); err != nil {
			continue
		}
		bal := cexkit.Balance{
			Free:  common.Float(b.Available),
			Total: common.Float(b.Amount),
		}
		if bal.Free != nil && bal.Total != nil {
			used := *bal.Total - *bal.Free
			bal.Used = &used
		}
		bals.Currencies[symbols.CommonCode(b.Currency)] = bal
	}
	return bals, nil
}

type rawOrder struct {
	OrderID         string   `json:"order_id"`
	ClientOrderID   string   `json:"client_order_id"`
	Symbol          string   `json:"symbol"`
	Price           string   `json:"price"`
	AvgExecutionPrc string   `json:"avg_execution_price"`
	Side            string   `json:"side"`
	Type            string   `json:"type"`
	Timestampms     int64    `json:"timestampms"`
	IsLive          bool     `json:"is_live"`
	IsCancelled     bool     `json:"is_cancelled"`
	OriginalAmount  string   `json:"original_amount"`
	ExecutedAmount  string   `json:"executed_amount"`
	RemainingAmount string   `json:"remaining_amount"`
	Options         []string `json:"options"`
}

func (cl *Client) parseOrder(raw json.RawMessage) (cexkit.Order, error) {
	var o rawOrder
	if err := json.Unmarshal(raw, &o); err != nil {
		return cexkit.Order{}, cexkit.NewError(cexkit.ErrExchange, exchangeID, string(raw))
	}
	status := cexkit.OrderStatusClosed
	switch {
	case o.IsCancelled:
		status = cexkit.OrderStatusCanceled
	case o.IsLive:
		status = cexkit.OrderStatusOpen
	}
	typ := cexkit.OrderTypeLimit
	if strings.Contains(o.Type, "market") {
		typ = cexkit.OrderTypeMarket
	}
	ord := cexkit.Order{
		ID:            o.OrderID,
		ClientOrderID: o.ClientOrderID,
		Type:          typ,
		Side:          cexkit.OrderSide(o.Side),
		Status:        status,
		Price:         common.Float(o.Price),
		Amount:        common.Float(o.OriginalAmount),
		Filled:        common.Float(o.ExecutedAmount),
		Remaining:     common.Float(o.RemainingAmount),
		Timestamp:     o.Timestampms,
		Info:          raw,
	}
	if m, ok := cl.markets.NativeID(o.Symbol); ok {
		ord.Symbol = m.Symbol
	}
	if ord.Price != nil && ord.Filled != nil {
		cost := *ord.Price * *ord.Filled
		ord.Cost = &cost
	}
	return ord, nil
}

func (cl *Client) CreateOrder(ctx context.Context, symbol string, typ cexkit.OrderType, side cexkit.OrderSide, amount float64, price *float64, params cexkit.Params) (cexkit.Order, error) {
	if typ != cexkit.OrderTypeLimit {
		return cexkit.Order{}, cexkit.NewError(cexkit.ErrNotSupported, exchangeID, "only limit orders are supported")
	}
	if price == nil {
		return cexkit.Order{}, cexkit.NewError(cexkit.ErrInvalidOrder, exchangeID, "limit order requires a price")
	}
	m, err := cl.Market(ctx, symbol)
	if err != nil {
		return cexkit.Order{}, err
	}
	clientOrderID, _ := params["clientOrderId"].(string)
	if clientOrderID == "" {
		clientOrderID = uuid.NewString()
	}
	body := map[string]any{
		"client_order_id": clientOrderID,
		"symbol":          m.ID,
		"amount":          common.AmountToPrecision(amount, m.Precision.Amount),
		"price":           common.PriceToPrecision(*price, m.Precision.Price),
		"side":            string(side),
		"type":            "exchange limit",
	}
	if opts, ok := params["options"].([]string); ok {
		body["options"] = opts
	}
	var raw json.RawMessage
	if err := cl.private(ctx, "/v1/order/new", body, &raw); err != nil {
		return cexkit.Order{}, err
	}
	return cl.parseOrder(raw)
}

func (cl *Client) CancelOrder(ctx context.Context, id, symbol string) (cexkit.Order, error) {
	var raw json.RawMessage
	if err := cl.private(ctx, "/v1/order/cancel", map[string]any{"order_id": id}, &raw); err != nil {
		return cexkit.Order{}, err
	}
	return cl.parseOrder(raw)
}

func (cl *Client) FetchOrder(ctx context.Context, id, symbol string) (cexkit.Order, error) {
	if _, err := cl.LoadMarkets(ctx, false); err != nil {
		return cexkit.Order{}, err
	}
	var raw json.RawMessage
	if err := cl.private(ctx, "/v1/order/status", map[string]any{"order_id": id}, &raw); err != nil {
		return cexkit.Order{}, err
	}
	return cl.parseOrder(raw)
}

func (cl *Client) FetchOpenOrders(ctx context.Context, symbol string, since int64, limit int) ([]cexkit.Order, error) {
	if _, err := cl.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	if err := cl.private(ctx, "/v1/orders", nil, &raws); err != nil {
		return nil, err
	}
	out := make([]cexkit.Order, 0, len(raws))
	for _, raw := range raws {
		ord, err := cl.parseOrder(raw)
		if err != nil {
			continue
		}
		if symbol != "" && ord.Symbol != symbol {
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

func (cl *Client) FetchMyTrades(ctx context.Context, symbol string, since int64, limit int) ([]cexkit.Trade, error) {
	if symbol == "" {
		return nil, cexkit.NewError(cexkit.ErrBadRequest, exchangeID, "fetchMyTrades requires a symbol")
	}
	m, err := cl.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	params := map[string]any{"symbol": m.ID}
	if limit > 0 {
		params["limit_trades"] = limit
	}
	if since > 0 {
		params["timestamp"] = since / 1000
	}
	var raws []json.RawMessage
	if err := cl.private(ctx, "/v1/mytrades", params, &raws); err != nil {
		return nil, err
	}
	return cl.collectTrades(raws, m, since, limit)
}

type rawTransfer struct {
	Type        string `json:"type"` // Deposit / Withdrawal
	Status      string `json:"status"`
	Timestampms int64  `json:"timestampms"`
	EID         int64  `json:"eid"`
	Currency    string `json:"currency"`
	Amount      string `json:"amount"`
	TxHash      string `json:"txHash"`
	Destination string `json:"destination"`
	Purpose     string `json:"purpose"`
}

func parseTransfer(raw json.RawMessage) (cexkit.Transaction, error) {
	var t rawTransfer
	if err := json.Unmarshal(raw, &t); err != nil {
		return cexkit.Transaction{}, cexkit.NewError(cexkit.ErrExchange, exchangeID, string(raw))
	}
	typ := cexkit.TransactionDeposit
	if strings.EqualFold(t.Type, "Withdrawal") {
		typ = cexkit.TransactionWithdrawal
	}
	// Advanced and Complete both mean the funds moved
	status := cexkit.TransactionPending
	switch t.Status {
	case "Advanced", "Complete":
		status = cexkit.TransactionOK
	}
	return cexkit.Transaction{
		ID:        strconv.FormatInt(t.EID, 10),
		TxID:      t.TxHash,
		Currency:  symbols.CommonCode(t.Currency),
		Amount:    common.Float(t.Amount),
		Address:   t.Destination,
		Type:      typ,
		Status:    status,
		Timestamp: t.Timestampms,
		Info:      raw,
	}, nil
}

func (cl *Client) FetchTransactions(ctx context.Context, code string, since int64, limit int) ([]cexkit.Transaction, error) {
	params := map[string]any{}
	if since > 0 {
		params["timestamp"] = since / 1000
	}
	if limit > 0 {
		params["limit_transfers"] = limit
	}
	var raws []json.RawMessage
	if err := cl.private(ctx, "/v1/transfers", params, &raws); err != nil {
		return nil, err
	}
	out := make([]cexkit.Transaction, 0, len(raws))
	for _, raw := range raws {
		tx, err := parseTransfer(raw)
		if err != nil {
			continue
		}
		if code != "" && tx.Currency != symbols.CommonCode(code) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (cl *Client) FetchDeposits(ctx context.Context, code string, since int64, limit int) ([]cexkit.Transaction, error) {
	return cl.filterTransactions(ctx, code, since, limit, cexkit.TransactionDeposit)
}

func (cl *Client) FetchWithdrawals(ctx context.Context, code string, since int64, limit int) ([]cexkit.Transaction, error) {
	return cl.filterTransactions(ctx, code, since, limit, cexkit.TransactionWithdrawal)
}

func (cl *Client) filterTransactions(ctx context.Context, code string, since int64, limit int, typ cexkit.TransactionType) ([]cexkit.Transaction, error) {
	all, err := cl.FetchTransactions(ctx, code, since, 0)
	if err != nil {
		return nil, err
	}
	out := make([]cexkit.Transaction, 0, len(all))
	for _, tx := range all {
		if tx.Type != typ {
			continue
		}
		out = append(out, tx)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (cl *Client) Withdraw(ctx context.Context, code string, amount float64, address, tag string, params cexkit.Params) (cexkit.Transaction, error) {
	if err := cexkit.CheckAddress(exchangeID, address); err != nil {
		return cexkit.Transaction{}, err
	}
	var res struct {
		TxHash       string `json:"txHash"`
		WithdrawalID string `json:"withdrawalId"`
	}
	body := map[string]any{
		"address": address,
		"amount":  strconv.FormatFloat(amount, 'f', -1, 64),
	}
	if err := cl.private(ctx, "/v1/withdraw/"+strings.ToLower(code), body, &res); err != nil {
		return cexkit.Transaction{}, err
	}
	return cexkit.Transaction{
		ID:       res.WithdrawalID,
		TxID:     res.TxHash,
		Currency: symbols.CommonCode(code),
		Amount:   &amount,
		Address:  address,
		Type:     cexkit.TransactionWithdrawal,
		Status:   cexkit.TransactionPending,
	}, nil
}

func (cl *Client) CreateDepositAddress(ctx context.Context, code string) (cexkit.DepositAddress, error) {
	var res struct {
		Currency string `json:"currency"`
		Address  string `json:"address"`
		Label    string `json:"label"`
	}
	if err := cl.private(ctx, "/v1/deposit/"+strings.ToLower(code)+"/newAddress", nil, &res); err != nil {
		return cexkit.DepositAddress{}, err
	}
	return cexkit.DepositAddress{
		Currency: symbols.CommonCode(code),
		Address:  res.Address,
	}, nil
}

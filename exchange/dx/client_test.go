package dx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cexkit/cexkit"
	cl "github.com/cexkit/cexkit/exchange/dx"
)

const instrumentsResult = `{"instruments":[
	{"id":500328,"type":"CryptoPair","name":"BTC/USD","baseCurrency":"BTC","quotedCurrency":"USD",
	 "baseCurrencyId":500004,"quotedCurrencyId":500000,"amountPrecision":4,"pricePrecision":2,
	 "minOrderQuantity":{"value":1,"decimals":3},"status":"Open"},
	{"id":500329,"type":"CryptoPair","name":"ETH/USD","baseCurrency":"ETH","quotedCurrency":"USD",
	 "baseCurrencyId":500005,"quotedCurrencyId":500000,"amountPrecision":2,"pricePrecision":2,
	 "status":"Closed"}
]}`

type rpcCall struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// rpcServer dispatches on the JSON-RPC method field; everything goes to "/".
func rpcServer(t *testing.T, handlers map[string]func(call rpcCall, auth string) (result string, rpcErr string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call rpcCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Errorf("bad rpc body: %v", err)
			return
		}
		h, ok := handlers[call.Method]
		if !ok {
			t.Errorf("unexpected method %q", call.Method)
			return
		}
		result, rpcErr := h(call, r.Header.Get("Authorization"))
		if rpcErr != "" {
			w.Write([]byte(`{"id":1,"error":` + rpcErr + `}`))
			return
		}
		w.Write([]byte(`{"id":1,"result":` + result + `}`))
	}))
}

func instrumentsHandler(call rpcCall, auth string) (string, string) {
	return instrumentsResult, ""
}

func TestLoadMarkets_NumericIDs(t *testing.T) {
	ts := rpcServer(t, map[string]func(rpcCall, string) (string, string){
		"AssetManagement.GetInstruments": instrumentsHandler,
	})
	defer ts.Close()

	c := cl.New(cl.Config{BaseURL: ts.URL})
	ms, err := c.LoadMarkets(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	m := ms["BTC/USD"]
	if m.ID != "500328" || m.NumericID == nil || *m.NumericID != 500328 {
		t.Fatalf("numeric id lost: %+v", m)
	}
	if m.BaseNumericID == nil || *m.BaseNumericID != 500004 {
		t.Fatalf("base numeric id lost: %+v", m)
	}
	// minOrderQuantity {1,3} is 0.001
	if m.Limits.Amount.Min == nil || *m.Limits.Amount.Min != 0.001 {
		t.Fatalf("min quantity wrong: %+v", m.Limits)
	}
	if m.Precision.Amount != 4 || m.Precision.Price != 2 {
		t.Fatalf("precision wrong: %+v", m.Precision)
	}
	if ms["ETH/USD"].Active {
		t.Fatal("closed instrument marked active")
	}
}

func TestFetchTicker_NumberObjects(t *testing.T) {
	ts := rpcServer(t, map[string]func(rpcCall, string) (string, string){
		"AssetManagement.GetInstruments": instrumentsHandler,
		"AssetManagement.GetTicker": func(call rpcCall, auth string) (string, string) {
			var p struct {
				InstrumentIDs []int64 `json:"instrumentIds"`
			}
			if err := json.Unmarshal(call.Params, &p); err != nil || len(p.InstrumentIDs) != 1 || p.InstrumentIDs[0] != 500328 {
				return "", `{"code":4001,"message":"bad instrument"}`
			}
			return `{"tickers":[{"instrumentId":500328,
				"high":{"value":401050,"decimals":2},
				"low":{"value":391025,"decimals":2},
				"lastPrice":{"value":39977,"decimals":1},
				"bestBid":{"value":399750,"decimals":2},
				"bestAsk":{"value":399990,"decimals":2},
				"volume24h":{"value":1250,"decimals":1},
				"time":1548827740}]}`, ""
		},
	})
	defer ts.Close()

	c := cl.New(cl.Config{BaseURL: ts.URL})
	tk, err := c.FetchTicker(context.Background(), "BTC/USD")
	if err != nil {
		t.Fatal(err)
	}
	if tk.High == nil || *tk.High != 4010.50 {
		t.Fatalf("high wrong: %+v", tk)
	}
	if tk.Last == nil || *tk.Last != 3997.7 {
		t.Fatalf("last wrong: %+v", tk)
	}
	if tk.BaseVolume == nil || *tk.BaseVolume != 125.0 {
		t.Fatalf("volume wrong: %+v", tk)
	}
	if tk.Timestamp != 1548827740000 {
		t.Fatalf("timestamp wrong: %d", tk.Timestamp)
	}
	if tk.Datetime != "2019-01-30T05:55:40Z" {
		t.Fatalf("datetime wrong: %q", tk.Datetime)
	}
}

func TestSignIn_TokenAttachedToPrivateCalls(t *testing.T) {
	signIns := 0
	ts := rpcServer(t, map[string]func(rpcCall, string) (string, string){
		"Authorization.SignIn": func(call rpcCall, auth string) (string, string) {
			signIns++
			var p struct {
				AccessKey string `json:"accessKey"`
				SecretKey string `json:"secretKey"`
			}
			if err := json.Unmarshal(call.Params, &p); err != nil || p.AccessKey != "key" || p.SecretKey != "secret" {
				return "", `{"code":3005,"message":"bad credentials"}`
			}
			return `{"token":"tok-123","expiresInSeconds":3600}`, ""
		},
		"Balance.Get": func(call rpcCall, auth string) (string, string) {
			if auth != "Bearer tok-123" {
				return "", `{"code":3005,"message":"missing token"}`
			}
			return `{"currencies":[
				{"currencyCode":"BTC","available":{"value":15,"decimals":1},"frozen":{"value":5,"decimals":1}},
				{"currencyCode":"USD","available":{"value":100000,"decimals":2}}
			]}`, ""
		},
	})
	defer ts.Close()

	c := cl.New(cl.Config{APIKey: "key", Secret: "secret", BaseURL: ts.URL})
	bals, err := c.FetchBalance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	btc := bals.Currencies["BTC"]
	if btc.Free == nil || *btc.Free != 1.5 || btc.Used == nil || *btc.Used != 0.5 {
		t.Fatalf("bad balance: %+v", btc)
	}
	if btc.Total == nil || *btc.Total != 2.0 {
		t.Fatalf("total wrong: %+v", btc)
	}
	// frozen missing: Used and Total stay nil
	usd := bals.Currencies["USD"]
	if usd.Used != nil || usd.Total != nil {
		t.Fatalf("absent fields fabricated: %+v", usd)
	}

	// token reused, not re-obtained
	if _, err := c.FetchBalance(context.Background()); err != nil {
		t.Fatal(err)
	}
	if signIns != 1 {
		t.Fatalf("sign in ran %d times", signIns)
	}
}

func TestExpiredToken_FailsFastWithoutNetwork(t *testing.T) {
	calls := 0
	ts := rpcServer(t, map[string]func(rpcCall, string) (string, string){
		"Authorization.SignIn": func(call rpcCall, auth string) (string, string) {
			calls++
			// already inside the refusal window
			return `{"token":"tok-short","expiresInSeconds":10}`, ""
		},
	})
	defer ts.Close()

	c := cl.New(cl.Config{APIKey: "key", Secret: "secret", BaseURL: ts.URL})
	if err := c.SignIn(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("sign in ran %d times", calls)
	}

	_, err := c.FetchBalance(context.Background())
	if !errors.Is(err, cexkit.ErrAuthentication) {
		t.Fatalf("want auth error for stale token, got %v", err)
	}
	// the expired token must not trigger an implicit re-sign-in
	if calls != 1 {
		t.Fatalf("implicit sign in after expiry, %d calls", calls)
	}
}

func TestMissingCredentials_NoNetwork(t *testing.T) {
	c := cl.New(cl.Config{BaseURL: "http://127.0.0.1:1"})
	_, err := c.FetchBalance(context.Background())
	if !errors.Is(err, cexkit.ErrAuthentication) {
		t.Fatalf("want auth error, got %v", err)
	}
}

func TestRPCErrorCodes(t *testing.T) {
	code := `{"code":4002,"message":"Insufficient balance"}`
	ts := rpcServer(t, map[string]func(rpcCall, string) (string, string){
		"AssetManagement.GetInstruments": instrumentsHandler,
		"Authorization.SignIn": func(call rpcCall, auth string) (string, string) {
			return `{"token":"tok","expiresInSeconds":3600}`, ""
		},
		"OrderManagement.Create": func(call rpcCall, auth string) (string, string) {
			return "", code
		},
	})
	defer ts.Close()

	c := cl.New(cl.Config{APIKey: "key", Secret: "secret", BaseURL: ts.URL})
	price := 4000.0
	_, err := c.CreateOrder(context.Background(), "BTC/USD", cexkit.OrderTypeLimit, cexkit.OrderSideBuy, 0.5, &price, nil)
	if !errors.Is(err, cexkit.ErrInsufficientFunds) {
		t.Fatalf("want insufficient funds, got %v", err)
	}

	code = `{"code":9999,"message":"mystery failure"}`
	_, err = c.CreateOrder(context.Background(), "BTC/USD", cexkit.OrderTypeLimit, cexkit.OrderSideBuy, 0.5, &price, nil)
	if !errors.Is(err, cexkit.ErrExchange) {
		t.Fatalf("want generic fallback, got %v", err)
	}
}

func TestCreateOrder_WireEnumsAndNumberObjects(t *testing.T) {
	ts := rpcServer(t, map[string]func(rpcCall, string) (string, string){
		"AssetManagement.GetInstruments": instrumentsHandler,
		"Authorization.SignIn": func(call rpcCall, auth string) (string, string) {
			return `{"token":"tok","expiresInSeconds":3600}`, ""
		},
		"OrderManagement.Create": func(call rpcCall, auth string) (string, string) {
			var p struct {
				InstrumentID int64 `json:"instrumentId"`
				OrderType    int   `json:"orderType"`
				Side         int   `json:"side"`
				Quantity     struct {
					Value    int64 `json:"value"`
					Decimals int32 `json:"decimals"`
				} `json:"quantity"`
			}
			if err := json.Unmarshal(call.Params, &p); err != nil {
				return "", `{"code":4001,"message":"bad params"}`
			}
			if p.InstrumentID != 500328 || p.OrderType != 2 || p.Side != 1 {
				return "", `{"code":4001,"message":"bad enums"}`
			}
			// 0.5 travels as {5,1}
			if p.Quantity.Value != 5 || p.Quantity.Decimals != 1 {
				return "", `{"code":4001,"message":"bad quantity"}`
			}
			return `{"externalOrderId":"ord-77"}`, ""
		},
	})
	defer ts.Close()

	c := cl.New(cl.Config{APIKey: "key", Secret: "secret", BaseURL: ts.URL})
	price := 4000.0
	o, err := c.CreateOrder(context.Background(), "BTC/USD", cexkit.OrderTypeLimit, cexkit.OrderSideSell, 0.5, &price, nil)
	if err != nil {
		t.Fatal(err)
	}
	if o.ID != "ord-77" || o.Symbol != "BTC/USD" || o.Status != cexkit.OrderStatusOpen {
		t.Fatalf("bad order: %+v", o)
	}
}

func TestFetchOpenOrders_WireDecoding(t *testing.T) {
	ts := rpcServer(t, map[string]func(rpcCall, string) (string, string){
		"AssetManagement.GetInstruments": instrumentsHandler,
		"Authorization.SignIn": func(call rpcCall, auth string) (string, string) {
			return `{"token":"tok","expiresInSeconds":3600}`, ""
		},
		"OrderManagement.OpenOrders": func(call rpcCall, auth string) (string, string) {
			return `{"orders":[
				{"externalOrderId":"ord-1","instrumentId":500328,"orderType":2,"side":0,
				 "price":{"value":400000,"decimals":2},"quantity":{"value":10,"decimals":1},
				 "filledQuantity":{"value":3,"decimals":1},"createdAt":1548827740,"status":"Open"}
			]}`, ""
		},
	})
	defer ts.Close()

	c := cl.New(cl.Config{APIKey: "key", Secret: "secret", BaseURL: ts.URL})
	orders, err := c.FetchOpenOrders(context.Background(), "BTC/USD", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 {
		t.Fatalf("got %d orders", len(orders))
	}
	o := orders[0]
	if o.Symbol != "BTC/USD" || o.Side != cexkit.OrderSideBuy || o.Type != cexkit.OrderTypeLimit {
		t.Fatalf("bad order: %+v", o)
	}
	if o.Price == nil || *o.Price != 4000.0 || o.Amount == nil || *o.Amount != 1.0 {
		t.Fatalf("numbers wrong: %+v", o)
	}
	if o.Remaining == nil || *o.Remaining != 0.7 {
		t.Fatalf("remaining wrong: %+v", o)
	}
	if o.Timestamp != 1548827740000 {
		t.Fatalf("timestamp wrong: %d", o.Timestamp)
	}
}

package bittrex_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cexkit/cexkit"
	cl "github.com/cexkit/cexkit/exchange/bittrex"
	"github.com/cexkit/cexkit/exchange/common"
)

const marketsFixture = `{"success":true,"message":"","result":[
	{"MarketCurrency":"LTC","BaseCurrency":"BTC","MarketName":"BTC-LTC","MinTradeSize":0.01,"IsActive":true},
	{"MarketCurrency":"DOGE","BaseCurrency":"USDT","MarketName":"USDT-DOGE","MinTradeSize":10,"IsActive":false}
]}`

func newClient(ts *httptest.Server) *cl.Client {
	c := cl.New("key", "secret")
	c.SetBaseURL(ts.URL)
	return c
}

func TestLoadMarkets_InvertedNaming(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1.1/public/getmarkets", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(marketsFixture))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newClient(ts)
	ms, err := c.LoadMarkets(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != 2 {
		t.Fatalf("got %d markets", len(ms))
	}
	// MarketCurrency is the base, BaseCurrency the quote
	m := ms["LTC/BTC"]
	if m.ID != "BTC-LTC" || m.Base != "LTC" || m.Quote != "BTC" {
		t.Fatalf("bad market: %+v", m)
	}
	if m.Symbol != m.Base+"/"+m.Quote {
		t.Fatalf("symbol invariant broken: %+v", m)
	}
	if m.Limits.Amount.Min == nil || *m.Limits.Amount.Min != 0.01 {
		t.Fatalf("min trade size lost: %+v", m.Limits)
	}
	if ms["DOGE/USDT"].Active {
		t.Fatal("inactive market marked active")
	}
}

func TestFetchTicker_ColdCachePopulates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1.1/public/getmarkets", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(marketsFixture))
	})
	mux.HandleFunc("/api/v1.1/public/getmarketsummary", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("market") != "BTC-LTC" {
			w.WriteHeader(400)
			return
		}
		w.Write([]byte(`{"success":true,"message":"","result":[
			{"MarketName":"BTC-LTC","High":0.0135,"Low":0.012,"Volume":3833.97,"Last":0.0132,
			 "BaseVolume":47.83,"TimeStamp":"2014-07-09T07:19:30.15","Bid":0.0129,"Ask":0.0132,"PrevDay":0.0129}
		]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	// no explicit LoadMarkets: the symbol-scoped call must populate the cache
	c := newClient(ts)
	tk, err := c.FetchTicker(context.Background(), "LTC/BTC")
	if err != nil {
		t.Fatal(err)
	}
	if tk.Symbol != "LTC/BTC" || tk.Last == nil || *tk.Last != 0.0132 {
		t.Fatalf("bad ticker: %+v", tk)
	}
	if tk.Bid == nil || *tk.Bid != 0.0129 || tk.Ask == nil || *tk.Ask != 0.0132 {
		t.Fatalf("bid/ask wrong: %+v", tk)
	}
	// Volume is base units, BaseVolume quote units
	if tk.BaseVolume == nil || *tk.BaseVolume != 3833.97 {
		t.Fatalf("base volume wrong: %+v", tk)
	}
	if tk.QuoteVolume == nil || *tk.QuoteVolume != 47.83 {
		t.Fatalf("quote volume wrong: %+v", tk)
	}
	if tk.Timestamp != 1404890370150 {
		t.Fatalf("timestamp wrong: %d", tk.Timestamp)
	}
	if tk.Datetime != "2014-07-09T07:19:30Z" {
		t.Fatalf("datetime wrong: %q", tk.Datetime)
	}
	if len(tk.Info) == 0 {
		t.Fatal("raw info dropped")
	}
}

func TestErrorDispatch(t *testing.T) {
	msg := "INSUFFICIENT_FUNDS"
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1.1/market/buylimit", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"` + msg + `","result":null}`))
	})
	mux.HandleFunc("/api/v1.1/public/getmarkets", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(marketsFixture))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newClient(ts)
	price := 0.01
	_, err := c.CreateOrder(context.Background(), "LTC/BTC", cexkit.OrderTypeLimit, cexkit.OrderSideBuy, 1, &price, nil)
	if !errors.Is(err, cexkit.ErrInsufficientFunds) {
		t.Fatalf("want insufficient funds, got %v", err)
	}

	msg = "SOME_NEW_CODE"
	_, err = c.CreateOrder(context.Background(), "LTC/BTC", cexkit.OrderTypeLimit, cexkit.OrderSideBuy, 1, &price, nil)
	if !errors.Is(err, cexkit.ErrExchange) {
		t.Fatalf("want generic fallback, got %v", err)
	}
	var ee *cexkit.Error
	if !errors.As(err, &ee) || ee.Exchange != "bittrex" {
		t.Fatalf("diagnostics lost: %v", err)
	}
}

func TestPrivate_SignsFullURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1.1/account/getbalances", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("apikey") != "key" || q.Get("nonce") == "" {
			w.Write([]byte(`{"success":false,"message":"APIKEY_INVALID","result":null}`))
			return
		}
		if r.Header.Get("apisign") == "" {
			w.Write([]byte(`{"success":false,"message":"APISIGN_NOT_PROVIDED","result":null}`))
			return
		}
		w.Write([]byte(`{"success":true,"message":"","result":[
			{"Currency":"BTC","Balance":1.5,"Available":1.0},
			{"Currency":"DRK","Balance":100,"Available":100}
		]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newClient(ts)
	bals, err := c.FetchBalance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	btc := bals.Currencies["BTC"]
	if btc.Free == nil || *btc.Free != 1.0 || btc.Used == nil || *btc.Used != 0.5 {
		t.Fatalf("bad balance: %+v", btc)
	}
	// DRK normalizes to DASH
	if _, ok := bals.Currencies["DASH"]; !ok {
		t.Fatalf("common code not applied: %v", bals.Currencies)
	}
}

func TestPrivate_MissingCredentials(t *testing.T) {
	c := cl.New("", "")
	_, err := c.FetchBalance(context.Background())
	if !errors.Is(err, cexkit.ErrAuthentication) {
		t.Fatalf("want auth error, got %v", err)
	}
}

func TestWithdraw_InvalidAddressBeforeNetwork(t *testing.T) {
	hit := false
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hit = true })
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newClient(ts)
	_, err := c.Withdraw(context.Background(), "BTC", 1, "short", "", nil)
	if !errors.Is(err, cexkit.ErrInvalidAddress) {
		t.Fatalf("want invalid address, got %v", err)
	}
	if hit {
		t.Fatal("network call issued for invalid address")
	}
}

func TestCreateOrder_TransientFailureNotReplayed(t *testing.T) {
	hits := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1.1/public/getmarkets", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(marketsFixture))
	})
	mux.HandleFunc("/api/v1.1/market/buylimit", func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(500)
			return
		}
		w.Write([]byte(`{"success":true,"message":"","result":{"uuid":"u1"}}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cfg := cl.DefaultConfig("key", "secret")
	cfg.HTTP = &common.Options{
		Timeout:    5 * time.Second,
		Retries:    2,
		BackoffMin: time.Millisecond,
		BackoffMax: 2 * time.Millisecond,
		UserAgent:  "test",
	}
	c := cl.NewWithConfig(cfg)
	c.SetBaseURL(ts.URL)

	price := 0.01
	_, err := c.CreateOrder(context.Background(), "LTC/BTC", cexkit.OrderTypeLimit, cexkit.OrderSideBuy, 1, &price, nil)
	if err == nil {
		t.Fatal("transient failure must surface, not be retried")
	}
	// the exchange may have accepted the order before failing; a replay
	// could place it twice
	if hits != 1 {
		t.Fatalf("order-placing request sent %d times", hits)
	}
}

func TestFetchOpenOrders_Status(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1.1/public/getmarkets", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(marketsFixture))
	})
	mux.HandleFunc("/api/v1.1/market/getopenorders", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"","result":[
			{"OrderUuid":"a1","Exchange":"BTC-LTC","OrderType":"LIMIT_SELL","Quantity":5.0,
			 "QuantityRemaining":5.0,"Limit":0.02,"Opened":"2014-07-09T07:19:30.15","IsOpen":true,"CancelInitiated":false},
			{"OrderUuid":"a2","Exchange":"BTC-LTC","OrderType":"LIMIT_SELL","Quantity":2.0,
			 "QuantityRemaining":0,"Limit":0.02,"Opened":"2014-07-08T07:19:30.15","IsOpen":false,"CancelInitiated":false}
		]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newClient(ts)
	orders, err := c.FetchOpenOrders(context.Background(), "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	// the filled order must be filtered out, open orders only
	if len(orders) != 1 {
		t.Fatalf("got %d orders", len(orders))
	}
	o := orders[0]
	if o.ID != "a1" || o.Symbol != "LTC/BTC" || o.Side != cexkit.OrderSideSell {
		t.Fatalf("bad order: %+v", o)
	}
	if o.Status != cexkit.OrderStatusOpen {
		t.Fatalf("status wrong: %+v", o)
	}
	if o.Filled == nil || *o.Filled != 0 || o.Remaining == nil || *o.Remaining != 5 {
		t.Fatalf("fill math wrong: %+v", o)
	}
}

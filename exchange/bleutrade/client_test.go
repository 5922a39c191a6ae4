package bleutrade_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cexkit/cexkit"
	cl "github.com/cexkit/cexkit/exchange/bleutrade"
)

func newClient(ts *httptest.Server) *cl.Client {
	c := cl.New("key", "secret")
	c.SetBaseURL(ts.URL)
	return c
}

func TestConfiguredAsClone(t *testing.T) {
	c := cl.New("", "")
	if c.ID() != "bleutrade" || c.Name() != "Bleutrade" {
		t.Fatalf("identity wrong: %s/%s", c.ID(), c.Name())
	}
	if c.Has().Can("fetchOrder") {
		t.Fatal("fetchOrder must be off on the v2 clone")
	}
	_, err := c.FetchOrder(context.Background(), "x", "")
	if !errors.Is(err, cexkit.ErrNotSupported) {
		t.Fatalf("want not supported, got %v", err)
	}
}

func TestV2PathsAndExplicitStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/public/getmarkets", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"","result":[
			{"MarketCurrency":"DOGE","BaseCurrency":"BTC","MarketName":"DOGE_BTC","MinTradeSize":0.1,"IsActive":true}
		]}`))
	})
	mux.HandleFunc("/api/v2/account/getorders", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"","result":[
			{"OrderUuid":"o1","Exchange":"DOGE_BTC","Type":"LIMIT_BUY","Quantity":100,
			 "QuantityRemaining":0,"Limit":0.0000005,"Created":"2019-01-20T10:00:00","Status":"OK"},
			{"OrderUuid":"o2","Exchange":"DOGE_BTC","Type":"LIMIT_BUY","Quantity":100,
			 "QuantityRemaining":100,"Limit":0.0000004,"Created":"2019-01-21T10:00:00","Status":"CANCELED"}
		]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newClient(ts)
	orders, err := c.FetchClosedOrders(context.Background(), "DOGE/BTC", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders", len(orders))
	}
	if orders[0].Status != cexkit.OrderStatusClosed {
		t.Fatalf("OK must map to closed: %+v", orders[0])
	}
	if orders[1].Status != cexkit.OrderStatusCanceled {
		t.Fatalf("CANCELED must map to canceled: %+v", orders[1])
	}
}

func TestOwnErrorTable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/public/getmarkets", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"","result":[
			{"MarketCurrency":"DOGE","BaseCurrency":"BTC","MarketName":"DOGE_BTC","IsActive":true}
		]}`))
	})
	mux.HandleFunc("/api/v2/market/selllimit", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"ERR_INSUFICIENT_BALANCE","result":null}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newClient(ts)
	price := 0.0000005
	_, err := c.CreateOrder(context.Background(), "DOGE/BTC", cexkit.OrderTypeLimit, cexkit.OrderSideSell, 100, &price, nil)
	if !errors.Is(err, cexkit.ErrInsufficientFunds) {
		t.Fatalf("want insufficient funds, got %v", err)
	}
}

// Package bleutrade implements the Bleutrade v2 REST API. The venue is
// a Bittrex API clone, so the adapter is the bittrex core parameterized
// with Bleutrade's hostname, paths and error tables plus a handful of
// field overrides — composition, not a new wire implementation.
package bleutrade

import (
	"context"

	"github.com/cexkit/cexkit"
	"github.com/cexkit/cexkit/exchange/bittrex"
	"github.com/cexkit/cexkit/exchange/common"
)

type Client struct {
	*bittrex.Client
}

var _ cexkit.Exchange = (*Client)(nil)

func New(apiKey, secret string) *Client {
	return NewWithConfig(Config(apiKey, secret))
}

func NewWithConfig(cfg bittrex.Config) *Client {
	return &Client{Client: bittrex.NewWithConfig(cfg)}
}

// Config returns the bittrex core configured for Bleutrade.
func Config(apiKey, secret string) bittrex.Config {
	cfg := bittrex.DefaultConfig(apiKey, secret)
	cfg.ID = "bleutrade"
	cfg.DisplayName = "Bleutrade"
	cfg.BaseURL = "https://bleutrade.com"
	cfg.APIPrefix = "/api/v2"
	// closed orders live on a different endpoint than on Bittrex
	cfg.Paths.OrderHistory = "/account/getorders"
	// Bleutrade reports an explicit status field instead of
	// IsOpen/CancelInitiated flags
	cfg.OrderStatuses = map[string]cexkit.OrderStatus{
		"OK":       cexkit.OrderStatusClosed,
		"OPEN":     cexkit.OrderStatusOpen,
		"CANCELED": cexkit.OrderStatusCanceled,
	}
	cfg.Errors = common.ErrorMap{
		Exact: map[string]error{
			"ERR_INSUFICIENT_BALANCE": cexkit.ErrInsufficientFunds,
			"ERR_LOW_VOLUME":          cexkit.ErrInvalidOrder,
			"APIKEY_INVALID":          cexkit.ErrAuthentication,
			"INVALID_SIGNATURE":       cexkit.ErrAuthentication,
			"UUID_INVALID":            cexkit.ErrOrderNotFound,
		},
		Broad: []common.BroadRule{
			{Substr: "Insufficient", Err: cexkit.ErrInsufficientFunds},
			{Substr: "invalid market", Err: cexkit.ErrBadRequest},
			{Substr: "throttled", Err: cexkit.ErrDDoSProtection},
		},
	}
	return cfg
}

func (cl *Client) Has() cexkit.Capabilities {
	caps := cl.Client.Has()
	// no getorder endpoint on the v2 clone
	caps["fetchOrder"] = false
	return caps
}

func (cl *Client) FetchOrder(ctx context.Context, id, symbol string) (cexkit.Order, error) {
	return cexkit.Order{}, cexkit.NewError(cexkit.ErrNotSupported, cl.ID(), "fetchOrder")
}

package common

import (
	"errors"
	"testing"

	"github.com/cexkit/cexkit"
)

func TestDispatch_ExactThenBroad(t *testing.T) {
	m := ErrorMap{
		Exact: map[string]error{
			"INSUFFICIENT_FUNDS": cexkit.ErrInsufficientFunds,
			"3005":               cexkit.ErrAuthentication,
		},
		Broad: []BroadRule{
			{Substr: "throttled", Err: cexkit.ErrDDoSProtection},
		},
	}

	err := m.Dispatch("bittrex", "INSUFFICIENT_FUNDS", "", []byte(`{"message":"INSUFFICIENT_FUNDS"}`))
	if !errors.Is(err, cexkit.ErrInsufficientFunds) {
		t.Fatalf("exact match failed: %v", err)
	}

	err = m.Dispatch("bittrex", "SOMETHING_ELSE", "request was throttled, retry later", nil)
	if !errors.Is(err, cexkit.ErrDDoSProtection) {
		t.Fatalf("broad match failed: %v", err)
	}

	err = m.Dispatch("bittrex", "UNKNOWN_CODE", "unmapped", []byte("raw"))
	if !errors.Is(err, cexkit.ErrExchange) {
		t.Fatalf("fallback failed: %v", err)
	}
	var ee *cexkit.Error
	if !errors.As(err, &ee) || ee.Exchange != "bittrex" || ee.Body != "raw" {
		t.Fatalf("lost diagnostics: %+v", ee)
	}
}

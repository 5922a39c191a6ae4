package common

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Float parses defensively: empty or malformed input yields nil, never
// zero. Exchanges omit optional numerics all the time and a fabricated
// zero is worse than an absent value.
func Float(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// FloatFromAny handles the string/number ambivalence of exchange JSON.
func FloatFromAny(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f := x
		return &f
	case string:
		return Float(x)
	case json.Number:
		return Float(x.String())
	default:
		return nil
	}
}

func Int(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// TimeMs parses a venue timestamp into epoch milliseconds, 0 on failure.
// Layouts without a zone are taken as UTC.
func TimeMs(layout, s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

// ISO8601 renders a millisecond timestamp as RFC3339 UTC, "" for 0.
func ISO8601(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

// AmountToPrecision truncates toward zero; an order for slightly less
// than asked is acceptable, one for more is not.
func AmountToPrecision(x float64, places int) string {
	return decimal.NewFromFloat(x).RoundDown(int32(places)).String()
}

// PriceToPrecision rounds half-up.
func PriceToPrecision(x float64, places int) string {
	return decimal.NewFromFloat(x).Round(int32(places)).String()
}

// dxNumberScale bounds the decimals DX object numbers carry.
const dxNumberScale = 10

// NumberObject is the {value, decimals} wire form DX uses for every
// numeric field: value holds the digits, decimals the shift.
type NumberObject struct {
	Value    int64 `json:"value"`
	Decimals int32 `json:"decimals"`
}

func NumberToObject(x float64) NumberObject {
	d := decimal.NewFromFloat(x).Round(dxNumberScale)
	// canonical form, trailing zeros stripped
	d, _ = decimal.NewFromString(d.String())
	decimals := int32(0)
	if exp := d.Exponent(); exp < 0 {
		decimals = -exp
	}
	return NumberObject{
		Value:    d.Shift(decimals).IntPart(),
		Decimals: decimals,
	}
}

func ObjectToNumber(o NumberObject) float64 {
	f, _ := decimal.New(o.Value, -o.Decimals).Float64()
	return f
}

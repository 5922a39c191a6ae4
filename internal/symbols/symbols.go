package symbols

import (
	"sort"
	"strings"
)

type Style int

const (
	// BASE + SEP + QUOTE (e.g. "MOG-USDT", "ETH/USDT", "PEPE_USDT")
	StyleBaseSepQuote Style = iota
	// QUOTE + SEP + BASE (Bittrex: "BTC-LTC", "USDT-ETH")
	StyleQuoteSepBase
	// CONCAT: BASEQUOTE without sep (Gemini: "btcusd", "zecltc")
	StyleConcat
)

var seps = []string{"-", "_", "/"}

var KnownQuotes = []string{
	"USDT", "USDC", "FDUSD", "TUSD", "BUSD", "USD", "EUR", "KRW",
	"BTC", "ETH", "LTC", "BCH", "TRY", "GBP", "JPY", "BNB",
}

// commonCodes reconciles exchange-native currency naming with the
// canonical codes the rest of the library uses.
var commonCodes = map[string]string{
	"XBT": "BTC",
	"BCC": "BCH",
	"DRK": "DASH",
}

// CommonCode maps an exchange-native currency code onto its canonical
// form. Unknown codes pass through upper-cased.
func CommonCode(code string) string {
	u := strings.ToUpper(strings.TrimSpace(code))
	if c, ok := commonCodes[u]; ok {
		return c
	}
	return u
}

// Pair builds the normalized market symbol from canonical codes.
func Pair(base, quote string) string {
	return CommonCode(base) + "/" + CommonCode(quote)
}

// Split breaks an exchange-native symbol into base and quote.
func Split(symbol string, style Style) (string, string, bool) {
	s := strings.TrimSpace(symbol)
	u := strings.ToUpper(s)

	// 1) with sep
	for _, sep := range seps {
		if strings.Contains(u, sep) {
			parts := strings.Split(u, sep)
			if len(parts) != 2 {
				return "", "", false
			}
			switch style {
			case StyleBaseSepQuote:
				return parts[0], parts[1], true
			case StyleQuoteSepBase:
				return parts[1], parts[0], true
			default:
				// unknown style — trying to guess
				if looksLikeQuote(parts[1]) {
					return parts[0], parts[1], true
				}
				if looksLikeQuote(parts[0]) {
					return parts[1], parts[0], true
				}
				return parts[0], parts[1], true
			}
		}
	}

	// 2) concat BASEQUOTE — searching for the longest quote suffix
	for _, q := range quotesByLenDesc {
		if strings.HasSuffix(u, q) && len(u) > len(q) {
			base := strings.TrimSuffix(u, q)
			return base, q, true
		}
	}
	return "", "", false
}

func looksLikeQuote(s string) bool {
	for _, q := range KnownQuotes {
		if s == q {
			return true
		}
	}
	return false
}

// built once at package load; Split runs concurrently across adapters
var quotesByLenDesc = func() []string {
	qs := append([]string(nil), KnownQuotes...)
	sort.Slice(qs, func(i, j int) bool { return len(qs[i]) > len(qs[j]) })
	return qs
}()

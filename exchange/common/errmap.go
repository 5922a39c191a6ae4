package common

import (
	"strings"

	"github.com/cexkit/cexkit"
)

type BroadRule struct {
	Substr string
	Err    error
}

// ErrorMap maps exchange-native error codes/messages onto the shared
// taxonomy: exact code match first, then broad substring match over the
// message, finally the generic catch-all.
type ErrorMap struct {
	Exact map[string]error
	Broad []BroadRule
}

// Dispatch turns a failed response into a taxonomy error carrying the
// exchange id and the raw body.
func (m ErrorMap) Dispatch(exchange, code, message string, body []byte) error {
	if e, ok := m.Exact[code]; ok {
		return cexkit.NewError(e, exchange, string(body))
	}
	for _, r := range m.Broad {
		if r.Substr != "" && strings.Contains(message, r.Substr) {
			return cexkit.NewError(r.Err, exchange, string(body))
		}
	}
	return cexkit.NewError(cexkit.ErrExchange, exchange, string(body))
}

package common

import (
	"context"
	"sync"

	"github.com/cexkit/cexkit"
)

// MarketCache holds the per-instance instrument list with bidirectional
// lookups. Populated once, read-only afterward; Ensure with reload is
// the only writer path.
type MarketCache struct {
	mu       sync.RWMutex
	bySymbol map[string]cexkit.Market
	byID     map[string]cexkit.Market
}

// Ensure populates the cache via fetch when cold (or when reload is
// set) and returns a symbol-keyed snapshot.
func (mc *MarketCache) Ensure(ctx context.Context, reload bool, fetch func(context.Context) ([]cexkit.Market, error)) (map[string]cexkit.Market, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.bySymbol == nil || reload {
		items, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		bySymbol := make(map[string]cexkit.Market, len(items))
		byID := make(map[string]cexkit.Market, len(items))
		for _, m := range items {
			bySymbol[m.Symbol] = m
			byID[m.ID] = m
		}
		mc.bySymbol, mc.byID = bySymbol, byID
	}
	return snapshot(mc.bySymbol), nil
}

func (mc *MarketCache) Loaded() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.bySymbol != nil
}

func (mc *MarketCache) Symbol(symbol string) (cexkit.Market, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	m, ok := mc.bySymbol[symbol]
	return m, ok
}

func (mc *MarketCache) NativeID(id string) (cexkit.Market, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	m, ok := mc.byID[id]
	return m, ok
}

func snapshot(src map[string]cexkit.Market) map[string]cexkit.Market {
	out := make(map[string]cexkit.Market, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

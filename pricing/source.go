// Package pricing supplies a best-effort current price per symbol. Sources
// are pluggable (simulated random walk, Alpaca latest quote); the Adapter
// wraps one source with a short timeout and a fallback so callers always
// receive a usable price and never block on a flaky upstream.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"
)

// Source fetches a current price for a symbol from an upstream. It may
// fail; the Adapter, not the caller, is responsible for fallback.
type Source interface {
	Fetch(ctx context.Context, symbol string) (decimal.Decimal, error)
}

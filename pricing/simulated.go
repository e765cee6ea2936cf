package pricing

import (
	"context"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
)

// defaultBase is the starting price for symbols with no configured base.
var defaultBase = decimal.NewFromInt(100)

// Simulated is a seeded random-walk Source. Each fetch moves the symbol's
// last price by a bounded fraction, so repeated reads form a plausible
// series rather than uncorrelated noise.
type Simulated struct {
	mu         sync.Mutex
	rnd        *rand.Rand
	base       map[string]decimal.Decimal
	last       map[string]decimal.Decimal
	volatility float64 // max fractional move per fetch, e.g. 0.002
}

func NewSimulated(base map[string]decimal.Decimal, volatility float64, seed int64) *Simulated {
	if volatility <= 0 {
		volatility = 0.002
	}
	b := make(map[string]decimal.Decimal, len(base))
	for symbol, px := range base {
		b[symbol] = px
	}
	return &Simulated{
		rnd:        rand.New(rand.NewSource(seed)),
		base:       b,
		last:       make(map[string]decimal.Decimal),
		volatility: volatility,
	}
}

func (s *Simulated) Fetch(_ context.Context, symbol string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	px, ok := s.last[symbol]
	if !ok {
		px, ok = s.base[symbol]
		if !ok {
			px = defaultBase
		}
	}

	step := (s.rnd.Float64()*2 - 1) * s.volatility
	next := px.Mul(decimal.NewFromFloat(1 + step)).Round(4)
	if !next.IsPositive() {
		next = px
	}

	s.last[symbol] = next
	return next, nil
}

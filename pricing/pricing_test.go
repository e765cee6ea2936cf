package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSource struct {
	price decimal.Decimal
	err   error
	calls int
}

func (s *scriptedSource) Fetch(_ context.Context, _ string) (decimal.Decimal, error) {
	s.calls++
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.price, nil
}

func TestAdapterReturnsUpstreamPrice(t *testing.T) {
	t.Parallel()

	src := &scriptedSource{price: decimal.NewFromInt(190)}
	a := NewAdapter(src, time.Second)

	px := a.GetPrice(context.Background(), "AAPL")
	assert.True(t, px.Equal(decimal.NewFromInt(190)))
}

func TestAdapterFallsBackToLastKnown(t *testing.T) {
	t.Parallel()

	src := &scriptedSource{price: decimal.NewFromInt(190)}
	a := NewAdapter(src, time.Second)
	ctx := context.Background()

	a.GetPrice(ctx, "AAPL")

	src.err = errors.New("upstream down")
	px := a.GetPrice(ctx, "AAPL")
	assert.True(t, px.Equal(decimal.NewFromInt(190)), "expected cached price, got %s", px)
}

func TestAdapterSynthesizesForUnknownSymbol(t *testing.T) {
	t.Parallel()

	src := &scriptedSource{err: errors.New("upstream down")}
	a := NewAdapter(src, time.Second)
	ctx := context.Background()

	px := a.GetPrice(ctx, "NVDA")
	assert.True(t, px.IsPositive(), "synthetic price must be positive, got %s", px)

	// Subsequent fallbacks reuse the synthesized price.
	again := a.GetPrice(ctx, "NVDA")
	assert.True(t, again.Equal(px), "synthetic price must be sticky: %s vs %s", again, px)
}

// hangingSource ignores its context and sleeps well past any timeout.
type hangingSource struct {
	price decimal.Decimal
	hang  bool
}

func (s *hangingSource) Fetch(_ context.Context, _ string) (decimal.Decimal, error) {
	if s.hang {
		time.Sleep(2 * time.Second)
	}
	return s.price, nil
}

func TestAdapterBoundsHangingSource(t *testing.T) {
	t.Parallel()

	src := &hangingSource{price: decimal.NewFromInt(190), hang: true}
	a := NewAdapter(src, 100*time.Millisecond)

	start := time.Now()
	px := a.GetPrice(context.Background(), "AAPL")
	elapsed := time.Since(start)

	assert.True(t, px.IsPositive(), "fallback price must be usable, got %s", px)
	assert.Less(t, elapsed, 500*time.Millisecond, "hung upstream must not delay GetPrice past its timeout")
}

func TestAdapterFallsBackToCacheWhenSourceHangs(t *testing.T) {
	t.Parallel()

	src := &hangingSource{price: decimal.NewFromInt(190)}
	a := NewAdapter(src, 100*time.Millisecond)
	ctx := context.Background()

	a.GetPrice(ctx, "AAPL")

	src.hang = true
	px := a.GetPrice(ctx, "AAPL")
	assert.True(t, px.Equal(decimal.NewFromInt(190)), "expected last known price, got %s", px)
}

func TestAdapterIgnoresNonPositiveUpstream(t *testing.T) {
	t.Parallel()

	src := &scriptedSource{price: decimal.Zero}
	a := NewAdapter(src, time.Second)

	px := a.GetPrice(context.Background(), "AAPL")
	assert.True(t, px.IsPositive(), "zero upstream must not be served, got %s", px)
}

func TestGetPricesCoversAllSymbols(t *testing.T) {
	t.Parallel()

	src := &scriptedSource{price: decimal.NewFromInt(42)}
	a := NewAdapter(src, time.Second)

	prices := a.GetPrices(context.Background(), []string{"AAPL", "SPY", "BTC"})
	require.Len(t, prices, 3)
	for symbol, px := range prices {
		assert.True(t, px.Equal(decimal.NewFromInt(42)), "%s: %s", symbol, px)
	}
}

func TestSimulatedWalkIsBoundedAndDeterministic(t *testing.T) {
	t.Parallel()

	base := map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(100)}

	s1 := NewSimulated(base, 0.01, 7)
	s2 := NewSimulated(base, 0.01, 7)
	ctx := context.Background()

	prev := decimal.NewFromInt(100)
	for i := 0; i < 50; i++ {
		px, err := s1.Fetch(ctx, "AAPL")
		require.NoError(t, err)
		assert.True(t, px.IsPositive())

		// Each step moves at most volatility from the previous price,
		// with a little slack for rounding.
		move := px.Sub(prev).Abs().Div(prev)
		assert.True(t, move.LessThanOrEqual(decimal.NewFromFloat(0.011)), "step %d moved %s", i, move)
		prev = px

		same, err := s2.Fetch(ctx, "AAPL")
		require.NoError(t, err)
		assert.True(t, same.Equal(px), "same seed must walk the same path")
	}
}

func TestSimulatedUsesDefaultBaseForUnknownSymbol(t *testing.T) {
	t.Parallel()

	s := NewSimulated(nil, 0.002, 1)
	px, err := s.Fetch(context.Background(), "XYZ")
	require.NoError(t, err)

	// First step from the default base of 100 stays within volatility.
	assert.True(t, px.GreaterThan(decimal.NewFromInt(99)))
	assert.True(t, px.LessThan(decimal.NewFromInt(101)))
}

package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/store"
)

var seed = decimal.NewFromInt(100000)

func newLedger(t *testing.T) (*Ledger, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return New(st, "acct-1", seed), st
}

func TestBalanceSeedsOnFirstRead(t *testing.T) {
	t.Parallel()

	l, _ := newLedger(t)
	ctx := context.Background()

	bal, err := l.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, bal.Cash.Equal(seed))
	assert.True(t, bal.BuyingPower.Equal(seed))
}

func TestBalanceSeedIsIdempotent(t *testing.T) {
	t.Parallel()

	l, _ := newLedger(t)
	ctx := context.Background()

	first, err := l.Balance(ctx)
	require.NoError(t, err)
	second, err := l.Balance(ctx)
	require.NoError(t, err)

	assert.True(t, first.Cash.Equal(second.Cash), "repeated reads must not re-seed")
}

func TestAdjustWritesThrough(t *testing.T) {
	t.Parallel()

	l, st := newLedger(t)
	ctx := context.Background()

	cash, err := l.Adjust(ctx, decimal.NewFromInt(-500))
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.NewFromInt(99500)))

	// A second ledger over the same store sees the persisted value.
	l2 := New(st, "acct-1", seed)
	bal, err := l2.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, bal.Cash.Equal(decimal.NewFromInt(99500)))
}

func TestAdjustRejectsNegativeCash(t *testing.T) {
	t.Parallel()

	l, _ := newLedger(t)
	ctx := context.Background()

	_, err := l.Adjust(ctx, decimal.NewFromInt(-100001))
	require.Error(t, err)

	var insufficient *broker.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Shortfall().Equal(decimal.NewFromInt(1)), "shortfall: %s", insufficient.Shortfall())

	bal, err := l.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, bal.Cash.Equal(seed), "rejected adjust must not mutate")
}

func TestMalformedRecordFallsBackToSeed(t *testing.T) {
	t.Parallel()

	l, st := newLedger(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "account:acct-1:ledger", []byte("not json")))

	bal, err := l.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, bal.Cash.Equal(seed))
}

// failStore wraps Memory and fails writes on demand.
type failStore struct {
	*store.Memory
	failSet bool
}

var errWrite = errors.New("disk full")

func (f *failStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errWrite
	}
	return f.Memory.Set(ctx, key, value)
}

func TestAdjustSurfacesPersistenceError(t *testing.T) {
	t.Parallel()

	fs := &failStore{Memory: store.NewMemory()}
	l := New(fs, "acct-1", seed)
	ctx := context.Background()

	_, err := l.Balance(ctx) // seed while writes still work
	require.NoError(t, err)

	fs.failSet = true
	_, err = l.Adjust(ctx, decimal.NewFromInt(-500))

	var persistence *broker.PersistenceError
	require.ErrorAs(t, err, &persistence)
	assert.ErrorIs(t, err, errWrite)

	fs.failSet = false
	bal, err := l.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, bal.Cash.Equal(seed), "failed write must leave stored cash untouched")
}

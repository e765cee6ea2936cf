// Package ledger keeps one account's cash balance in a write-through
// key-value store. Buying power equals cash (no margin); equity is derived
// by the caller from cash plus open-position market value, so only cash is
// persisted.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/store"
)

type Ledger struct {
	store     store.Adapter
	accountID string
	seed      decimal.Decimal
}

// Balance is the persisted snapshot of an account's funds.
type Balance struct {
	Cash        decimal.Decimal `json:"cash"`
	BuyingPower decimal.Decimal `json:"buying_power"`
}

type record struct {
	Cash string `json:"cash"`
}

func New(st store.Adapter, accountID string, seed decimal.Decimal) *Ledger {
	return &Ledger{store: st, accountID: accountID, seed: seed}
}

func (l *Ledger) key() string {
	return fmt.Sprintf("account:%s:ledger", l.accountID)
}

// Balance returns the current cash snapshot. The first read for a new
// account seeds the fixed starting balance and persists it; repeated reads
// return the same seeded value. A malformed stored record is replaced by
// the seed rather than crashing the session.
func (l *Ledger) Balance(ctx context.Context) (Balance, error) {
	raw, err := l.store.Get(ctx, l.key())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return l.seedBalance(ctx)
		}
		return Balance{}, fmt.Errorf("read ledger: %w", err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return l.seedBalance(ctx)
	}
	cash, err := decimal.NewFromString(rec.Cash)
	if err != nil {
		return l.seedBalance(ctx)
	}

	return Balance{Cash: cash, BuyingPower: cash}, nil
}

// Adjust adds delta to cash (negative for purchases/withdrawals, positive
// for sales/deposits) and writes through immediately. It fails with
// InsufficientFundsError if the result would be negative and leaves the
// stored balance untouched.
func (l *Ledger) Adjust(ctx context.Context, delta decimal.Decimal) (decimal.Decimal, error) {
	bal, err := l.Balance(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	next := bal.Cash.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, &broker.InsufficientFundsError{
			Required:  delta.Neg(),
			Available: bal.Cash,
		}
	}

	if err := l.write(ctx, next); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}

func (l *Ledger) seedBalance(ctx context.Context) (Balance, error) {
	if err := l.write(ctx, l.seed); err != nil {
		return Balance{}, err
	}
	return Balance{Cash: l.seed, BuyingPower: l.seed}, nil
}

func (l *Ledger) write(ctx context.Context, cash decimal.Decimal) error {
	raw, err := json.Marshal(record{Cash: cash.String()})
	if err != nil {
		return &broker.PersistenceError{Key: l.key(), Err: err}
	}
	if err := l.store.Set(ctx, l.key(), raw); err != nil {
		return &broker.PersistenceError{Key: l.key(), Err: err}
	}
	return nil
}

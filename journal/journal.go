// Package journal is the append-only trade history: every settled or
// rejected order is recorded once and never mutated. It also keeps equity
// snapshots for display. Backends: in-memory and SQLite.
package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/broker"
)

// Filter narrows a history query. Zero values match everything.
type Filter struct {
	Symbol string
	Side   broker.Side
	Status broker.OrderStatus
	From   time.Time // inclusive
	To     time.Time // exclusive
}

func (f Filter) matches(t broker.Trade) bool {
	if f.Symbol != "" && t.Symbol != f.Symbol {
		return false
	}
	if f.Side != "" && t.Side != f.Side {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && t.Time.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.Time.Before(f.To) {
		return false
	}
	return true
}

// EquitySnapshot is a point-in-time account valuation, display-only.
type EquitySnapshot struct {
	Time        time.Time
	Cash        decimal.Decimal
	Equity      decimal.Decimal
	MarketValue decimal.Decimal
}

type Journal interface {
	Append(broker.Trade) error
	// Trades returns matching records newest first.
	Trades(Filter) ([]broker.Trade, error)
	RecordEquity(EquitySnapshot) error
	EquityBetween(start, end time.Time) ([]EquitySnapshot, error)
	// Purge drops all records; used by the account reset operation.
	Purge() error
	Close() error
}

// Package book maintains the set of open positions for one account and the
// P/L metrics derived from them. The book is long-only: a reduce past the
// open quantity is an error, never a flip into a short.
//
// Book is not safe for concurrent use on its own; the engine serializes
// fills, closes and price refreshes behind one mutex.
package book

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/broker"
)

var hundred = decimal.NewFromInt(100)

type Book struct {
	positions map[string]*broker.Position
}

// Fill is the position delta produced by applying one execution.
type Fill struct {
	Position   broker.Position // resulting state; zero-quantity when Closed
	RealizedPL decimal.Decimal // non-zero only when the fill reduced or closed
	Closed     bool
}

func New() *Book {
	return &Book{positions: make(map[string]*broker.Position)}
}

// NewFromPositions rehydrates a book from persisted position records.
func NewFromPositions(positions []broker.Position) *Book {
	b := New()
	for _, p := range positions {
		if p.Quantity.IsPositive() {
			cp := p
			recompute(&cp)
			b.positions[cp.Symbol] = &cp
		}
	}
	return b
}

// ApplyFill mutates the book for one executed order.
//
//   - buy with no open position: opens it at the fill price
//   - buy into an open position: re-averages the entry price
//     (oldEntry*oldQty + price*qty) / (oldQty+qty)
//   - sell: reduces the position; entry price is unchanged and
//     realizedPL = (price - entry) * soldQty; a full reduce removes the
//     position from the open set
//
// A sell with no open position or for more than the held quantity returns
// a typed error and leaves the book untouched.
func (b *Book) ApplyFill(symbol string, side broker.Side, qty, price decimal.Decimal, at time.Time) (Fill, error) {
	pos, open := b.positions[symbol]

	if side == broker.SideBuy {
		if !open {
			p := &broker.Position{
				Symbol:       symbol,
				Quantity:     qty,
				EntryPrice:   price,
				CurrentPrice: price,
				OpenTime:     at,
			}
			recompute(p)
			b.positions[symbol] = p
			return Fill{Position: *p}, nil
		}

		total := pos.Quantity.Add(qty)
		cost := pos.EntryPrice.Mul(pos.Quantity).Add(price.Mul(qty))
		pos.EntryPrice = cost.Div(total)
		pos.Quantity = total
		pos.CurrentPrice = price
		recompute(pos)
		return Fill{Position: *pos}, nil
	}

	// Sell side.
	if !open {
		return Fill{}, &broker.PositionNotFoundError{Symbol: symbol}
	}
	if pos.Quantity.LessThan(qty) {
		return Fill{}, &broker.InsufficientPositionError{
			Symbol:    symbol,
			Held:      pos.Quantity,
			Requested: qty,
		}
	}

	realized := price.Sub(pos.EntryPrice).Mul(qty)
	pos.Quantity = pos.Quantity.Sub(qty)
	pos.CurrentPrice = price

	if pos.Quantity.IsZero() {
		delete(b.positions, symbol)
		closed := *pos
		recompute(&closed)
		return Fill{Position: closed, RealizedPL: realized, Closed: true}, nil
	}

	recompute(pos)
	return Fill{Position: *pos, RealizedPL: realized}, nil
}

// RefreshPrices updates marks and recomputes unrealized P/L for every open
// position present in the map. Pure recomputation, no other side effects.
func (b *Book) RefreshPrices(marks map[string]decimal.Decimal) {
	for symbol, pos := range b.positions {
		mark, ok := marks[symbol]
		if !ok || !mark.IsPositive() {
			continue
		}
		pos.CurrentPrice = mark
		recompute(pos)
	}
}

// Position returns the open position for symbol.
func (b *Book) Position(symbol string) (broker.Position, error) {
	pos, ok := b.positions[symbol]
	if !ok {
		return broker.Position{}, &broker.PositionNotFoundError{Symbol: symbol}
	}
	return *pos, nil
}

// Quantity returns the open quantity for symbol, zero if none.
func (b *Book) Quantity(symbol string) decimal.Decimal {
	if pos, ok := b.positions[symbol]; ok {
		return pos.Quantity
	}
	return decimal.Zero
}

// Positions returns the open set ordered by symbol.
func (b *Book) Positions() []broker.Position {
	out := make([]broker.Position, 0, len(b.positions))
	for _, pos := range b.positions {
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Symbols returns the symbols with open positions, ordered.
func (b *Book) Symbols() []string {
	out := make([]string, 0, len(b.positions))
	for symbol := range b.positions {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}

// MarketValue sums quantity * mark across the open set.
func (b *Book) MarketValue() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range b.positions {
		total = total.Add(pos.MarketValue())
	}
	return total
}

// Snapshot copies the open set so a failed operation can Restore it.
func (b *Book) Snapshot() []broker.Position {
	out := make([]broker.Position, 0, len(b.positions))
	for _, pos := range b.positions {
		out = append(out, *pos)
	}
	return out
}

// Restore replaces the open set with a previously taken Snapshot.
func (b *Book) Restore(positions []broker.Position) {
	b.positions = make(map[string]*broker.Position, len(positions))
	for _, p := range positions {
		cp := p
		b.positions[cp.Symbol] = &cp
	}
}

func recompute(p *broker.Position) {
	p.UnrealizedPL = p.CurrentPrice.Sub(p.EntryPrice).Mul(p.Quantity)

	basis := p.EntryPrice.Mul(p.Quantity.Abs())
	if basis.IsZero() {
		p.UnrealizedPLPercent = decimal.Zero
		return
	}
	p.UnrealizedPLPercent = p.UnrealizedPL.Div(basis).Mul(hundred)
}

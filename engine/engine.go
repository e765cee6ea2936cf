// Package engine is the single entry point that turns user trade intents
// into ledger and position mutations. One Engine serves one account
// session; its mutex serializes fills, closes, refresh ticks and reads so
// a price refresh never interleaves with a partially applied fill.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/book"
	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/internal/id"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/pricing"
	"github.com/rustyeddy/papertrader/store"
)

type Engine struct {
	mu        sync.Mutex
	accountID string
	currency  string
	store     store.Adapter
	ledger    *ledger.Ledger
	book      *book.Book
	pricing   *pricing.Adapter
	journal   journal.Journal
}

// New builds an engine for one account session. A blank accountID gets a
// generated identity. The first balance read seeds the starting cash;
// previously persisted positions are rehydrated, with malformed records
// falling back to an empty book rather than failing the session.
func New(ctx context.Context, st store.Adapter, px *pricing.Adapter, j journal.Journal,
	accountID, currency string, seed decimal.Decimal) (*Engine, error) {

	if accountID == "" {
		accountID = uuid.NewString()
	}
	if currency == "" {
		currency = "USD"
	}

	e := &Engine{
		accountID: accountID,
		currency:  currency,
		store:     st,
		ledger:    ledger.New(st, accountID, seed),
		book:      book.New(),
		pricing:   px,
		journal:   j,
	}

	if _, err := e.ledger.Balance(ctx); err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}

	raw, err := st.Get(ctx, e.positionsKey())
	switch {
	case err == nil:
		var positions []broker.Position
		if jsonErr := json.Unmarshal(raw, &positions); jsonErr != nil {
			log.Printf("engine: malformed positions for %s, starting empty: %v", accountID, jsonErr)
		} else {
			e.book = book.NewFromPositions(positions)
		}
	case errors.Is(err, store.ErrNotFound):
		// new account
	default:
		return nil, fmt.Errorf("load positions: %w", err)
	}

	return e, nil
}

func (e *Engine) AccountID() string { return e.accountID }

func (e *Engine) positionsKey() string {
	return fmt.Sprintf("account:%s:positions", e.accountID)
}

// SubmitOrder runs one order through Submitted -> Validated -> Priced ->
// Settled, or to Rejected. Rejections are journaled with a reason and
// returned as typed errors; they never mutate ledger or book state.
func (e *Engine) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderResult, error) {
	if err := validate(req); err != nil {
		return e.reject(req, decimal.Zero, err)
	}

	// Priced: always succeeds per the pricing fallback contract.
	price := e.pricing.GetPrice(ctx, req.Symbol)

	e.mu.Lock()
	defer e.mu.Unlock()

	if req.Side == broker.SideBuy {
		return e.settleBuyLocked(ctx, req, price)
	}
	return e.settleSellLocked(ctx, req, price)
}

func validate(req broker.OrderRequest) error {
	if req.Symbol == "" {
		return &broker.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if !req.Side.Valid() {
		return &broker.ValidationError{Field: "side", Reason: "must be buy or sell"}
	}
	if !req.Quantity.IsPositive() {
		return &broker.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	return nil
}

func (e *Engine) settleBuyLocked(ctx context.Context, req broker.OrderRequest, price decimal.Decimal) (broker.OrderResult, error) {
	cost := req.Quantity.Mul(price)

	bal, err := e.ledger.Balance(ctx)
	if err != nil {
		return broker.OrderResult{}, err
	}
	if bal.Cash.LessThan(cost) {
		return e.reject(req, price, &broker.InsufficientFundsError{
			Required:  cost,
			Available: bal.Cash,
		})
	}

	// Fixed side-effect order: ledger debit, position update, journal.
	if _, err := e.ledger.Adjust(ctx, cost.Neg()); err != nil {
		return broker.OrderResult{}, err
	}

	snap := e.book.Snapshot()
	if _, err := e.book.ApplyFill(req.Symbol, broker.SideBuy, req.Quantity, price, time.Now().UTC()); err != nil {
		e.compensateLocked(ctx, snap, cost)
		return broker.OrderResult{}, err
	}

	if err := e.persistPositionsLocked(ctx); err != nil {
		e.compensateLocked(ctx, snap, cost)
		return broker.OrderResult{}, err
	}

	trade := broker.Trade{
		ID:       id.New(),
		Symbol:   req.Symbol,
		Side:     broker.SideBuy,
		Quantity: req.Quantity,
		Price:    price,
		Status:   broker.StatusFilled,
		Time:     time.Now().UTC(),
	}
	if err := e.journal.Append(trade); err != nil {
		e.compensateLocked(ctx, snap, cost)
		return broker.OrderResult{}, &broker.PersistenceError{Key: "journal", Err: err}
	}

	e.recordEquityLocked(ctx, trade.Time)

	return broker.OrderResult{OrderID: trade.ID, Status: broker.StatusFilled, Price: price}, nil
}

func (e *Engine) settleSellLocked(ctx context.Context, req broker.OrderRequest, price decimal.Decimal) (broker.OrderResult, error) {
	held := e.book.Quantity(req.Symbol)
	if held.LessThan(req.Quantity) {
		return e.reject(req, price, &broker.InsufficientPositionError{
			Symbol:    req.Symbol,
			Held:      held,
			Requested: req.Quantity,
		})
	}

	proceeds := req.Quantity.Mul(price)

	if _, err := e.ledger.Adjust(ctx, proceeds); err != nil {
		return broker.OrderResult{}, err
	}

	snap := e.book.Snapshot()
	fill, err := e.book.ApplyFill(req.Symbol, broker.SideSell, req.Quantity, price, time.Now().UTC())
	if err != nil {
		e.compensateLocked(ctx, snap, proceeds.Neg())
		return broker.OrderResult{}, err
	}

	if err := e.persistPositionsLocked(ctx); err != nil {
		e.compensateLocked(ctx, snap, proceeds.Neg())
		return broker.OrderResult{}, err
	}

	realized := fill.RealizedPL
	trade := broker.Trade{
		ID:         id.New(),
		Symbol:     req.Symbol,
		Side:       broker.SideSell,
		Quantity:   req.Quantity,
		Price:      price,
		Status:     broker.StatusFilled,
		RealizedPL: &realized,
		Time:       time.Now().UTC(),
	}
	if err := e.journal.Append(trade); err != nil {
		e.compensateLocked(ctx, snap, proceeds.Neg())
		return broker.OrderResult{}, &broker.PersistenceError{Key: "journal", Err: err}
	}

	e.recordEquityLocked(ctx, trade.Time)

	return broker.OrderResult{
		OrderID:    trade.ID,
		Status:     broker.StatusFilled,
		Price:      price,
		RealizedPL: &realized,
	}, nil
}

// compensateLocked rolls the book back to its pre-operation snapshot and
// applies the compensating ledger adjustment after a partial failure.
func (e *Engine) compensateLocked(ctx context.Context, snap []broker.Position, refund decimal.Decimal) {
	e.book.Restore(snap)
	if err := e.persistPositionsLocked(ctx); err != nil {
		log.Printf("engine: restore positions after rollback: %v", err)
	}
	if !refund.IsZero() {
		if _, err := e.ledger.Adjust(ctx, refund); err != nil {
			log.Printf("engine: compensating ledger adjustment failed: %v", err)
		}
	}
}

// reject journals a rejected order and returns the typed reason to the
// caller. No account or position state is touched.
func (e *Engine) reject(req broker.OrderRequest, price decimal.Decimal, reason error) (broker.OrderResult, error) {
	trade := broker.Trade{
		ID:       id.New(),
		Symbol:   req.Symbol,
		Side:     req.Side,
		Quantity: req.Quantity,
		Price:    price,
		Status:   broker.StatusRejected,
		Reason:   reason.Error(),
		Time:     time.Now().UTC(),
	}
	if err := e.journal.Append(trade); err != nil {
		log.Printf("engine: journal rejected order: %v", err)
	}
	return broker.OrderResult{OrderID: trade.ID, Status: broker.StatusRejected, Price: price}, reason
}

// GetBalance returns the account snapshot. Equity is derived on read from
// cash plus the market value of open positions at their last marks.
func (e *Engine) GetBalance(ctx context.Context) (broker.Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bal, err := e.ledger.Balance(ctx)
	if err != nil {
		return broker.Account{}, err
	}

	return broker.Account{
		ID:          e.accountID,
		Currency:    e.currency,
		Cash:        bal.Cash,
		BuyingPower: bal.BuyingPower,
		Equity:      bal.Cash.Add(e.book.MarketValue()),
	}, nil
}

// GetPositions returns the open positions ordered by symbol.
func (e *Engine) GetPositions() []broker.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Positions()
}

// GetTradeHistory returns journal records matching f, newest first.
func (e *Engine) GetTradeHistory(f journal.Filter) ([]broker.Trade, error) {
	return e.journal.Trades(f)
}

// RefreshPrices marks every open position to a fresh price from the
// adapter and recomputes unrealized P/L. Prices are fetched outside the
// engine lock; the book mutation itself is serialized with fills.
func (e *Engine) RefreshPrices(ctx context.Context) error {
	e.mu.Lock()
	symbols := e.book.Symbols()
	e.mu.Unlock()

	if len(symbols) == 0 {
		return nil
	}

	marks := e.pricing.GetPrices(ctx, symbols)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.book.RefreshPrices(marks)
	if err := e.persistPositionsLocked(ctx); err != nil {
		return err
	}
	e.recordEquityLocked(ctx, time.Now().UTC())
	return nil
}

// ClosePosition fully closes the open position in symbol at the current
// price. Settles through the same sell path as a user order.
func (e *Engine) ClosePosition(ctx context.Context, symbol string) (broker.OrderResult, error) {
	price := e.pricing.GetPrice(ctx, symbol)

	e.mu.Lock()
	defer e.mu.Unlock()

	held := e.book.Quantity(symbol)
	if held.IsZero() {
		return broker.OrderResult{}, &broker.PositionNotFoundError{Symbol: symbol}
	}

	return e.settleSellLocked(ctx, broker.OrderRequest{
		Symbol:   symbol,
		Side:     broker.SideSell,
		Quantity: held,
	}, price)
}

// CloseAll closes every open position at current prices.
func (e *Engine) CloseAll(ctx context.Context) ([]broker.OrderResult, error) {
	e.mu.Lock()
	symbols := e.book.Symbols()
	e.mu.Unlock()

	var results []broker.OrderResult
	for _, symbol := range symbols {
		res, err := e.ClosePosition(ctx, symbol)
		if err != nil {
			var notFound *broker.PositionNotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Deposit credits amount to cash.
func (e *Engine) Deposit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, &broker.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Adjust(ctx, amount)
}

// Withdraw debits amount from cash; fails if cash would go negative.
func (e *Engine) Withdraw(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, &broker.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Adjust(ctx, amount.Neg())
}

// Reset clears derived trading state (open positions and history) while
// preserving cash and the account identity. A "fresh start" for demos.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.book = book.New()
	if err := e.store.Delete(ctx, e.positionsKey()); err != nil {
		return &broker.PersistenceError{Key: e.positionsKey(), Err: err}
	}
	if err := e.journal.Purge(); err != nil {
		return fmt.Errorf("purge journal: %w", err)
	}
	return nil
}

func (e *Engine) persistPositionsLocked(ctx context.Context) error {
	raw, err := json.Marshal(e.book.Positions())
	if err != nil {
		return &broker.PersistenceError{Key: e.positionsKey(), Err: err}
	}
	if err := e.store.Set(ctx, e.positionsKey(), raw); err != nil {
		return &broker.PersistenceError{Key: e.positionsKey(), Err: err}
	}
	return nil
}

// recordEquityLocked journals a display-only valuation snapshot. Failures
// are logged, not surfaced: snapshots are not authoritative state.
func (e *Engine) recordEquityLocked(ctx context.Context, at time.Time) {
	bal, err := e.ledger.Balance(ctx)
	if err != nil {
		log.Printf("engine: equity snapshot balance read: %v", err)
		return
	}
	mv := e.book.MarketValue()
	if err := e.journal.RecordEquity(journal.EquitySnapshot{
		Time:        at,
		Cash:        bal.Cash,
		Equity:      bal.Cash.Add(mv),
		MarketValue: mv,
	}); err != nil {
		log.Printf("engine: record equity snapshot: %v", err)
	}
}

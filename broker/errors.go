package broker

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError marks a malformed order request. The order is rejected
// before any state mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order: %s %s", e.Field, e.Reason)
}

// InsufficientFundsError marks a buy that would drive cash negative.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %s, have %s (short %s)",
		e.Required, e.Available, e.Shortfall())
}

func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Available)
}

// InsufficientPositionError marks a sell for more than the held quantity.
// Short selling is not supported.
type InsufficientPositionError struct {
	Symbol    string
	Held      decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientPositionError) Error() string {
	return fmt.Sprintf("insufficient position: %s holds %s, tried to sell %s",
		e.Symbol, e.Held, e.Requested)
}

// PositionNotFoundError marks a close or query against a symbol with no
// open position.
type PositionNotFoundError struct {
	Symbol string
}

func (e *PositionNotFoundError) Error() string {
	return fmt.Sprintf("no open position for %s", e.Symbol)
}

// PersistenceError marks a failed storage write. The triggering operation
// rolls in-memory state back to its pre-operation snapshot before
// surfacing this.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

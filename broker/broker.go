package broker

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether s is one of the two order sides.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

type OrderStatus string

const (
	StatusFilled   OrderStatus = "filled"
	StatusRejected OrderStatus = "rejected"
)

// Account is the per-session view of one user's funds. BuyingPower equals
// Cash (no margin model); Equity is Cash plus the market value of open
// positions at their last marks.
type Account struct {
	ID          string          `json:"id"`
	Currency    string          `json:"currency"`
	Cash        decimal.Decimal `json:"cash"`
	BuyingPower decimal.Decimal `json:"buying_power"`
	Equity      decimal.Decimal `json:"equity"`
}

// Position is an account's net long holding in one symbol. EntryPrice is
// the volume-weighted average cost basis; the unrealized fields are derived
// from CurrentPrice and never stored independently of it.
type Position struct {
	Symbol              string          `json:"symbol"`
	Quantity            decimal.Decimal `json:"quantity"`
	EntryPrice          decimal.Decimal `json:"entry_price"`
	CurrentPrice        decimal.Decimal `json:"current_price"`
	UnrealizedPL        decimal.Decimal `json:"unrealized_pl"`
	UnrealizedPLPercent decimal.Decimal `json:"unrealized_pl_percent"`
	OpenTime            time.Time       `json:"open_time"`
}

// MarketValue is the position's worth at its last mark.
func (p Position) MarketValue() decimal.Decimal {
	return p.Quantity.Mul(p.CurrentPrice)
}

// Trade is one execution attempt that cleared input validation. Immutable
// once created. RealizedPL is set only on fills that reduce or close a
// position; Reason is set only on rejections.
type Trade struct {
	ID         string           `json:"id"`
	Symbol     string           `json:"symbol"`
	Side       Side             `json:"side"`
	Quantity   decimal.Decimal  `json:"quantity"`
	Price      decimal.Decimal  `json:"price"`
	Status     OrderStatus      `json:"status"`
	RealizedPL *decimal.Decimal `json:"realized_pl,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	Time       time.Time        `json:"time"`
}

// OrderRequest is a user intent to trade, validated at the boundary.
type OrderRequest struct {
	Symbol   string          `json:"symbol"`
	Side     Side            `json:"side"`
	Quantity decimal.Decimal `json:"quantity"`
}

// OrderResult reports the synchronous outcome of an order submission.
type OrderResult struct {
	OrderID    string           `json:"order_id"`
	Status     OrderStatus      `json:"status"`
	Price      decimal.Decimal  `json:"price"`
	RealizedPL *decimal.Decimal `json:"realized_pl,omitempty"`
}

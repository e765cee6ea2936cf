package journal

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/broker"
)

const tradeColumns = `trade_id, symbol, side, quantity, price, status, realized_pl, reason, time`

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (broker.Trade, error) {
	row := j.db.QueryRow(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return broker.Trade{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return broker.Trade{}, err
	}
	return rec, nil
}

// Trades returns records matching f, newest first.
func (j *SQLite) Trades(f Filter) ([]broker.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE 1=1`
	var args []any

	if f.Symbol != "" {
		query += ` AND symbol = ?`
		args = append(args, f.Symbol)
	}
	if f.Side != "" {
		query += ` AND side = ?`
		args = append(args, string(f.Side))
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if !f.From.IsZero() {
		query += ` AND time >= ?`
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		query += ` AND time < ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY time DESC, trade_id DESC`

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []broker.Trade
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (broker.Trade, error) {
	var (
		rec        broker.Trade
		side       string
		status     string
		qty, price string
		realized   sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.Symbol, &side, &qty, &price,
		&status, &realized, &rec.Reason, &rec.Time); err != nil {
		return broker.Trade{}, err
	}

	rec.Side = broker.Side(side)
	rec.Status = broker.OrderStatus(status)

	var err error
	if rec.Quantity, err = decimal.NewFromString(qty); err != nil {
		return broker.Trade{}, fmt.Errorf("trade %s: bad quantity: %w", rec.ID, err)
	}
	if rec.Price, err = decimal.NewFromString(price); err != nil {
		return broker.Trade{}, fmt.Errorf("trade %s: bad price: %w", rec.ID, err)
	}
	if realized.Valid {
		pl, err := decimal.NewFromString(realized.String)
		if err != nil {
			return broker.Trade{}, fmt.Errorf("trade %s: bad realized_pl: %w", rec.ID, err)
		}
		rec.RealizedPL = &pl
	}
	return rec, nil
}

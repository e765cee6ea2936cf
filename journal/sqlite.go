package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/broker"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Append(t broker.Trade) error {
	var realized any
	if t.RealizedPL != nil {
		realized = t.RealizedPL.String()
	}

	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, side, quantity, price, status, realized_pl, reason, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Symbol, string(t.Side), t.Quantity.String(), t.Price.String(),
		string(t.Status), realized, t.Reason, t.Time,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (time, cash, equity, market_value)
		VALUES (?, ?, ?, ?)`,
		e.Time, e.Cash.String(), e.Equity.String(), e.MarketValue.String(),
	)
	return err
}

func (j *SQLite) EquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, cash, equity, market_value
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var (
			e                EquitySnapshot
			cash, equity, mv string
		)
		if err := rows.Scan(&e.Time, &cash, &equity, &mv); err != nil {
			return nil, err
		}
		if e.Cash, err = decimal.NewFromString(cash); err != nil {
			return nil, err
		}
		if e.Equity, err = decimal.NewFromString(equity); err != nil {
			return nil, err
		}
		if e.MarketValue, err = decimal.NewFromString(mv); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLite) Purge() error {
	if _, err := j.db.Exec(`DELETE FROM trades`); err != nil {
		return err
	}
	_, err := j.db.Exec(`DELETE FROM equity`)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

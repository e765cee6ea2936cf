package journal

import (
	"sync"
	"time"

	"github.com/rustyeddy/papertrader/broker"
)

// Memory keeps the history in a slice. Safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	trades []broker.Trade
	equity []EquitySnapshot
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(t broker.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, t)
	return nil
}

func (m *Memory) Trades(f Filter) ([]broker.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]broker.Trade, 0, len(m.trades))
	for i := len(m.trades) - 1; i >= 0; i-- {
		if f.matches(m.trades[i]) {
			out = append(out, m.trades[i])
		}
	}
	return out, nil
}

func (m *Memory) RecordEquity(e EquitySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.equity = append(m.equity, e)
	return nil
}

func (m *Memory) EquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []EquitySnapshot
	for _, e := range m.equity {
		if !e.Time.Before(start) && e.Time.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) Purge() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = nil
	m.equity = nil
	return nil
}

func (m *Memory) Close() error { return nil }

package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/pricing"
	"github.com/rustyeddy/papertrader/store"
)

// session bundles everything a command needs for one account session.
type session struct {
	cfg     *config.Config
	engine  *engine.Engine
	journal journal.Journal
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}

func buildSession(ctx context.Context, cfg *config.Config) (*session, error) {
	st, err := buildStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	j, err := buildJournal(cfg.Journal)
	if err != nil {
		return nil, err
	}

	px, err := buildPricing(cfg.Pricing)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(ctx, st, px, j,
		cfg.Account.ID, cfg.Account.Currency,
		decimal.NewFromFloat(cfg.Account.SeedBalance))
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, engine: eng, journal: j}, nil
}

func (s *session) close() {
	_ = s.journal.Close()
}

func buildStore(ctx context.Context, cfg config.Store) (store.Adapter, error) {
	switch cfg.Type {
	case "memory":
		return store.NewMemory(), nil
	case "file":
		return store.NewFile(cfg.Path)
	case "dynamo":
		return store.NewDynamo(ctx, cfg.Region, cfg.Table)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}

func buildJournal(cfg config.Journal) (journal.Journal, error) {
	switch cfg.Type {
	case "memory":
		return journal.NewMemory(), nil
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}

func buildPricing(cfg config.Pricing) (*pricing.Adapter, error) {
	timeout, err := cfg.ParseTimeout()
	if err != nil {
		return nil, err
	}

	var source pricing.Source
	switch cfg.Source {
	case "sim":
		base := make(map[string]decimal.Decimal, len(cfg.BasePrices))
		for symbol, px := range cfg.BasePrices {
			base[symbol] = decimal.NewFromFloat(px)
		}
		source = pricing.NewSimulated(base, cfg.Volatility, cfg.Seed)
	case "alpaca":
		source, err = pricing.NewAlpaca()
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown pricing source %q", cfg.Source)
	}

	return pricing.NewAdapter(source, timeout), nil
}

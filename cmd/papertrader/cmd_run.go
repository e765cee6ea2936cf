package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/journal"
)

// newRunCmd runs a short scripted session: buy, mark, partial sell, close,
// then print the account, positions and history. Useful as a smoke test
// and a demo of the accounting core.
func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a scripted demo trading session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			s, err := buildSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.close()

			orders := []broker.OrderRequest{
				{Symbol: "AAPL", Side: broker.SideBuy, Quantity: decimal.NewFromInt(10)},
				{Symbol: "SPY", Side: broker.SideBuy, Quantity: decimal.NewFromInt(5)},
				{Symbol: "AAPL", Side: broker.SideBuy, Quantity: decimal.NewFromInt(10)},
				{Symbol: "AAPL", Side: broker.SideSell, Quantity: decimal.NewFromInt(15)},
			}

			for _, req := range orders {
				res, err := s.engine.SubmitOrder(ctx, req)
				if err != nil {
					fmt.Printf("%-4s %-5s %8s  rejected: %v\n", req.Side, req.Symbol, req.Quantity, err)
					continue
				}
				line := fmt.Sprintf("%-4s %-5s %8s @ %s", req.Side, req.Symbol, req.Quantity, res.Price)
				if res.RealizedPL != nil {
					line += fmt.Sprintf("  realized %s", res.RealizedPL)
				}
				fmt.Println(line)
			}

			if err := s.engine.RefreshPrices(ctx); err != nil {
				return err
			}

			if _, err := s.engine.CloseAll(ctx); err != nil {
				return err
			}

			acct, err := s.engine.GetBalance(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("\naccount %s: cash=%s equity=%s\n", acct.ID, acct.Cash, acct.Equity)

			trades, err := s.engine.GetTradeHistory(journal.Filter{})
			if err != nil {
				return err
			}
			fmt.Printf("\ntrade history (%d records, newest first):\n", len(trades))
			for _, t := range trades {
				line := fmt.Sprintf("  %s  %-8s %-4s %-5s %8s @ %s", t.Time.Format("15:04:05"),
					t.Status, t.Side, t.Symbol, t.Quantity, t.Price)
				if t.RealizedPL != nil {
					line += fmt.Sprintf("  realized %s", t.RealizedPL)
				}
				if t.Reason != "" {
					line += "  (" + t.Reason + ")"
				}
				fmt.Println(line)
			}

			return nil
		},
	}
}

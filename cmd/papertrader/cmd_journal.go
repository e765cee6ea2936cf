package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/journal"
)

// newJournalCmd inspects a SQLite trade journal from the command line.
func newJournalCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Query a SQLite trade journal",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "./papertrader.sqlite", "path to SQLite journal DB")

	trade := &cobra.Command{
		Use:   "trade <trade_id>",
		Short: "Show a single trade by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.NewSQLite(dbPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer j.Close()

			rec, err := j.GetTrade(args[0])
			if err != nil {
				return err
			}
			printTrade(rec)
			return nil
		},
	}

	day := &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "List trades for a day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := time.Local
			dayStr := time.Now().In(loc).Format("2006-01-02")
			if len(args) == 1 {
				dayStr = args[0]
			}

			start, err := time.ParseInLocation("2006-01-02", dayStr, loc)
			if err != nil {
				return fmt.Errorf("date: %w", err)
			}
			end := start.Add(24 * time.Hour)

			j, err := journal.NewSQLite(dbPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer j.Close()

			recs, err := j.Trades(journal.Filter{From: start, To: end})
			if err != nil {
				return fmt.Errorf("query trades: %w", err)
			}
			for _, rec := range recs {
				printTrade(rec)
			}
			fmt.Printf("%d trade(s)\n", len(recs))
			return nil
		},
	}

	cmd.AddCommand(trade, day)
	return cmd
}

func printTrade(t broker.Trade) {
	line := fmt.Sprintf("%s  %s  %-8s %-4s %-6s %10s @ %s",
		t.ID, t.Time.Format(time.RFC3339), t.Status, t.Side, t.Symbol, t.Quantity, t.Price)
	if t.RealizedPL != nil {
		line += fmt.Sprintf("  realized %s", t.RealizedPL)
	}
	if t.Reason != "" {
		line += "  (" + t.Reason + ")"
	}
	fmt.Println(line)
}

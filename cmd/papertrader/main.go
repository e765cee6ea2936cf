package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Optional .env for ALPACA_* and AWS credentials; absence is fine.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "papertrader",
		Short: "Paper-trading ledger: simulated accounts, positions and trade history",
	}

	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML or JSON config file")

	root.AddCommand(
		newRunCmd(&configPath),
		newServeCmd(&configPath),
		newJournalCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package pricing

import (
	"context"
	"fmt"
	"os"

	"github.com/alpacahq/alpaca-trade-api-go/v2/marketdata"
	"github.com/shopspring/decimal"
)

const alpacaDataURL = "https://data.alpaca.markets"

// Alpaca fetches the latest quote midpoint from the Alpaca market data API.
type Alpaca struct {
	client marketdata.Client
}

// NewAlpaca builds a live Source from ALPACA_API_KEY / ALPACA_SECRET_KEY.
func NewAlpaca() (*Alpaca, error) {
	apiKey := os.Getenv("ALPACA_API_KEY")
	secretKey := os.Getenv("ALPACA_SECRET_KEY")
	if apiKey == "" || secretKey == "" {
		return nil, fmt.Errorf("ALPACA_API_KEY and ALPACA_SECRET_KEY must be set")
	}

	return &Alpaca{
		client: marketdata.NewClient(marketdata.ClientOpts{
			ApiKey:    apiKey,
			ApiSecret: secretKey,
			BaseURL:   alpacaDataURL,
		}),
	}, nil
}

func (a *Alpaca) Fetch(_ context.Context, symbol string) (decimal.Decimal, error) {
	quote, err := a.client.GetLatestQuote(symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("latest quote for %s: %w", symbol, err)
	}

	bid := decimal.NewFromFloat(quote.BidPrice)
	ask := decimal.NewFromFloat(quote.AskPrice)
	mid := bid.Add(ask).Div(decimal.NewFromInt(2))
	if !mid.IsPositive() {
		return decimal.Zero, fmt.Errorf("empty quote for %s", symbol)
	}
	return mid, nil
}

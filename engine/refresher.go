package engine

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher drives periodic price refreshes for an engine's open
// positions. The cron spec uses seconds granularity, e.g. "@every 5s".
type Refresher struct {
	cron   *cron.Cron
	engine *Engine
}

func NewRefresher(e *Engine, spec string) (*Refresher, error) {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.RefreshPrices(ctx); err != nil {
			log.Printf("refresher: refresh prices: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}

	return &Refresher{cron: c, engine: e}, nil
}

func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for a running tick to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

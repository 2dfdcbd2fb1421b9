package timeline

import (
	"context"
	"time"
)

// Pacer blocks between frames to hold the render loop to a cadence.
type Pacer interface {
	Wait(ctx context.Context) error
	Stop()
}

// tickerPacer releases one frame per tick.
type tickerPacer struct {
	ticker *time.Ticker
}

// NewRealtimePacer returns a pacer that releases fps frames per second.
func NewRealtimePacer(fps int) Pacer {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &tickerPacer{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

func (p *tickerPacer) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ticker.C:
		return nil
	}
}

func (p *tickerPacer) Stop() {
	p.ticker.Stop()
}

// freePacer never waits.
type freePacer struct{}

func (freePacer) Wait(ctx context.Context) error { return nil }
func (freePacer) Stop()                          {}

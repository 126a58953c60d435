// Package poller keeps a store resource warm by refreshing it on a fixed interval.
package poller

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshFunc adapts a plain function to Refresher.
type RefreshFunc func(ctx context.Context) error

func (f RefreshFunc) Refresh(ctx context.Context) error { return f(ctx) }

type Poller struct {
	name     string
	target   Refresher
	interval time.Duration
	logger   *zap.Logger
}

func NewPoller(name string, target Refresher, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{name: name, target: target, interval: interval, logger: logger}
}

// Run refreshes once immediately and then on every tick until ctx is done.
// A non-positive interval disables polling.
func (p *Poller) Run(ctx context.Context) {
	if p.interval <= 0 {
		return
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		p.refresh(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	err := p.target.Refresh(ctx)
	switch {
	case err == nil:
		p.logger.Debug("poll refreshed", zap.String("poller", p.name))
	case errors.Is(err, context.Canceled):
	default:
		p.logger.Warn("poll refresh failed", zap.String("poller", p.name), zap.Error(err))
	}
}

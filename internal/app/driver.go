package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper is the part of Service the driver runs on every tick.
type Sweeper interface {
	Sweep() int
	MatchAll(size int) int
}

type DriverConfig struct {
	Tick      time.Duration
	GroupSize int
	AutoMatch bool
}

// Driver is the only place deadlines are compared to the clock: on every
// tick it finalizes expired role checks, kick votes and proposals, then
// optionally matches the queues.
type Driver struct {
	svc Sweeper
	cfg DriverConfig
	log *zap.Logger

	once sync.Once
	done chan struct{}
}

func NewDriver(svc Sweeper, cfg DriverConfig, log *zap.Logger) *Driver {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.GroupSize <= 0 {
		cfg.GroupSize = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{svc: svc, cfg: cfg, log: log, done: make(chan struct{})}
}

// Start runs the driver in its own goroutine until ctx is cancelled. The
// returned func blocks until the goroutine has exited. Calling Start again
// is a no-op.
func (d *Driver) Start(ctx context.Context) (wait func()) {
	d.once.Do(func() {
		go func() {
			defer close(d.done)
			d.Run(ctx)
		}()
	})
	return func() { <-d.done }
}

// Run blocks, ticking until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.Tick)
	defer ticker.Stop()

	d.log.Info("lfg driver started",
		zap.Duration("tick", d.cfg.Tick),
		zap.Bool("autoMatch", d.cfg.AutoMatch),
	)
	for {
		select {
		case <-ctx.Done():
			d.log.Info("lfg driver stopped")
			return
		case <-ticker.C:
			d.Tick()
		}
	}
}

// Tick runs one pass.
func (d *Driver) Tick() {
	if n := d.svc.Sweep(); n > 0 {
		d.log.Debug("expired items finalized", zap.Int("count", n))
	}
	if !d.cfg.AutoMatch {
		return
	}
	if n := d.svc.MatchAll(d.cfg.GroupSize); n > 0 {
		d.log.Debug("proposals started", zap.Int("count", n))
	}
}

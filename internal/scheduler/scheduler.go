package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/surfsup-climate-api/internal/climate"
	"github.com/i474232898/surfsup-climate-api/internal/logger"
)

const probeTimeout = 30 * time.Second

// BoundsResolver is the part of climate.Service the probe needs.
type BoundsResolver interface {
	Bounds(ctx context.Context) (climate.Bounds, error)
}

// Status is the outcome of the latest dataset probe.
type Status struct {
	CheckedAt time.Time       `json:"checked_at"`
	Healthy   bool            `json:"healthy"`
	Empty     bool            `json:"empty"`
	Bounds    *climate.Bounds `json:"bounds,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Prober periodically resolves the dataset bounds so /health can report
// whether the Record Store is reachable and populated. It caches nothing the
// query paths read.
type Prober struct {
	scheduler *gocron.Scheduler
	resolver  BoundsResolver
	interval  time.Duration
	log       *logger.Logger

	mu   sync.RWMutex
	last *Status
}

// New creates a new Prober.
func New(resolver BoundsResolver, interval time.Duration, log *logger.Logger) *Prober {
	if log == nil {
		log = logger.Nop()
	}
	return &Prober{
		scheduler: gocron.NewScheduler(time.UTC),
		resolver:  resolver,
		interval:  interval,
		log:       log.With("component", "probe"),
	}
}

// Start schedules the probe job, which also runs once immediately.
func (p *Prober) Start() error {
	interval := p.interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, err := p.scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()

		p.Probe(ctx)
	})
	if err != nil {
		return err
	}

	p.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future probes.
func (p *Prober) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}

// Probe resolves the bounds once and records the result.
func (p *Prober) Probe(ctx context.Context) Status {
	status := Status{CheckedAt: time.Now().UTC()}

	bounds, err := p.resolver.Bounds(ctx)
	switch {
	case err == nil:
		status.Healthy = true
		status.Bounds = &bounds
		p.log.Debug("dataset probe", "oldest", bounds.Oldest, "most_recent", bounds.MostRecent)
	case errors.Is(err, climate.ErrEmptyDataset):
		// Reachable but empty is still a working store.
		status.Healthy = true
		status.Empty = true
		p.log.Warn("dataset probe: no observations")
	default:
		status.Error = err.Error()
		p.log.Error("dataset probe failed", "error", err)
	}

	p.mu.Lock()
	p.last = &status
	p.mu.Unlock()

	return status
}

// Last returns the latest probe result; ok is false before the first probe.
func (p *Prober) Last() (Status, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.last == nil {
		return Status{}, false
	}
	return *p.last, true
}

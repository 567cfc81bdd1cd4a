package store

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/surfsup-climate-api/internal/climate"
	"github.com/i474232898/surfsup-climate-api/internal/logger"
)

// BreakerConfig controls when the breaker opens and how long it stays open.
type BreakerConfig struct {
	MaxRequests      uint32        // requests allowed while half-open
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // open-state duration before probing again
	FailureThreshold uint32        // consecutive failures that open the breaker
}

// BreakerStore fails fast with StoreUnavailableError once the wrapped store
// has failed repeatedly. It never retries.
type BreakerStore struct {
	next    climate.RecordStore
	circuit *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps next with a circuit breaker.
func NewBreakerStore(next climate.RecordStore, cfg BreakerConfig, log *logger.Logger) *BreakerStore {
	if log == nil {
		log = logger.Nop()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "record-store",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &BreakerStore{next: next, circuit: cb}
}

// State reports the breaker's current state.
func (b *BreakerStore) State() gobreaker.State {
	return b.circuit.State()
}

func (b *BreakerStore) ScanAll(ctx context.Context) ([]climate.Observation, error) {
	return guard(b, "scan all", func() ([]climate.Observation, error) {
		return b.next.ScanAll(ctx)
	})
}

func (b *BreakerStore) ScanRange(ctx context.Context, q climate.RangeQuery) ([]climate.Observation, error) {
	return guard(b, "scan range", func() ([]climate.Observation, error) {
		return b.next.ScanRange(ctx, q)
	})
}

func (b *BreakerStore) ScanByStation(ctx context.Context) ([]climate.StationActivity, error) {
	return guard(b, "scan by station", func() ([]climate.StationActivity, error) {
		return b.next.ScanByStation(ctx)
	})
}

func (b *BreakerStore) ListStations(ctx context.Context) ([]climate.Station, error) {
	return guard(b, "list stations", func() ([]climate.Station, error) {
		return b.next.ListStations(ctx)
	})
}

// DateBounds uses the wrapped store's fast path when it has one and folds a
// full scan otherwise.
func (b *BreakerStore) DateBounds(ctx context.Context) (climate.Date, climate.Date, bool, error) {
	type bounds struct {
		oldest, mostRecent climate.Date
		ok                 bool
	}

	res, err := guard(b, "date bounds", func() (bounds, error) {
		if bs, ok := b.next.(climate.BoundsScanner); ok {
			oldest, mostRecent, ok, err := bs.DateBounds(ctx)
			return bounds{oldest, mostRecent, ok}, err
		}
		observations, err := b.next.ScanAll(ctx)
		if err != nil {
			return bounds{}, err
		}
		oldest, mostRecent, ok := climate.FoldBounds(observations)
		return bounds{oldest, mostRecent, ok}, nil
	})
	return res.oldest, res.mostRecent, res.ok, err
}

// guard runs fn through the breaker. Only StoreUnavailableError counts as a
// failure; other errors (bad data, cancellation) pass through without tripping it.
func guard[T any](b *BreakerStore, op string, fn func() (T, error)) (T, error) {
	var (
		zero    T
		callErr error
	)

	result, err := b.circuit.Execute(func() (interface{}, error) {
		v, err := fn()
		if err != nil {
			if climate.IsStoreUnavailable(err) {
				return nil, err
			}
			callErr = err
		}
		return v, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, &climate.StoreUnavailableError{Op: op, Err: err}
		}
		return zero, err
	}
	if callErr != nil {
		return zero, callErr
	}

	v, _ := result.(T)
	return v, nil
}

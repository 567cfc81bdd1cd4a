package climate

import (
	"context"
	"fmt"
)

// Oldest returns the earliest observation date.
func (s *Service) Oldest(ctx context.Context) (Date, error) {
	oldest, _, err := s.dateBounds(ctx)
	return oldest, err
}

// MostRecent returns the latest observation date.
func (s *Service) MostRecent(ctx context.Context) (Date, error) {
	_, mostRecent, err := s.dateBounds(ctx)
	return mostRecent, err
}

// WindowStart returns MostRecent minus WindowDays calendar days.
func (s *Service) WindowStart(ctx context.Context) (Date, error) {
	mostRecent, err := s.MostRecent(ctx)
	if err != nil {
		return Date{}, err
	}
	return windowStart(mostRecent), nil
}

// Bounds resolves oldest, most recent and window start from a single read.
func (s *Service) Bounds(ctx context.Context) (Bounds, error) {
	oldest, mostRecent, err := s.dateBounds(ctx)
	if err != nil {
		return Bounds{}, err
	}
	return Bounds{
		Oldest:      oldest,
		MostRecent:  mostRecent,
		WindowStart: windowStart(mostRecent),
	}, nil
}

func windowStart(mostRecent Date) Date {
	return mostRecent.AddDays(-WindowDays)
}

func (s *Service) dateBounds(ctx context.Context) (Date, Date, error) {
	if bs, ok := s.store.(BoundsScanner); ok {
		oldest, mostRecent, ok, err := bs.DateBounds(ctx)
		if err != nil {
			return Date{}, Date{}, fmt.Errorf("resolve date bounds: %w", err)
		}
		if !ok {
			return Date{}, Date{}, ErrEmptyDataset
		}
		return oldest, mostRecent, nil
	}

	observations, err := s.store.ScanAll(ctx)
	if err != nil {
		return Date{}, Date{}, fmt.Errorf("scan observations: %w", err)
	}
	oldest, mostRecent, ok := FoldBounds(observations)
	if !ok {
		return Date{}, Date{}, ErrEmptyDataset
	}
	return oldest, mostRecent, nil
}

// FoldBounds returns the minimum and maximum dates of observations.
// ok is false when observations is empty.
func FoldBounds(observations []Observation) (oldest, mostRecent Date, ok bool) {
	if len(observations) == 0 {
		return Date{}, Date{}, false
	}

	oldest, mostRecent = observations[0].Date, observations[0].Date
	for _, o := range observations[1:] {
		if o.Date.Before(oldest) {
			oldest = o.Date
		}
		if o.Date.After(mostRecent) {
			mostRecent = o.Date
		}
	}
	return oldest, mostRecent, true
}

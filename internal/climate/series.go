package climate

import (
	"context"
	"fmt"
	"sort"
)

// SeriesFor returns the station's (date, value) pairs for field from
// windowStart onwards, ascending by date with one entry per date.
// When a date has several observations the first one in store order is kept.
func (s *Service) SeriesFor(ctx context.Context, field Field, station string, windowStart Date) ([]SeriesPoint, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unknown field %q", field)
	}

	q := RangeQuery{Station: &station, Field: field, Start: windowStart}
	observations, err := s.store.ScanRange(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("scan range %s: %w", q, err)
	}

	// Stores already order by date; the stable sort keeps their same-date order.
	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].Date.Before(observations[j].Date)
	})

	series := make([]SeriesPoint, 0, len(observations))
	for _, o := range observations {
		if n := len(series); n > 0 && series[n-1].Date.Equal(o.Date) {
			continue
		}
		series = append(series, SeriesPoint{Date: o.Date, Value: o.Value(field)})
	}
	return series, nil
}

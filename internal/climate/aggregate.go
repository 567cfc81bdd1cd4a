package climate

import (
	"context"
	"fmt"
)

// Aggregate computes min, mean and max of field over observations dated in
// [start, end] (end optional), optionally restricted to one station.
// Null values are skipped. An empty match yields a Summary with all values nil.
func (s *Service) Aggregate(ctx context.Context, field Field, start Date, end *Date, station *string) (Summary, error) {
	if !field.Valid() {
		return Summary{}, fmt.Errorf("unknown field %q", field)
	}

	// An inverted range cannot match anything.
	if end != nil && end.Before(start) {
		return Summary{}, nil
	}

	q := RangeQuery{Station: station, Field: field, Start: start, End: end}
	observations, err := s.store.ScanRange(ctx, q)
	if err != nil {
		return Summary{}, fmt.Errorf("scan range %s: %w", q, err)
	}

	return summarize(observations, field), nil
}

func summarize(observations []Observation, field Field) Summary {
	var (
		lo, hi, sum float64
		n           int
	)

	for _, o := range observations {
		v := o.Value(field)
		if v == nil {
			continue
		}
		if n == 0 || *v < lo {
			lo = *v
		}
		if n == 0 || *v > hi {
			hi = *v
		}
		sum += *v
		n++
	}

	if n == 0 {
		return Summary{}
	}

	avg := sum / float64(n)
	return Summary{Min: &lo, Average: &avg, Max: &hi}
}

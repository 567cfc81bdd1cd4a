package climate

import (
	"context"
	"fmt"
	"sort"
)

// The methods below compose the core components into the published queries.

// PrecipitationSince returns every station's precipitation reading from the
// trailing window start onwards, ascending by date.
func (s *Service) PrecipitationSince(ctx context.Context) ([]Observation, error) {
	start, err := s.WindowStart(ctx)
	if err != nil {
		return nil, err
	}

	q := RangeQuery{Field: FieldPrecipitation, Start: start}
	observations, err := s.store.ScanRange(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("scan range %s: %w", q, err)
	}
	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].Date.Before(observations[j].Date)
	})

	s.log.Debug("precipitation window", "window_start", start, "rows", len(observations))
	return observations, nil
}

// StationIDs returns the ids of the raw station list, in store order.
func (s *Service) StationIDs(ctx context.Context) ([]string, error) {
	stations, err := s.store.ListStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}

	ids := make([]string, 0, len(stations))
	for _, st := range stations {
		ids = append(ids, st.StationID)
	}
	return ids, nil
}

// MostActiveTemperatures returns the temperature series of the most active
// station over the trailing window.
func (s *Service) MostActiveTemperatures(ctx context.Context) (string, []SeriesPoint, error) {
	station, err := s.MostActiveStation(ctx)
	if err != nil {
		return "", nil, err
	}
	start, err := s.WindowStart(ctx)
	if err != nil {
		return "", nil, err
	}

	series, err := s.SeriesFor(ctx, FieldTemperature, station, start)
	if err != nil {
		return "", nil, err
	}
	return station, series, nil
}

// TemperatureSummary aggregates temperature from start to end (end may be
// empty for "to the end of the dataset"). The result always has one element.
func (s *Service) TemperatureSummary(ctx context.Context, start, end string) ([]Summary, error) {
	from, err := ParseDate(start)
	if err != nil {
		return nil, err
	}

	var to *Date
	if end != "" {
		d, err := ParseDate(end)
		if err != nil {
			return nil, err
		}
		to = &d
	}

	summary, err := s.Aggregate(ctx, FieldTemperature, from, to, nil)
	if err != nil {
		return nil, err
	}
	return []Summary{summary}, nil
}

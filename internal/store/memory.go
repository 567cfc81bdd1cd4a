package store

import (
	"context"
	"sort"
	"sync"

	"github.com/i474232898/surfsup-climate-api/internal/climate"
)

// MemoryStore is a concurrency-safe in-memory Record Store.
// Observations are kept in insertion order, which is the order same-date
// observations are returned in.
type MemoryStore struct {
	mu sync.RWMutex

	observations []climate.Observation
	stations     []climate.Station
}

// NewMemoryStore creates a MemoryStore holding the given observations.
func NewMemoryStore(observations ...climate.Observation) *MemoryStore {
	s := &MemoryStore{}
	s.Add(observations...)
	return s
}

// Add appends observations. It exists for seeding; the store is read-only once serving.
func (s *MemoryStore) Add(observations ...climate.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observations = append(s.observations, observations...)
}

// AddStations appends rows to the station list.
func (s *MemoryStore) AddStations(stations ...climate.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stations = append(s.stations, stations...)
}

// ScanAll returns a copy of every observation.
func (s *MemoryStore) ScanAll(ctx context.Context) ([]climate.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]climate.Observation, len(s.observations))
	copy(out, s.observations)
	return out, nil
}

// ScanRange returns the observations matching q, ascending by date.
func (s *MemoryStore) ScanRange(ctx context.Context, q climate.RangeQuery) ([]climate.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []climate.Observation
	for _, o := range s.observations {
		if q.Matches(o) {
			result = append(result, o)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// ScanByStation counts non-null precipitation observations per station, in
// order of each station's first appearance.
func (s *MemoryStore) ScanByStation(ctx context.Context) ([]climate.StationActivity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	index := make(map[string]int)
	var groups []climate.StationActivity
	for _, o := range s.observations {
		i, ok := index[o.StationID]
		if !ok {
			i = len(groups)
			index[o.StationID] = i
			groups = append(groups, climate.StationActivity{StationID: o.StationID})
		}
		if o.Precipitation != nil {
			groups[i].Count++
		}
	}
	return groups, nil
}

// ListStations returns the seeded station list. Without one, stations are
// derived from the observations in order of first appearance.
func (s *MemoryStore) ListStations(ctx context.Context) ([]climate.Station, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.stations) > 0 {
		out := make([]climate.Station, len(s.stations))
		copy(out, s.stations)
		return out, nil
	}

	seen := make(map[string]struct{})
	var out []climate.Station
	for _, o := range s.observations {
		if _, ok := seen[o.StationID]; ok {
			continue
		}
		seen[o.StationID] = struct{}{}
		out = append(out, climate.Station{StationID: o.StationID})
	}
	return out, nil
}

package climate

import (
	"context"
	"fmt"
	"sort"
)

// StationActivity returns every station ordered by non-null precipitation count,
// descending. Equal counts are ordered by station id ascending.
func (s *Service) StationActivity(ctx context.Context) ([]StationActivity, error) {
	groups, err := s.store.ScanByStation(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan stations: %w", err)
	}

	ranked := make([]StationActivity, len(groups))
	copy(ranked, groups)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].StationID < ranked[j].StationID
	})
	return ranked, nil
}

// MostActiveStation returns the station with the most non-null precipitation
// observations. Ties go to the lexicographically smallest station id.
func (s *Service) MostActiveStation(ctx context.Context) (string, error) {
	ranked, err := s.StationActivity(ctx)
	if err != nil {
		return "", err
	}
	if len(ranked) == 0 {
		return "", ErrEmptyDataset
	}

	s.log.Debug("most active station", "station", ranked[0].StationID, "count", ranked[0].Count)
	return ranked[0].StationID, nil
}

package climate

import "context"

// RecordStore is the read-only data source the core depends on.
// Implementations own their connection lifecycle; every method is a single
// scoped read and must release whatever it acquires before returning.
type RecordStore interface {
	// ScanAll returns every observation.
	ScanAll(ctx context.Context) ([]Observation, error)

	// ScanRange returns observations matching q, ascending by date. Same-date
	// observations keep the store's order. Only StationID, Date and q.Field are
	// guaranteed to be populated.
	ScanRange(ctx context.Context, q RangeQuery) ([]Observation, error)

	// ScanByStation groups observations by station, counting non-null precipitation values.
	ScanByStation(ctx context.Context) ([]StationActivity, error)

	// ListStations returns the raw station list.
	ListStations(ctx context.Context) ([]Station, error)
}

// BoundsScanner is implemented by stores that can compute the oldest and most
// recent observation dates without a full scan. ok is false for an empty dataset.
type BoundsScanner interface {
	DateBounds(ctx context.Context) (oldest, mostRecent Date, ok bool, err error)
}

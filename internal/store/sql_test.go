package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/surfsup-climate-api/internal/climate"
)

func strp(s string) *string { return &s }

// openTestSQL opens a private in-memory SQLite database. A single connection
// keeps every query on the same in-memory database.
func openTestSQL(t *testing.T) *SQLStore {
	t.Helper()

	s, err := OpenSQL(context.Background(), DriverSQLite, ":memory:", SQLOptions{MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedSQL creates the dataset tables and inserts rows in the given order.
func seedSQL(t *testing.T, s *SQLStore, measurements []measurementRow, stations []stationRow) {
	t.Helper()

	require.NoError(t, s.db.AutoMigrate(&measurementRow{}, &stationRow{}))
	if len(measurements) > 0 {
		require.NoError(t, s.db.Create(&measurements).Error)
	}
	if len(stations) > 0 {
		require.NoError(t, s.db.Create(&stations).Error)
	}
}

func scenarioRows() []measurementRow {
	return []measurementRow{
		{Station: "A", Date: "2017-01-01", Prcp: fp(1.0), Tobs: fp(70)},
		{Station: "B", Date: "2017-01-01", Prcp: fp(0.5), Tobs: fp(68)},
		{Station: "A", Date: "2017-06-01", Prcp: nil, Tobs: fp(75)},
	}
}

func TestOpenSQLUnknownDriver(t *testing.T) {
	_, err := OpenSQL(context.Background(), "oracle", "", SQLOptions{})
	assert.ErrorContains(t, err, "unsupported store driver")
}

func TestValidateSchema(t *testing.T) {
	s := openTestSQL(t)
	assert.ErrorIs(t, s.ValidateSchema(), ErrSchemaMismatch)

	require.NoError(t, s.db.Exec(`CREATE TABLE measurement (id INTEGER PRIMARY KEY, station TEXT, date TEXT, prcp REAL)`).Error)
	require.NoError(t, s.db.Exec(`CREATE TABLE station (id INTEGER PRIMARY KEY, station TEXT)`).Error)
	err := s.ValidateSchema()
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.ErrorContains(t, err, "measurement.tobs")

	require.NoError(t, s.db.Exec(`ALTER TABLE measurement ADD COLUMN tobs REAL`).Error)
	assert.NoError(t, s.ValidateSchema())
}

func TestSQLStoreScanRange(t *testing.T) {
	s := openTestSQL(t)
	seedSQL(t, s, []measurementRow{
		{Station: "A", Date: "2017-01-03", Prcp: fp(0.1), Tobs: fp(70)},
		{Station: "B", Date: "2017-01-01", Prcp: fp(0.2), Tobs: fp(68)},
		{Station: "A", Date: "2017-01-01", Prcp: nil, Tobs: fp(69)},
		{Station: "A", Date: "2016-12-31", Prcp: fp(0.3), Tobs: fp(71)},
	}, nil)
	ctx := context.Background()

	got, err := s.ScanRange(ctx, climate.RangeQuery{Field: climate.FieldTemperature, Start: climate.MustParseDate("2017-01-01")})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "B", got[0].StationID)
	assert.Equal(t, "A", got[1].StationID)
	assert.Equal(t, 69.0, *got[1].Temperature)
	// Only the requested field is selected.
	assert.Nil(t, got[0].Precipitation)
	assert.Equal(t, "2017-01-03", got[2].Date.String())

	end := climate.MustParseDate("2017-01-02")
	got, err = s.ScanRange(ctx, climate.RangeQuery{Station: strp("A"), Field: climate.FieldPrecipitation, Start: climate.MustParseDate("2016-01-01"), End: &end})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0.3, *got[0].Precipitation)
	assert.Nil(t, got[1].Precipitation)

	_, err = s.ScanRange(ctx, climate.RangeQuery{Field: "humidity"})
	assert.Error(t, err)
}

func TestSQLStoreScanByStation(t *testing.T) {
	s := openTestSQL(t)
	seedSQL(t, s, []measurementRow{
		{Station: "C", Date: "2017-01-01", Tobs: fp(70)},
		{Station: "C", Date: "2017-01-02", Tobs: fp(70)},
		{Station: "C", Date: "2017-01-03", Prcp: fp(0), Tobs: fp(70)},
		{Station: "B", Date: "2017-01-01", Prcp: fp(0.1), Tobs: fp(70)},
		{Station: "A", Date: "2017-01-01", Prcp: fp(0.4), Tobs: fp(70)},
		{Station: "A", Date: "2017-01-02", Prcp: fp(0.2), Tobs: fp(70)},
	}, nil)

	groups, err := s.ScanByStation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []climate.StationActivity{
		{StationID: "A", Count: 2},
		{StationID: "B", Count: 1},
		{StationID: "C", Count: 1},
	}, groups)
}

func TestSQLStoreDateBounds(t *testing.T) {
	s := openTestSQL(t)
	seedSQL(t, s, nil, nil)
	ctx := context.Background()

	_, _, ok, err := s.DateBounds(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	rows := scenarioRows()
	require.NoError(t, s.db.Create(&rows).Error)
	oldest, mostRecent, ok, err := s.DateBounds(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2017-01-01", oldest.String())
	assert.Equal(t, "2017-06-01", mostRecent.String())
}

func TestSQLStoreMalformedDate(t *testing.T) {
	s := openTestSQL(t)
	seedSQL(t, s, []measurementRow{{Station: "A", Date: "2017-06-01 00:00:00", Tobs: fp(70)}}, nil)
	ctx := context.Background()

	_, err := s.ScanAll(ctx)
	assert.True(t, climate.IsDateParseError(err))

	svc := climate.NewService(s, nil)
	_, err = svc.WindowStart(ctx)
	assert.True(t, climate.IsDateParseError(err))
	assert.False(t, climate.IsStoreUnavailable(err))
}

func TestSQLStoreListStations(t *testing.T) {
	s := openTestSQL(t)
	seedSQL(t, s, nil, []stationRow{
		{Station: "USC00519397", Name: strp("WAIKIKI 717.2, HI US"), Latitude: fp(21.2716)},
		{Station: "USC00513117"},
	})

	stations, err := s.ListStations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, "USC00519397", stations[0].StationID)
	assert.Equal(t, "WAIKIKI 717.2, HI US", stations[0].Name)
	assert.Equal(t, 21.2716, *stations[0].Latitude)
	assert.Equal(t, "", stations[1].Name)
}

func TestSQLStoreThroughService(t *testing.T) {
	s := openTestSQL(t)
	seedSQL(t, s, scenarioRows(), nil)
	svc := climate.NewService(s, nil)
	ctx := context.Background()

	station, err := svc.MostActiveStation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", station)

	got, err := svc.TemperatureSummary(ctx, "2017-01-01", "2017-01-01")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 68.0, *got[0].Min)
	assert.Equal(t, 69.0, *got[0].Average)
	assert.Equal(t, 70.0, *got[0].Max)

	got, err = svc.TemperatureSummary(ctx, "2020-01-01", "")
	require.NoError(t, err)
	assert.True(t, got[0].Empty())

	series, err := svc.SeriesFor(ctx, climate.FieldPrecipitation, "A", climate.MustParseDate("2017-01-01"))
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 1.0, *series[0].Value)
	assert.Nil(t, series[1].Value)
}

func TestSQLStoreErrors(t *testing.T) {
	s := openTestSQL(t)
	seedSQL(t, s, scenarioRows(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ScanAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, climate.IsStoreUnavailable(err))

	require.NoError(t, s.Close())
	_, err = s.ScanByStation(context.Background())
	assert.True(t, climate.IsStoreUnavailable(err))
}

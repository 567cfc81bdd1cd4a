package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/i474232898/surfsup-climate-api/internal/climate"
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrSchemaMismatch is returned by ValidateSchema when a table or column is missing.
var ErrSchemaMismatch = errors.New("database schema does not match the observation dataset")

// measurementRow is the measurement table, one row per observation.
type measurementRow struct {
	ID      int      `gorm:"column:id;primaryKey"`
	Station string   `gorm:"column:station"`
	Date    string   `gorm:"column:date"` // YYYY-MM-DD text
	Prcp    *float64 `gorm:"column:prcp"`
	Tobs    *float64 `gorm:"column:tobs"`
}

func (measurementRow) TableName() string { return "measurement" }

// stationRow is the station table.
type stationRow struct {
	ID        int      `gorm:"column:id;primaryKey"`
	Station   string   `gorm:"column:station"`
	Name      *string  `gorm:"column:name"`
	Latitude  *float64 `gorm:"column:latitude"`
	Longitude *float64 `gorm:"column:longitude"`
	Elevation *float64 `gorm:"column:elevation"`
}

func (stationRow) TableName() string { return "station" }

var requiredSchema = []struct {
	model   interface{}
	columns []string
}{
	{&measurementRow{}, []string{"id", "station", "date", "prcp", "tobs"}},
	{&stationRow{}, []string{"id", "station"}},
}

// SQLOptions tunes an SQLStore.
type SQLOptions struct {
	MaxOpenConns int
	QueryTimeout time.Duration // per call; 0 disables
}

// SQLStore is a Record Store over the measurement/station tables.
type SQLStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// OpenSQL connects to the database with the named driver and checks it is reachable.
func OpenSQL(ctx context.Context, driver, dsn string, opts SQLOptions) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, &climate.StoreUnavailableError{Op: "open", Err: err}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, &climate.StoreUnavailableError{Op: "open", Err: err}
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, &climate.StoreUnavailableError{Op: "ping", Err: err}
	}

	return NewSQLStore(db, opts), nil
}

// NewSQLStore wraps an existing gorm handle.
func NewSQLStore(db *gorm.DB, opts SQLOptions) *SQLStore {
	return &SQLStore{db: db, timeout: opts.QueryTimeout}
}

// ValidateSchema checks that every table and column the store reads exists.
func (s *SQLStore) ValidateSchema() error {
	m := s.db.Migrator()
	for _, t := range requiredSchema {
		if !m.HasTable(t.model) {
			return fmt.Errorf("%w: missing table %q", ErrSchemaMismatch, tableName(t.model))
		}
		for _, col := range t.columns {
			if !m.HasColumn(t.model, col) {
				return fmt.Errorf("%w: missing column %s.%s", ErrSchemaMismatch, tableName(t.model), col)
			}
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ScanAll returns every observation ordered by date, then row id.
func (s *SQLStore) ScanAll(ctx context.Context) ([]climate.Observation, error) {
	ctx, cancel := s.scope(ctx)
	defer cancel()

	var rows []measurementRow
	if err := s.db.WithContext(ctx).Order("date").Order("id").Find(&rows).Error; err != nil {
		return nil, storeError("scan all", err)
	}
	return toObservations(rows)
}

// ScanRange selects the station, date and requested field of matching rows.
func (s *SQLStore) ScanRange(ctx context.Context, q climate.RangeQuery) ([]climate.Observation, error) {
	column, err := fieldColumn(q.Field)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.scope(ctx)
	defer cancel()

	tx := s.db.WithContext(ctx).
		Model(&measurementRow{}).
		Select("id", "station", "date", column).
		Where("date >= ?", q.Start.String())
	if q.End != nil {
		tx = tx.Where("date <= ?", q.End.String())
	}
	if q.Station != nil {
		tx = tx.Where("station = ?", *q.Station)
	}

	var rows []measurementRow
	if err := tx.Order("date").Order("id").Find(&rows).Error; err != nil {
		return nil, storeError("scan range", err)
	}
	return toObservations(rows)
}

// ScanByStation counts non-null prcp values per station.
func (s *SQLStore) ScanByStation(ctx context.Context) ([]climate.StationActivity, error) {
	ctx, cancel := s.scope(ctx)
	defer cancel()

	var rows []struct {
		Station  string
		Activity int
	}
	err := s.db.WithContext(ctx).
		Model(&measurementRow{}).
		Select("station, COUNT(prcp) AS activity").
		Group("station").
		Order("activity DESC").
		Order("station").
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("scan by station", err)
	}

	groups := make([]climate.StationActivity, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, climate.StationActivity{StationID: r.Station, Count: r.Activity})
	}
	return groups, nil
}

// ListStations returns the station table in row id order.
func (s *SQLStore) ListStations(ctx context.Context) ([]climate.Station, error) {
	ctx, cancel := s.scope(ctx)
	defer cancel()

	var rows []stationRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, storeError("list stations", err)
	}

	stations := make([]climate.Station, 0, len(rows))
	for _, r := range rows {
		st := climate.Station{
			StationID: r.Station,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Elevation: r.Elevation,
		}
		if r.Name != nil {
			st.Name = *r.Name
		}
		stations = append(stations, st)
	}
	return stations, nil
}

// DateBounds computes MIN(date) and MAX(date) in one query.
func (s *SQLStore) DateBounds(ctx context.Context) (climate.Date, climate.Date, bool, error) {
	ctx, cancel := s.scope(ctx)
	defer cancel()

	var b struct {
		Oldest     *string
		MostRecent *string
	}
	err := s.db.WithContext(ctx).
		Model(&measurementRow{}).
		Select("MIN(date) AS oldest, MAX(date) AS most_recent").
		Scan(&b).Error
	if err != nil {
		return climate.Date{}, climate.Date{}, false, storeError("date bounds", err)
	}
	if b.Oldest == nil || b.MostRecent == nil {
		return climate.Date{}, climate.Date{}, false, nil
	}

	oldest, err := climate.ParseDate(*b.Oldest)
	if err != nil {
		return climate.Date{}, climate.Date{}, false, err
	}
	mostRecent, err := climate.ParseDate(*b.MostRecent)
	if err != nil {
		return climate.Date{}, climate.Date{}, false, err
	}
	return oldest, mostRecent, true, nil
}

func (s *SQLStore) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func fieldColumn(f climate.Field) (string, error) {
	switch f {
	case climate.FieldPrecipitation:
		return "prcp", nil
	case climate.FieldTemperature:
		return "tobs", nil
	default:
		return "", fmt.Errorf("unknown field %q", f)
	}
}

func toObservations(rows []measurementRow) ([]climate.Observation, error) {
	observations := make([]climate.Observation, 0, len(rows))
	for _, r := range rows {
		date, err := climate.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("measurement %d: %w", r.ID, err)
		}
		observations = append(observations, climate.Observation{
			StationID:     r.Station,
			Date:          date,
			Precipitation: r.Prcp,
			Temperature:   r.Tobs,
		})
	}
	return observations, nil
}

// storeError wraps driver failures as StoreUnavailableError. Cancellation and
// deadlines are returned as-is.
func storeError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &climate.StoreUnavailableError{Op: op, Err: err}
}

func tableName(model interface{}) string {
	if t, ok := model.(interface{ TableName() string }); ok {
		return t.TableName()
	}
	return fmt.Sprintf("%T", model)
}

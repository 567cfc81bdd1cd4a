package climate

import "fmt"

// WindowDays is the length of the trailing window anchored at the most recent observation.
const WindowDays = 365

// Field selects the numeric attribute of an Observation to read.
type Field string

const (
	FieldPrecipitation Field = "precipitation"
	FieldTemperature   Field = "temperature"
)

// Valid reports whether f names a known observation field.
func (f Field) Valid() bool {
	return f == FieldPrecipitation || f == FieldTemperature
}

// Observation is one dated measurement at a station. Either value may be null.
type Observation struct {
	StationID     string   `json:"station"`
	Date          Date     `json:"date"`
	Precipitation *float64 `json:"prcp"`
	Temperature   *float64 `json:"tobs"`
}

// Value returns the observation's value for f, or nil when it is null or f is unknown.
func (o Observation) Value(f Field) *float64 {
	switch f {
	case FieldPrecipitation:
		return o.Precipitation
	case FieldTemperature:
		return o.Temperature
	default:
		return nil
	}
}

// Station is a measurement location. Only StationID is guaranteed; the rest is
// filled when the store carries station metadata.
type Station struct {
	StationID string   `json:"station"`
	Name      string   `json:"name,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Elevation *float64 `json:"elevation,omitempty"`
}

// StationActivity is one group of ScanByStation: a station and its count of
// non-null precipitation observations.
type StationActivity struct {
	StationID string `json:"station"`
	Count     int    `json:"count"`
}

// Bounds is the temporal extent of the dataset and the derived window start.
type Bounds struct {
	Oldest      Date `json:"oldest_date"`
	MostRecent  Date `json:"most_recent_date"`
	WindowStart Date `json:"window_start_date"`
}

// Summary is a min/avg/max aggregate. All three are nil when nothing matched.
type Summary struct {
	Min     *float64 `json:"Min"`
	Average *float64 `json:"Average"`
	Max     *float64 `json:"Max"`
}

// Empty reports whether the aggregate was computed over no values.
func (s Summary) Empty() bool {
	return s.Min == nil && s.Average == nil && s.Max == nil
}

// SeriesPoint is one entry of a per-date series.
type SeriesPoint struct {
	Date  Date     `json:"date"`
	Value *float64 `json:"value"`
}

// RangeQuery filters a ScanRange. Station and End are optional; both date bounds are inclusive.
type RangeQuery struct {
	Station *string
	Field   Field
	Start   Date
	End     *Date
}

// Matches reports whether o passes the query's station and date filters.
func (q RangeQuery) Matches(o Observation) bool {
	if q.Station != nil && o.StationID != *q.Station {
		return false
	}
	if o.Date.Before(q.Start) {
		return false
	}
	if q.End != nil && o.Date.After(*q.End) {
		return false
	}
	return true
}

func (q RangeQuery) String() string {
	station, end := "*", "*"
	if q.Station != nil {
		station = *q.Station
	}
	if q.End != nil {
		end = q.End.String()
	}
	return fmt.Sprintf("%s station=%s [%s, %s]", q.Field, station, q.Start, end)
}

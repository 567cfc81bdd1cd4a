package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/i474232898/surfsup-climate-api/internal/climate"
)

var (
	measurementColumns = []string{"station", "date", "prcp", "tobs"}
	stationColumns     = []string{"station"}
)

// LoadCSV builds a MemoryStore from the measurement export
// (station,date,prcp,tobs) and, when stationsPath is not empty, the station
// export (station,name,latitude,longitude,elevation).
func LoadCSV(measurementsPath, stationsPath string) (*MemoryStore, error) {
	s := NewMemoryStore()

	f, err := os.Open(measurementsPath)
	if err != nil {
		return nil, fmt.Errorf("open measurements: %w", err)
	}
	defer f.Close()

	observations, err := ReadMeasurements(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", measurementsPath, err)
	}
	s.Add(observations...)

	if stationsPath == "" {
		return s, nil
	}

	sf, err := os.Open(stationsPath)
	if err != nil {
		return nil, fmt.Errorf("open stations: %w", err)
	}
	defer sf.Close()

	stations, err := ReadStations(sf)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", stationsPath, err)
	}
	s.AddStations(stations...)

	return s, nil
}

// ReadMeasurements parses a measurement CSV with a header row. Empty prcp or
// tobs cells are null.
func ReadMeasurements(r io.Reader) ([]climate.Observation, error) {
	records, cols, err := readTable(r, measurementColumns)
	if err != nil {
		return nil, err
	}

	observations := make([]climate.Observation, 0, len(records))
	for i, rec := range records {
		line := i + 2

		date, err := climate.ParseDate(strings.TrimSpace(rec[cols["date"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		prcp, err := parseNullable(rec[cols["prcp"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: prcp: %w", line, err)
		}
		tobs, err := parseNullable(rec[cols["tobs"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: tobs: %w", line, err)
		}

		observations = append(observations, climate.Observation{
			StationID:     strings.TrimSpace(rec[cols["station"]]),
			Date:          date,
			Precipitation: prcp,
			Temperature:   tobs,
		})
	}
	return observations, nil
}

// ReadStations parses a station CSV with a header row. Only the station
// column is required.
func ReadStations(r io.Reader) ([]climate.Station, error) {
	records, cols, err := readTable(r, stationColumns)
	if err != nil {
		return nil, err
	}

	stations := make([]climate.Station, 0, len(records))
	for i, rec := range records {
		st := climate.Station{StationID: strings.TrimSpace(rec[cols["station"]])}
		if c, ok := cols["name"]; ok {
			st.Name = strings.TrimSpace(rec[c])
		}
		for name, dst := range map[string]**float64{
			"latitude":  &st.Latitude,
			"longitude": &st.Longitude,
			"elevation": &st.Elevation,
		} {
			c, ok := cols[name]
			if !ok {
				continue
			}
			v, err := parseNullable(rec[c])
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", i+2, name, err)
			}
			*dst = v
		}
		stations = append(stations, st)
	}
	return stations, nil
}

// readTable reads all records and maps header names to column indexes,
// failing when a required column is missing.
func readTable(r io.Reader, required []string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, nil, err
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return records, cols, nil
}

func parseNullable(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

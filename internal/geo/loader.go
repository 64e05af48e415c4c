package geo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Reference file names inside the auxiliary directory.
const (
	StatesFile    = "states.csv"
	CitiesFile    = "uscities.csv"
	NeighborsFile = "neighbors-states.csv"
)

// LoadReference reads the three reference tables from dir.
func LoadReference(dir string, newspapers map[string]string) (*Reference, error) {
	states, err := readStates(filepath.Join(dir, StatesFile))
	if err != nil {
		return nil, err
	}
	cities, err := readCities(filepath.Join(dir, CitiesFile))
	if err != nil {
		return nil, err
	}
	adjacency, err := readAdjacency(filepath.Join(dir, NeighborsFile))
	if err != nil {
		return nil, err
	}
	return NewReference(states, cities, adjacency, newspapers)
}

// table is a CSV file with a header row, addressed by column name.
type table struct {
	path   string
	cols   map[string]int
	reader *csv.Reader
}

func openTable(path string, required ...string) (*table, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			f.Close()
			return nil, nil, fmt.Errorf("%s: missing column %q", path, name)
		}
	}
	return &table{path: path, cols: cols, reader: r}, f.Close, nil
}

// each calls fn for every data row until EOF.
func (t *table) each(fn func(get func(col string) string) error) error {
	line := 1
	for {
		rec, err := t.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("%s:%d: %w", t.path, line, err)
		}
		get := func(col string) string {
			i := t.cols[col]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if err := fn(get); err != nil {
			return fmt.Errorf("%s:%d: %w", t.path, line, err)
		}
	}
}

func readStates(path string) ([]State, error) {
	t, closeFn, err := openTable(path, "State", "Abbreviation")
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var out []State
	err = t.each(func(get func(string) string) error {
		out = append(out, State{Name: get("State"), ID: get("Abbreviation")})
		return nil
	})
	return out, err
}

func readCities(path string) ([]City, error) {
	t, closeFn, err := openTable(path, "city", "state_id", "state_name", "county_name", "zips", "population")
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var out []City
	err = t.each(func(get func(string) string) error {
		pop, err := parsePopulation(get("population"))
		if err != nil {
			return err
		}
		out = append(out, City{
			Name:       get("city"),
			StateID:    get("state_id"),
			StateName:  get("state_name"),
			County:     get("county_name"),
			Zips:       strings.Fields(get("zips")),
			Population: pop,
		})
		return nil
	})
	return out, err
}

// parsePopulation accepts integers and float renderings ("1234.0"); empty is 0.
func parsePopulation(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("population %q: %w", s, err)
	}
	return int64(f), nil
}

func readAdjacency(path string) ([]Adjacency, error) {
	t, closeFn, err := openTable(path, "StateCode", "NeighborStateCode")
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var out []Adjacency
	err = t.each(func(get func(string) string) error {
		out = append(out, Adjacency{StateID: get("StateCode"), NeighborID: get("NeighborStateCode")})
		return nil
	})
	return out, err
}

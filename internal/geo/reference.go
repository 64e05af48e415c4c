// Package geo holds the US reference tables used to validate city, state
// and zip candidates, and the per-newspaper view of them.
package geo

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownState is returned for a state id missing from the state table.
	ErrUnknownState = errors.New("unknown state")
	// ErrUnknownNewspaper is returned for a newspaper code with no home state.
	ErrUnknownNewspaper = errors.New("unknown newspaper")
)

// State is one row of the state table.
type State struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// City is one row of the city table.
type City struct {
	Name       string   `json:"name"`
	StateID    string   `json:"state_id"`
	StateName  string   `json:"state_name"`
	County     string   `json:"county"`
	Zips       []string `json:"zips"`
	Population int64    `json:"population"`
}

// Adjacency is one row of the neighboring-states table.
type Adjacency struct {
	StateID    string
	NeighborID string
}

// ZipRecord is what a zip code resolves to.
type ZipRecord struct {
	Zip       string `json:"zip"`
	City      string `json:"city"`
	StateID   string `json:"state_id"`
	StateName string `json:"state_name"`
	County    string `json:"county"`
}

// DefaultNewspapers maps newspaper codes to home state ids.
func DefaultNewspapers() map[string]string {
	return map[string]string{
		"ASA": "TX", "ATC": "GA", "ATL": "GA", "BaS": "MD",
		"BoG": "MA", "ChT": "IL", "HaC": "CT", "LAS": "CA",
		"LAT": "CA", "NJG": "VA", "NYr": "NY", "NYT": "NY",
		"WaP": "DC",
	}
}

// Reference is the immutable set of reference tables. Every slice it hands
// out keeps table order, which downstream matching relies on for
// tie-breaking. Safe for concurrent use.
type Reference struct {
	states       []State
	stateByID    map[string]int
	cities       []City
	citiesByName map[string][]int
	neighbors    map[string][]string
	zips         map[string]ZipRecord
	newspapers   map[string]string
	version      string
}

// NewReference indexes the given tables. Inputs are copied.
func NewReference(states []State, cities []City, adjacency []Adjacency, newspapers map[string]string) (*Reference, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("new reference: empty state table")
	}

	r := &Reference{
		states:       append([]State(nil), states...),
		stateByID:    make(map[string]int, len(states)),
		cities:       make([]City, len(cities)),
		citiesByName: make(map[string][]int),
		neighbors:    make(map[string][]string),
		zips:         make(map[string]ZipRecord),
		newspapers:   make(map[string]string, len(newspapers)),
	}
	for i, s := range r.states {
		if _, dup := r.stateByID[s.ID]; dup {
			return nil, fmt.Errorf("new reference: duplicate state id %q", s.ID)
		}
		r.stateByID[s.ID] = i
	}

	for i, c := range cities {
		c.Zips = append([]string(nil), c.Zips...)
		r.cities[i] = c
		r.citiesByName[c.Name] = append(r.citiesByName[c.Name], i)
		for _, z := range c.Zips {
			// first registered city wins
			if _, ok := r.zips[z]; ok {
				continue
			}
			r.zips[z] = ZipRecord{Zip: z, City: c.Name, StateID: c.StateID, StateName: c.StateName, County: c.County}
		}
	}

	for _, a := range adjacency {
		r.neighbors[a.StateID] = append(r.neighbors[a.StateID], a.NeighborID)
	}

	for paper, id := range newspapers {
		if _, ok := r.stateByID[id]; !ok {
			return nil, fmt.Errorf("new reference: newspaper %s: %w: %s", paper, ErrUnknownState, id)
		}
		r.newspapers[paper] = id
	}

	r.version = r.fingerprint(adjacency)
	return r, nil
}

func (r *Reference) fingerprint(adjacency []Adjacency) string {
	h := sha256.New()
	for _, s := range r.states {
		fmt.Fprintf(h, "s|%s|%s\n", s.ID, s.Name)
	}
	for _, c := range r.cities {
		fmt.Fprintf(h, "c|%s|%s|%s|%s|%d\n", c.Name, c.StateID, c.County, strings.Join(c.Zips, " "), c.Population)
	}
	for _, a := range adjacency {
		fmt.Fprintf(h, "a|%s|%s\n", a.StateID, a.NeighborID)
	}
	papers := make([]string, 0, len(r.newspapers))
	for p := range r.newspapers {
		papers = append(papers, p)
	}
	sort.Strings(papers)
	for _, p := range papers {
		fmt.Fprintf(h, "n|%s|%s\n", p, r.newspapers[p])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Version identifies the loaded table contents. Cached extraction results
// are keyed by it.
func (r *Reference) Version() string { return r.version }

// States returns the state table.
func (r *Reference) States() []State { return append([]State(nil), r.states...) }

// Newspapers returns the known newspaper codes, sorted.
func (r *Reference) Newspapers() []string {
	out := make([]string, 0, len(r.newspapers))
	for p := range r.newspapers {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// HomeStateID returns the home state id of a newspaper.
func (r *Reference) HomeStateID(newspaper string) (string, error) {
	id, ok := r.newspapers[newspaper]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownNewspaper, newspaper)
	}
	return id, nil
}

// StateIDToName maps a state id ("IL") to its name ("Illinois").
func (r *Reference) StateIDToName(id string) (string, error) {
	i, ok := r.stateByID[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownState, id)
	}
	return r.states[i].Name, nil
}

// NearbyStateIDs returns the neighbors of id in table order followed by id.
func (r *Reference) NearbyStateIDs(id string) []string {
	out := append([]string(nil), r.neighbors[id]...)
	return append(out, id)
}

// NearbyStateNames returns the names of the given state ids in state-table
// order.
func (r *Reference) NearbyStateNames(ids []string) []string {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []string
	for _, s := range r.states {
		if _, ok := want[s.ID]; ok {
			out = append(out, s.Name)
		}
	}
	return out
}

// BigCitiesInState lists cities of the named state with population at least
// minPop, largest first.
func (r *Reference) BigCitiesInState(stateName string, minPop int64) []string {
	return r.bigCities(func(c City) bool { return c.StateName == stateName }, minPop)
}

func (r *Reference) bigCities(in func(City) bool, minPop int64) []string {
	var rows []City
	for _, c := range r.cities {
		if in(c) && c.Population >= minPop {
			rows = append(rows, c)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Population > rows[j].Population })
	out := make([]string, len(rows))
	for i, c := range rows {
		out[i] = c.Name
	}
	return out
}

// CityRecordsByName returns every city row with exactly that name.
func (r *Reference) CityRecordsByName(name string) []City {
	idx := r.citiesByName[name]
	out := make([]City, len(idx))
	for i, j := range idx {
		out[i] = r.cities[j]
	}
	return out
}

// CityInState reports whether a city of that name exists in the named state.
func (r *Reference) CityInState(city, stateName string) bool {
	for _, j := range r.citiesByName[city] {
		if r.cities[j].StateName == stateName {
			return true
		}
	}
	return false
}

// ZipLookup resolves a five-digit zip code.
func (r *Reference) ZipLookup(zip string) (ZipRecord, bool) {
	rec, ok := r.zips[zip]
	return rec, ok
}

// CountiesFromZips returns the counties of every city row listing the most
// frequent zip of zips. Ties go to the zip seen first. Nil for no zips.
func (r *Reference) CountiesFromZips(zips []string) []string {
	zip := Mode(zips)
	if zip == "" {
		return nil
	}
	var out []string
	for _, c := range r.cities {
		for _, z := range c.Zips {
			if z == zip {
				out = append(out, c.County)
				break
			}
		}
	}
	return out
}

// Mode returns the most frequent non-empty value; ties go to the value seen
// first. Empty when values has no non-empty entry.
func Mode(values []string) string {
	counts := make(map[string]int, len(values))
	var order []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best, bestN := "", 0
	for _, v := range order {
		if counts[v] > bestN {
			best, bestN = v, counts[v]
		}
	}
	return best
}

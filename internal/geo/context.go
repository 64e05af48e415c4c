package geo

import "fmt"

// Context is the reference view of one newspaper: its home state, the
// states around it and the big cities in them. Immutable once built.
type Context struct {
	Newspaper      string   `json:"newspaper"`
	StateID        string   `json:"state_id"`
	StateName      string   `json:"state_name"`
	NearbyStateIDs []string `json:"nearby_state_ids"`
	NearbyStates   []string `json:"nearby_states"`
	// BigCities is ordered by NearbyStateIDs, then population descending;
	// names appear once. Fuzzy ties resolve to the earlier entry.
	BigCities []string `json:"big_cities"`

	ref        *Reference
	bigCitySet map[string]struct{}
	stateNames map[string]struct{}
	stateIDs   map[string]struct{}
}

// ForNewspaper builds the Context of a newspaper with cities of at least
// minPop inhabitants.
func (r *Reference) ForNewspaper(newspaper string, minPop int64) (*Context, error) {
	id, err := r.HomeStateID(newspaper)
	if err != nil {
		return nil, err
	}
	name, err := r.StateIDToName(id)
	if err != nil {
		return nil, fmt.Errorf("context for %s: %w", newspaper, err)
	}

	c := &Context{
		Newspaper:      newspaper,
		StateID:        id,
		StateName:      name,
		NearbyStateIDs: r.NearbyStateIDs(id),
		ref:            r,
		bigCitySet:     make(map[string]struct{}),
		stateNames:     make(map[string]struct{}),
		stateIDs:       make(map[string]struct{}),
	}
	c.NearbyStates = r.NearbyStateNames(c.NearbyStateIDs)

	for _, sid := range c.NearbyStateIDs {
		c.stateIDs[sid] = struct{}{}
		for _, city := range r.bigCities(func(x City) bool { return x.StateID == sid }, minPop) {
			if _, seen := c.bigCitySet[city]; seen {
				continue
			}
			c.bigCitySet[city] = struct{}{}
			c.BigCities = append(c.BigCities, city)
		}
	}
	for _, s := range c.NearbyStates {
		c.stateNames[s] = struct{}{}
	}
	return c, nil
}

// Reference returns the tables the context was built from.
func (c *Context) Reference() *Reference { return c.ref }

// IsBigCity reports exact membership in BigCities.
func (c *Context) IsBigCity(name string) bool {
	_, ok := c.bigCitySet[name]
	return ok
}

// IsNearbyState reports exact membership in NearbyStates.
func (c *Context) IsNearbyState(name string) bool {
	_, ok := c.stateNames[name]
	return ok
}

// IsNearbyStateID reports exact membership in NearbyStateIDs.
func (c *Context) IsNearbyStateID(id string) bool {
	_, ok := c.stateIDs[id]
	return ok
}

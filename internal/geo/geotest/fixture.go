// Package geotest provides a small in-memory reference for tests.
package geotest

import "github.com/classified-extractor/internal/geo"

// States is a slice of the state table in file order.
var States = []geo.State{
	{Name: "Connecticut", ID: "CT"},
	{Name: "Illinois", ID: "IL"},
	{Name: "Indiana", ID: "IN"},
	{Name: "Iowa", ID: "IA"},
	{Name: "Kentucky", ID: "KY"},
	{Name: "Massachusetts", ID: "MA"},
	{Name: "Missouri", ID: "MO"},
	{Name: "New Jersey", ID: "NJ"},
	{Name: "New York", ID: "NY"},
	{Name: "Pennsylvania", ID: "PA"},
	{Name: "Vermont", ID: "VT"},
	{Name: "Wisconsin", ID: "WI"},
}

// Cities is a slice of the city table.
var Cities = []geo.City{
	{Name: "Chicago", StateID: "IL", StateName: "Illinois", County: "Cook", Zips: []string{"60601", "60602"}, Population: 2700000},
	{Name: "Aurora", StateID: "IL", StateName: "Illinois", County: "Kane", Zips: []string{"60505"}, Population: 180000},
	{Name: "Springfield", StateID: "IL", StateName: "Illinois", County: "Sangamon", Zips: []string{"62701", "62702"}, Population: 114000},
	{Name: "Naperville", StateID: "IL", StateName: "Illinois", County: "DuPage", Zips: []string{"60540"}, Population: 148000},
	{Name: "Peoria", StateID: "IL", StateName: "Illinois", County: "Peoria", Zips: []string{"61602"}, Population: 113000},
	{Name: "Cicero", StateID: "IL", StateName: "Illinois", County: "Cook", Zips: []string{"60804"}, Population: 81000},
	{Name: "Evanston", StateID: "IL", StateName: "Illinois", County: "Cook", Zips: []string{"60201"}, Population: 74000},
	{Name: "Oak Park", StateID: "IL", StateName: "Illinois", County: "Cook", Zips: []string{"60302"}, Population: 52000},
	{Name: "Galena", StateID: "IL", StateName: "Illinois", County: "Jo Daviess", Zips: []string{"61036"}, Population: 3300},
	{Name: "Indianapolis", StateID: "IN", StateName: "Indiana", County: "Marion", Zips: []string{"46204"}, Population: 880000},
	{Name: "Gary", StateID: "IN", StateName: "Indiana", County: "Lake", Zips: []string{"46402"}, Population: 69000},
	{Name: "Des Moines", StateID: "IA", StateName: "Iowa", County: "Polk", Zips: []string{"50309"}, Population: 214000},
	{Name: "Louisville", StateID: "KY", StateName: "Kentucky", County: "Jefferson", Zips: []string{"40202"}, Population: 620000},
	{Name: "Kansas City", StateID: "MO", StateName: "Missouri", County: "Jackson", Zips: []string{"64105"}, Population: 508000},
	{Name: "St. Louis", StateID: "MO", StateName: "Missouri", County: "St. Louis", Zips: []string{"63101"}, Population: 300000},
	{Name: "Springfield", StateID: "MO", StateName: "Missouri", County: "Greene", Zips: []string{"65801"}, Population: 167000},
	{Name: "Milwaukee", StateID: "WI", StateName: "Wisconsin", County: "Milwaukee", Zips: []string{"53202"}, Population: 577000},
	{Name: "Madison", StateID: "WI", StateName: "Wisconsin", County: "Dane", Zips: []string{"53703"}, Population: 259000},
	{Name: "New York", StateID: "NY", StateName: "New York", County: "New York", Zips: []string{"10001", "10002"}, Population: 8804190},
	{Name: "Buffalo", StateID: "NY", StateName: "New York", County: "Erie", Zips: []string{"14202"}, Population: 278000},
	{Name: "Yonkers", StateID: "NY", StateName: "New York", County: "Westchester", Zips: []string{"10701"}, Population: 211000},
	{Name: "Newark", StateID: "NJ", StateName: "New Jersey", County: "Essex", Zips: []string{"07102"}, Population: 311000},
	{Name: "Jersey City", StateID: "NJ", StateName: "New Jersey", County: "Hudson", Zips: []string{"07302"}, Population: 292000},
	{Name: "Hartford", StateID: "CT", StateName: "Connecticut", County: "Hartford", Zips: []string{"06103"}, Population: 121000},
	{Name: "Philadelphia", StateID: "PA", StateName: "Pennsylvania", County: "Philadelphia", Zips: []string{"19103"}, Population: 1600000},
	{Name: "Boston", StateID: "MA", StateName: "Massachusetts", County: "Suffolk", Zips: []string{"02108"}, Population: 675000},
	{Name: "Springfield", StateID: "MA", StateName: "Massachusetts", County: "Hampden", Zips: []string{"01103"}, Population: 155000},
	{Name: "Burlington", StateID: "VT", StateName: "Vermont", County: "Chittenden", Zips: []string{"05401"}, Population: 44000},
}

// Adjacency lists the neighbors of Illinois and New York in file order.
var Adjacency = []geo.Adjacency{
	{StateID: "IL", NeighborID: "IA"},
	{StateID: "IL", NeighborID: "IN"},
	{StateID: "IL", NeighborID: "KY"},
	{StateID: "IL", NeighborID: "MO"},
	{StateID: "IL", NeighborID: "WI"},
	{StateID: "NY", NeighborID: "CT"},
	{StateID: "NY", NeighborID: "MA"},
	{StateID: "NY", NeighborID: "NJ"},
	{StateID: "NY", NeighborID: "PA"},
	{StateID: "NY", NeighborID: "VT"},
}

// Newspapers maps the fixture newspapers to their home states.
var Newspapers = map[string]string{"ChT": "IL", "NYT": "NY"}

// Reference builds the fixture reference. It panics on error since the
// fixture is static.
func Reference() *geo.Reference {
	r, err := geo.NewReference(States, Cities, Adjacency, Newspapers)
	if err != nil {
		panic(err)
	}
	return r
}

// Context returns the fixture context of newspaper with the usual 50000
// population floor.
func Context(newspaper string) *geo.Context {
	c, err := Reference().ForNewspaper(newspaper, 50000)
	if err != nil {
		panic(err)
	}
	return c
}

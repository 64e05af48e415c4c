package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/classified-extractor/app/models"
)

func TestAdsXLSX(t *testing.T) {
	wage := "$500 per week"
	results := []*models.AdResult{
		{
			ID:        "1",
			Newspaper: "ChT",
			Status:    models.StatusExtracted,
			Wage:      &wage,
			Addresses: []models.AddressCandidate{
				{HouseNumber: "100", Street: "Main St", City: "Chicago", State: "Illinois", County: "Cook", Zipcode: "60601"},
				{City: "Chicago", State: "Illinois", County: "Cook", Zipcode: "60602"},
			},
			Sandbox: &models.WageSandbox{Strong: []string{"$500 per week"}, Weak: []string{"$500"}},
		},
		nil,
		{ID: "2", Newspaper: "ChT", Status: models.StatusExcluded, AddressExcluded: true, WageExcluded: true},
	}

	b, err := AdsXLSX(results)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(Sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])

	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "$500 per week", rows[1][3])
	assert.Equal(t, "100 Main St, Chicago, Illinois, 60601; Chicago, Illinois, 60602", rows[1][5])
	assert.Equal(t, "Cook", rows[1][6])
	assert.Equal(t, "60601; 60602", rows[1][7])
	assert.Equal(t, "$500 per week", rows[1][10])
	assert.Equal(t, "$500", rows[1][12])

	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, models.StatusExcluded, rows[2][2])
	assert.Equal(t, "TRUE", rows[2][8])
}

package batch

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classified-extractor/app/requests"
)

func TestNewspaper(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"data/ChT.csv", "ChT"},
		{"/out/ChT-extract-all.ndjson", "ChT"},
		{"NYT", "NYT"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Newspaper(tt.path))
		})
	}
}

func TestReadAds(t *testing.T) {
	t.Run("index column and text", func(t *testing.T) {
		in := "\ufeff,date,raw_content\n17,1950-01-01,Cook $400 weekly\n18,1950-01-02,\n"
		ads, err := ReadAds(strings.NewReader(in), "ChT", 0)
		require.NoError(t, err)
		assert.Equal(t, []requests.AdInput{
			{ID: "17", Newspaper: "ChT", Text: "Cook $400 weekly"},
			{ID: "18", Newspaper: "ChT", Text: ""},
		}, ads)
	})

	t.Run("text first uses row numbers", func(t *testing.T) {
		in := "raw_content\n\"Driver, wanted\"\nClerk\nNurse\n"
		ads, err := ReadAds(strings.NewReader(in), "NYT", 2)
		require.NoError(t, err)
		require.Len(t, ads, 2)
		assert.Equal(t, "0", ads[0].ID)
		assert.Equal(t, "Driver, wanted", ads[0].Text)
		assert.Equal(t, "1", ads[1].ID)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := ReadAds(strings.NewReader("id,text\n1,x\n"), "NYT", 0)
		assert.ErrorIs(t, err, ErrNoTextColumn)
	})
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name              string
		total, size, skip int
		want              []Span
	}{
		{"even", 6, 3, 0, []Span{{0, 3, 3}, {3, 6, 6}}},
		{"remainder", 7, 3, 0, []Span{{0, 3, 3}, {3, 6, 6}, {6, 7, 9}}},
		{"size larger than total", 4, 10, 0, []Span{{0, 4, 4}}},
		{"resume skips finished batches", 7, 3, 3, []Span{{3, 6, 6}, {6, 7, 9}}},
		{"skip inside a batch keeps it", 7, 3, 4, []Span{{3, 6, 6}, {6, 7, 9}}},
		{"empty", 0, 3, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Plan(tt.total, tt.size, tt.skip))
		})
	}
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "ChT-extract-batch-200.ndjson"), BatchFile("out", "ChT", "extract", 200))
	assert.Equal(t, filepath.Join("out", "ChT-extract-all.xlsx"), OutputFile("out", "ChT", "extract", 0, "xlsx"))
	assert.Equal(t, filepath.Join("out", "ChT-resolve-50.ndjson"), OutputFile("out", "ChT", "resolve", 50, "ndjson"))
}

type row struct {
	ID   string `json:"id"`
	Wage string `json:"wage"`
}

func TestNDJSONRoundTrip(t *testing.T) {
	for _, name := range []string{"rows.ndjson", "rows.ndjson.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			rows := []row{{"1", "$500 per week"}, {"2", ""}}
			require.NoError(t, WriteNDJSON(path, rows))

			got, err := ReadNDJSON[row](path)
			require.NoError(t, err)
			assert.Equal(t, rows, got)
		})
	}
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteNDJSON(BatchFile(dir, "ChT", "extract", 2), []row{{"1", "a"}, {"2", "b"}}))
	require.NoError(t, WriteNDJSON(BatchFile(dir, "ChT", "extract", 4), []row{{"3", "c"}}))
	// after the gap at 6, never read
	require.NoError(t, WriteNDJSON(BatchFile(dir, "ChT", "extract", 8), []row{{"9", "z"}}))

	opts := MergeOptions{Dir: dir, Paper: "ChT", Stage: "extract", BatchSize: 2}
	var buf bytes.Buffer
	files, err := Merge(opts, &buf)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
	assert.NotContains(t, buf.String(), `"9"`)

	opts.MaxBatches = 1
	files, err = opts.Files()
	require.NoError(t, err)
	assert.Len(t, files, 1)

	require.NoError(t, Remove(files))
	_, err = os.Stat(files[0])
	assert.True(t, os.IsNotExist(err))
	assert.Error(t, Remove(files))

	_, err = MergeOptions{Dir: dir}.Files()
	assert.Error(t, err)
}

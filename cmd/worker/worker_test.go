package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classified-extractor/app/config"
	"github.com/classified-extractor/app/models"
	"github.com/classified-extractor/app/services/servicetest"
	main "github.com/classified-extractor/cmd/worker"
	"github.com/classified-extractor/internal/batch"
	"github.com/classified-extractor/internal/geo/geotest"
	"github.com/classified-extractor/internal/resolve"
)

func newDeps(t *testing.T) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:       context.Background(),
		Stdout:    stdout,
		Stderr:    stderr,
		Logger:    zap.NewNop(),
		Config:    config.Default(),
		Reference: geotest.Reference(),
		Extractor: servicetest.ExtractService(t, nil),
	}, stdout, stderr
}

const adsCSV = `,raw_content
10,Cook $400 weekly
11,Typist wanted immediately
12,Driver wanted $500 per week call today
`

func writeCSV(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(adsCSV), 0o644))
	return path
}

func TestExtractCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("writes checkpoints and output", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		deps, stdout, _ := newDeps(t)

		cmd := &main.ExtractCmd{
			File:      writeCSV(t, dir, "ChT.csv"),
			OutputDir: dir,
			Address:   false,
			Wage:      true,
			BatchSize: 2,
			Workers:   2,
			XLSX:      true,
		}
		require.NoError(t, cmd.Run(deps))

		first, err := batch.ReadNDJSON[models.AdResult](batch.BatchFile(dir, "ChT", "extract", 2))
		require.NoError(t, err)
		require.Len(t, first, 2)
		assert.Equal(t, "10", first[0].ID)
		require.NotNil(t, first[0].Wage)
		assert.Equal(t, "$400 weekly", *first[0].Wage)

		_, err = os.Stat(batch.BatchFile(dir, "ChT", "extract", 4))
		require.NoError(t, err)

		all, err := batch.ReadNDJSON[models.AdResult](batch.OutputFile(dir, "ChT", "extract", 0, "ndjson"))
		require.NoError(t, err)
		assert.Len(t, all, 3)
		_, err = os.Stat(batch.OutputFile(dir, "ChT", "extract", 0, "xlsx"))
		assert.NoError(t, err)
		assert.Contains(t, stdout.String(), "Completed 3 ads")
	})

	t.Run("skip resumes after finished batches", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		deps, _, _ := newDeps(t)

		cmd := &main.ExtractCmd{File: writeCSV(t, dir, "ChT.csv"), OutputDir: dir, Wage: true, BatchSize: 2, Skip: 2, Workers: 1}
		require.NoError(t, cmd.Run(deps))

		_, err := os.Stat(batch.BatchFile(dir, "ChT", "extract", 2))
		assert.True(t, os.IsNotExist(err))
		all, err := batch.ReadNDJSON[models.AdResult](batch.OutputFile(dir, "ChT", "extract", 0, "ndjson"))
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "12", all[0].ID)
	})

	t.Run("unknown newspaper in file name", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		deps, _, stderr := newDeps(t)

		cmd := &main.ExtractCmd{File: writeCSV(t, dir, "XXX.csv"), OutputDir: dir, BatchSize: 10, Workers: 1}
		assert.Error(t, cmd.Run(deps))
		assert.Contains(t, stderr.String(), "known newspaper")
	})
}

func TestMergeCmd_Run(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	deps, stdout, _ := newDeps(t)
	require.NoError(t, batch.WriteNDJSON(batch.BatchFile(dir, "ChT", "extract", 2), []models.AdResult{{ID: "1"}, {ID: "2"}}))
	require.NoError(t, batch.WriteNDJSON(batch.BatchFile(dir, "ChT", "extract", 4), []models.AdResult{{ID: "3"}}))

	cmd := &main.MergeCmd{Paper: "data/ChT.csv", Dir: dir, Stage: "extract", BatchSize: 2, OutputDir: dir, Delete: true}
	require.NoError(t, cmd.Run(deps))

	merged, err := batch.ReadNDJSON[models.AdResult](batch.OutputFile(dir, "ChT", "extract-merged", 0, "ndjson"))
	require.NoError(t, err)
	assert.Len(t, merged, 3)
	assert.Contains(t, stdout.String(), "Removed 2 batch files")
	_, err = os.Stat(batch.BatchFile(dir, "ChT", "extract", 2))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, cmd.Run(deps), "nothing left to merge")
}

type fakeGeocoder struct{}

func (fakeGeocoder) Name() string { return "fake" }

func (fakeGeocoder) Geocode(_ context.Context, query string, accept func(string) bool) (resolve.Match, resolve.RequestLog, error) {
	if !accept("Chicago") {
		return resolve.Match{}, resolve.RequestLog{}, nil
	}
	return resolve.Match{Address: query, County: "Cook", Zipcode: "60601"}, resolve.RequestLog{StatusCode: 200}, nil
}

func TestResolveCmd_Run(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	deps, _, _ := newDeps(t)
	deps.Geocoders = []resolve.Geocoder{fakeGeocoder{}}

	in := filepath.Join(dir, "ChT-extract-all.ndjson")
	require.NoError(t, batch.WriteNDJSON(in, []models.AdResult{
		{ID: "1", Newspaper: "ChT", Addresses: []models.AddressCandidate{{Street: "Main St", City: "Chicago", State: "Illinois"}}},
		{ID: "2", Newspaper: "ChT", Addresses: []models.AddressCandidate{}},
	}))

	cmd := &main.ResolveCmd{File: in, OutputDir: dir, BatchSize: 10, Workers: 2}
	require.NoError(t, cmd.Run(deps))

	out, err := batch.ReadNDJSON[resolve.Resolution](batch.OutputFile(dir, "ChT", "resolve", 0, "ndjson"))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "Cook", out[0].Providers["fake"].County)
	assert.Equal(t, "Cook", out[0].Providers["fake"].ZipCounty)
	assert.Empty(t, out[1].Providers["fake"].Addresses)
}

func TestResolveCmd_MissingKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	deps, _, stderr := newDeps(t)
	in := filepath.Join(dir, "ChT-extract-all.ndjson")
	require.NoError(t, batch.WriteNDJSON(in, []models.AdResult{{ID: "1", Newspaper: "ChT"}}))

	cmd := &main.ResolveCmd{File: in, OutputDir: dir, BatchSize: 10, Providers: []string{"geoapify"}}
	assert.Error(t, cmd.Run(deps))
	assert.Contains(t, stderr.String(), "GEOAPIFY_API_KEY")
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	m := &main.Main{Logger: zap.NewNop()}

	assert.Error(t, m.Run(context.Background(), nil, stdout, stderr))
	assert.NoError(t, m.Run(context.Background(), []string{"--help"}, stdout, stderr))
	assert.Contains(t, stdout.String(), "extract")
}

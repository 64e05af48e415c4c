package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classified-extractor/app/models"
	"github.com/classified-extractor/app/requests"
	"github.com/classified-extractor/app/responses"
	"github.com/classified-extractor/app/services"
	"github.com/classified-extractor/app/services/servicetest"
)

func TestAdminService_InvalidateCache(t *testing.T) {
	ctx := context.Background()
	cache := services.NewCacheService(time.Hour)
	extract := servicetest.ExtractService(t, cache)
	admin := services.NewAdminService(extract, nil)

	require.NoError(t, cache.Set(ctx, "old", &models.AdResult{ReferenceVersion: "stale"}))
	require.NoError(t, cache.Set(ctx, "new", &models.AdResult{ReferenceVersion: extract.ReferenceVersion()}))

	resp, err := admin.InvalidateCache(ctx, requests.InvalidateCacheRequest{})
	require.NoError(t, err)
	assert.Equal(t, extract.ReferenceVersion(), resp.ReferenceVersion)
	assert.Equal(t, 1, cache.Size())

	resp, err = admin.InvalidateCache(ctx, requests.InvalidateCacheRequest{All: true})
	require.NoError(t, err)
	assert.True(t, resp.All)
	assert.Zero(t, cache.Size())
}

func TestAdminService_NoCache(t *testing.T) {
	admin := services.NewAdminService(servicetest.ExtractService(t, nil), nil)

	resp, err := admin.InvalidateCache(context.Background(), requests.InvalidateCacheRequest{All: true})
	require.NoError(t, err)
	assert.Equal(t, "cache disabled", resp.Message)

	stats := admin.Stats(context.Background())
	assert.Nil(t, stats.Cache)
	assert.Equal(t, 2, stats.Newspapers)
}

func TestAdminService_StatsAndExport(t *testing.T) {
	ctx := context.Background()
	extract := servicetest.ExtractService(t, services.NewCacheService(time.Hour))
	admin := services.NewAdminService(extract, nil)

	id, err := extract.SubmitBatch(ctx, requests.BatchExtractRequest{
		Newspaper: "ChT",
		Ads:       []requests.AdInput{{Text: "Cook $400 weekly"}},
	})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		job, err := extract.JobStatus(id)
		return err == nil && job.Status == responses.JobStatusDone
	}, 5*time.Second, 10*time.Millisecond)

	stats := admin.Stats(ctx)
	assert.Equal(t, extract.ReferenceVersion(), stats.ReferenceVersion)
	assert.EqualValues(t, 1, stats.TotalExtracted)
	assert.Equal(t, 1, stats.TotalJobs)
	assert.Zero(t, stats.RunningJobs)
	assert.NotNil(t, stats.Cache)

	b, err := admin.ExportJob(id)
	require.NoError(t, err)
	assert.NotEmpty(t, b)

	_, err = admin.ExportJob("missing")
	assert.ErrorIs(t, err, services.ErrJobNotFound)
}

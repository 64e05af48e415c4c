package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/classified-extractor/app/requests"
	"github.com/classified-extractor/app/responses"
	"github.com/classified-extractor/internal/export"
)

// AdminService serves operational endpoints: stats, cache invalidation and
// workbook export of finished jobs.
type AdminService struct {
	extract *ExtractService
	logger  *zap.Logger
}

func NewAdminService(extract *ExtractService, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{extract: extract, logger: logger}
}

// Stats summarizes the extract service and its cache. A cache stats failure
// leaves Cache empty.
func (as *AdminService) Stats(ctx context.Context) responses.AdminStatsResponse {
	total, running := as.extract.JobCounts()
	resp := responses.AdminStatsResponse{
		ReferenceVersion: as.extract.ReferenceVersion(),
		Newspapers:       len(as.extract.Newspapers()),
		TotalExtracted:   as.extract.Extracted(),
		TotalJobs:        total,
		RunningJobs:      running,
		UptimeSeconds:    int64(time.Since(as.extract.StartTime()).Seconds()),
		LastUpdated:      time.Now().Format(time.RFC3339),
	}
	if cache := as.extract.Cache(); cache != nil {
		stats, err := cache.GetStats(ctx)
		if err != nil {
			as.logger.Warn("cache stats unavailable", zap.Error(err))
		} else {
			resp.Cache = stats
		}
	}
	return resp
}

// InvalidateCache clears the cache, entirely or by reference version. An
// empty version means the loaded one, which drops results computed against
// older reference tables.
func (as *AdminService) InvalidateCache(ctx context.Context, req requests.InvalidateCacheRequest) (responses.InvalidateCacheResponse, error) {
	cache := as.extract.Cache()
	if cache == nil {
		return responses.InvalidateCacheResponse{Message: "cache disabled"}, nil
	}
	if req.All {
		if err := cache.Clear(ctx); err != nil {
			return responses.InvalidateCacheResponse{}, fmt.Errorf("clear cache: %w", err)
		}
		as.logger.Info("cache cleared")
		return responses.InvalidateCacheResponse{All: true, Message: "cache cleared"}, nil
	}

	version := req.ReferenceVersion
	if version == "" {
		version = as.extract.ReferenceVersion()
	}
	if err := cache.InvalidateByReferenceVersion(ctx, version); err != nil {
		return responses.InvalidateCacheResponse{}, fmt.Errorf("invalidate cache: %w", err)
	}
	as.logger.Info("cache invalidated", zap.String("reference_version", version))
	return responses.InvalidateCacheResponse{
		ReferenceVersion: version,
		Message:          "entries from other reference versions removed",
	}, nil
}

// ExportJob renders the results of a finished job as an XLSX workbook.
func (as *AdminService) ExportJob(jobID string) ([]byte, error) {
	results, err := as.extract.JobResults(jobID)
	if err != nil {
		return nil, err
	}
	b, err := export.AdsXLSX(results)
	if err != nil {
		return nil, fmt.Errorf("export job %s: %w", jobID, err)
	}
	return b, nil
}

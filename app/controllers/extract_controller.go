package controllers

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/classified-extractor/app/requests"
	"github.com/classified-extractor/app/responses"
	"github.com/classified-extractor/app/services"
	"github.com/classified-extractor/internal/export"
)

// ExtractController serves single-ad extraction and batch jobs.
type ExtractController struct {
	service *services.ExtractService
	logger  *zap.Logger
}

func NewExtractController(service *services.ExtractService, logger *zap.Logger) *ExtractController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractController{service: service, logger: logger}
}

// Extract handles POST /v1/ads/extract.
func (ec *ExtractController) Extract(c *gin.Context) {
	var req requests.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}
	if req.Newspaper == "" {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", "newspaper is required")
		return
	}

	start := time.Now()
	result, hit, err := ec.service.Extract(c.Request.Context(), req.AdInput, req.Options)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.ExtractResponse{
		ReferenceVersion: ec.service.ReferenceVersion(),
		Result:           result,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		CacheHit:         hit,
	})
}

// SubmitBatch handles POST /v1/ads/jobs.
func (ec *ExtractController) SubmitBatch(c *gin.Context) {
	var req requests.BatchExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}
	jobID, err := ec.service.SubmitBatch(c.Request.Context(), req)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, responses.BatchExtractResponse{
		JobID:   jobID,
		Total:   len(req.Ads),
		Message: "job accepted",
	})
}

// JobStatus handles GET /v1/ads/jobs/:jobID/status.
func (ec *ExtractController) JobStatus(c *gin.Context) {
	id, ok := paramJobID(c)
	if !ok {
		return
	}
	job, err := ec.service.JobStatus(id)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.JobStatusResponse{
		JobID:     job.ID,
		Status:    job.Status,
		Progress:  job.Progress(),
		Processed: job.Processed,
		Total:     job.Total,
		Failed:    job.Failed,
		Message:   job.Message,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
		UpdatedAt: job.UpdatedAt.Format(time.RFC3339),
	})
}

// JobResults handles GET /v1/ads/jobs/:jobID/results. format=ndjson streams
// one result per line (gzip=1 compresses the stream); format=xlsx returns a
// workbook; anything else returns a JSON document.
func (ec *ExtractController) JobResults(c *gin.Context) {
	jobID, ok := paramJobID(c)
	if !ok {
		return
	}
	switch c.Query("format") {
	case "ndjson":
		ec.streamNDJSON(c, jobID, c.Query("gzip") == "1")
		return
	case "xlsx":
		ec.writeXLSX(c, jobID)
		return
	}

	results, err := ec.service.JobResults(jobID)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.JobResultsResponse{JobID: jobID, Total: len(results), Results: results})
}

func (ec *ExtractController) writeXLSX(c *gin.Context, jobID string) {
	results, err := ec.service.JobResults(jobID)
	if err != nil {
		abortErr(c, err)
		return
	}
	b, err := export.AdsXLSX(results)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, jobID))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", b)
}

func (ec *ExtractController) streamNDJSON(c *gin.Context, jobID string, gzipped bool) {
	stream, err := ec.service.JobResultsStream(c.Request.Context(), jobID)
	if err != nil {
		abortErr(c, err)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	var w gin.ResponseWriter = c.Writer
	if gzipped {
		c.Header("Content-Encoding", "gzip")
		gz := gzip.NewWriter(c.Writer)
		defer gz.Close()
		w = &gzipResponseWriter{ResponseWriter: c.Writer, gz: gz}
	}
	c.Status(http.StatusOK)

	enc := json.NewEncoder(w)
	for result := range stream {
		if err := enc.Encode(result); err != nil {
			ec.logger.Warn("ndjson stream aborted", zap.String("job_id", jobID), zap.Error(err))
			return
		}
		w.Flush()
	}
}

// HealthCheck handles the probes.
func (ec *ExtractController) HealthCheck(c *gin.Context) {
	cacheState := "disabled"
	if ec.service.Cache() != nil {
		cacheState = "enabled"
	}
	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(ec.service.StartTime()).Round(time.Second).String(),
		Version:   ec.service.ReferenceVersion(),
		Services: map[string]string{
			"extractor": "healthy",
			"cache":     cacheState,
		},
	})
}

// Newspapers handles GET /v1/newspapers.
func (ec *ExtractController) Newspapers(c *gin.Context) {
	c.JSON(http.StatusOK, responses.NewspapersResponse{
		ReferenceVersion: ec.service.ReferenceVersion(),
		Newspapers:       ec.service.Newspapers(),
	})
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gz.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.gz.Write([]byte(s))
}

func (w *gzipResponseWriter) Flush() {
	_ = w.gz.Flush()
	w.ResponseWriter.Flush()
}

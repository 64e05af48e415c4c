package routes_test

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/classified-extractor/app/controllers"
	"github.com/classified-extractor/app/models"
	"github.com/classified-extractor/app/responses"
	"github.com/classified-extractor/app/services"
	"github.com/classified-extractor/app/services/servicetest"
	"github.com/classified-extractor/routes"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	extract := servicetest.ExtractService(t, services.NewCacheService(time.Hour))
	router := gin.New()
	routes.SetupAllRoutes(router,
		controllers.NewExtractController(extract, nil),
		controllers.NewAdminController(services.NewAdminService(extract, nil), nil))
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestExtractEndpoint(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"ok", `{"newspaper":"ChT","text":"Cook $400 weekly","options":{"extract_address":false}}`, http.StatusOK, ""},
		{"unknown newspaper", `{"newspaper":"XXX","text":"Cook"}`, http.StatusBadRequest, "UNKNOWN_NEWSPAPER"},
		{"missing newspaper", `{"text":"Cook"}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad json", `{`, http.StatusBadRequest, "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/v1/ads/extract", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.code != "" {
				var e responses.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
				assert.Equal(t, tt.code, e.Error)
				return
			}
			var resp responses.ExtractResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Result.Wage)
			assert.Equal(t, "$400 weekly", *resp.Result.Wage)
			assert.False(t, resp.CacheHit)
		})
	}

	w := do(router, http.MethodPost, "/v1/ads/extract", tests[0].body)
	var resp responses.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.CacheHit)
}

func TestJobEndpoints(t *testing.T) {
	router := newRouter(t)

	w := do(router, http.MethodPost, "/v1/ads/jobs",
		`{"newspaper":"ChT","ads":[{"id":"a","text":"Cook $400 weekly"},{"id":"b","text":"Typist wanted immediately"}]}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var accepted responses.BatchExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	assert.Equal(t, 2, accepted.Total)
	base := "/v1/ads/jobs/" + accepted.JobID

	require.Eventually(t, func() bool {
		var st responses.JobStatusResponse
		w := do(router, http.MethodGet, base+"/status", "")
		return w.Code == http.StatusOK &&
			json.Unmarshal(w.Body.Bytes(), &st) == nil &&
			st.Status == responses.JobStatusDone
	}, 5*time.Second, 10*time.Millisecond)

	t.Run("json", func(t *testing.T) {
		w := do(router, http.MethodGet, base+"/results", "")
		require.Equal(t, http.StatusOK, w.Code)
		var res responses.JobResultsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Len(t, res.Results, 2)
		assert.Equal(t, "a", res.Results[0].ID)
		assert.Equal(t, models.StatusEmpty, res.Results[1].Status)
	})

	t.Run("ndjson gzip", func(t *testing.T) {
		w := do(router, http.MethodGet, base+"/results?format=ndjson&gzip=1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

		gz, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(gz)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(body)), "\n")
		require.Len(t, lines, 2)
		var first models.AdResult
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
		assert.Equal(t, "a", first.ID)
	})

	t.Run("xlsx", func(t *testing.T) {
		w := do(router, http.MethodGet, base+"/results?format=xlsx", "")
		require.Equal(t, http.StatusOK, w.Code)
		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		rows, err := f.GetRows("Ads")
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("admin export", func(t *testing.T) {
		w := do(router, http.MethodGet, "/v1/admin/export/"+accepted.JobID, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), accepted.JobID)
	})

	t.Run("unknown job", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/v1/ads/jobs/nope/status", "").Code)
		assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/v1/ads/jobs/nope/results?format=ndjson", "").Code)
	})
}

func TestBatchValidation(t *testing.T) {
	router := newRouter(t)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPost, "/v1/ads/jobs", `{"newspaper":"ChT","ads":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPost, "/v1/ads/jobs", `{"ads":[{"text":"x"}]}`).Code)
}

func TestAdminAndInfoEndpoints(t *testing.T) {
	router := newRouter(t)

	w := do(router, http.MethodGet, "/v1/newspapers", "")
	require.Equal(t, http.StatusOK, w.Code)
	var papers responses.NewspapersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &papers))
	require.Len(t, papers.Newspapers, 2)
	assert.Equal(t, "ChT", papers.Newspapers[0].Code)

	w = do(router, http.MethodPost, "/v1/admin/cache/invalidate", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(router, http.MethodPost, "/v1/admin/cache/invalidate", `{"all":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	var inv responses.InvalidateCacheResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.True(t, inv.All)

	w = do(router, http.MethodGet, "/v1/admin/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats responses.AdminStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Newspapers)

	for _, path := range []string{"/health", "/ready", "/live", "/v1/health", "/", "/docs"} {
		assert.Equal(t, http.StatusOK, do(router, http.MethodGet, path, "").Code, path)
	}
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/nope", "").Code)
}

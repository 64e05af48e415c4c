// Package routes wires controllers to the gin router.
package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupWebRoutes registers the index and docs pages.
func SetupWebRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Classified Ad Extractor",
			"version": "1.0.0",
			"docs":    "/docs",
		})
	})

	router.GET("/docs", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"api": "Classified Ad Extractor API v1",
			"endpoints": map[string]string{
				"extract":          "POST /v1/ads/extract",
				"batch":            "POST /v1/ads/jobs",
				"job_status":       "GET /v1/ads/jobs/:jobID/status",
				"job_results":      "GET /v1/ads/jobs/:jobID/results?format=json|ndjson|xlsx&gzip=1",
				"newspapers":       "GET /v1/newspapers",
				"cache_invalidate": "POST /v1/admin/cache/invalidate",
				"stats":            "GET /v1/admin/stats",
				"export":           "GET /v1/admin/export/:jobID",
				"health":           "GET /health",
			},
		})
	})
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/classified-extractor/app/controllers"
)

// SetupAPIRoutes registers the /v1 API.
func SetupAPIRoutes(router *gin.Engine, extract *controllers.ExtractController, admin *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		ads := v1.Group("/ads")
		{
			ads.POST("/extract", extract.Extract)
			ads.POST("/jobs", extract.SubmitBatch)
			ads.GET("/jobs/:jobID/status", extract.JobStatus)
			ads.GET("/jobs/:jobID/results", extract.JobResults)
		}

		v1.GET("/newspapers", extract.Newspapers)

		adm := v1.Group("/admin")
		{
			adm.POST("/cache/invalidate", admin.InvalidateCache)
			adm.GET("/stats", admin.GetStats)
			adm.GET("/export/:jobID", admin.ExportJob)
		}

		v1.GET("/health", extract.HealthCheck)
	}
}

// SetupHealthRoutes registers the probes.
func SetupHealthRoutes(router *gin.Engine, extract *controllers.ExtractController) {
	router.GET("/health", extract.HealthCheck)
	router.GET("/ready", extract.HealthCheck)
	router.GET("/live", extract.HealthCheck)
}

// SetupAllRoutes installs middleware and every route group on router.
func SetupAllRoutes(router *gin.Engine, extract *controllers.ExtractController, admin *controllers.AdminController) {
	router.Use(gin.Recovery())

	SetupWebRoutes(router)
	SetupHealthRoutes(router, extract)
	SetupAPIRoutes(router, extract, admin)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

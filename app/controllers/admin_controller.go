package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/classified-extractor/app/requests"
	"github.com/classified-extractor/app/services"
)

// AdminController serves operational endpoints.
type AdminController struct {
	service *services.AdminService
	logger  *zap.Logger
}

func NewAdminController(service *services.AdminService, logger *zap.Logger) *AdminController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminController{service: service, logger: logger}
}

// InvalidateCache handles POST /v1/admin/cache/invalidate. An empty body
// invalidates against the loaded reference version.
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	var req requests.InvalidateCacheRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
			return
		}
	}
	resp, err := ac.service.InvalidateCache(c.Request.Context(), req)
	if err != nil {
		ac.logger.Error("cache invalidation failed", zap.Error(err))
		abort(c, http.StatusInternalServerError, "INVALIDATE_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetStats handles GET /v1/admin/stats.
func (ac *AdminController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, ac.service.Stats(c.Request.Context()))
}

// ExportJob handles GET /v1/admin/export/:jobID.
func (ac *AdminController) ExportJob(c *gin.Context) {
	jobID, ok := paramJobID(c)
	if !ok {
		return
	}
	b, err := ac.service.ExportJob(jobID)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, jobID))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", b)
}

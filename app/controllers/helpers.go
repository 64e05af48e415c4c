package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classified-extractor/app/responses"
	"github.com/classified-extractor/app/services"
	"github.com/classified-extractor/helpers/utils"
	"github.com/classified-extractor/internal/geo"
)

func abort(c *gin.Context, status int, code, message string) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = utils.GenerateShortID()
	}
	c.AbortWithStatusJSON(status, responses.ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: requestID,
	})
}

// paramJobID reads the :jobID parameter. Ids are UUIDs; anything else is
// answered with 404 here.
func paramJobID(c *gin.Context) (string, bool) {
	id := c.Param("jobID")
	if !utils.IsUUID(id) {
		abort(c, http.StatusNotFound, "JOB_NOT_FOUND", "job not found: "+id)
		return "", false
	}
	return id, true
}

// abortErr maps service errors to HTTP replies.
func abortErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, geo.ErrUnknownNewspaper):
		abort(c, http.StatusBadRequest, "UNKNOWN_NEWSPAPER", err.Error())
	case errors.Is(err, services.ErrJobNotFound):
		abort(c, http.StatusNotFound, "JOB_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrJobNotReady):
		abort(c, http.StatusConflict, "JOB_NOT_READY", err.Error())
	default:
		abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

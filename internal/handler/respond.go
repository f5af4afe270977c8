package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trailhead/trailhead-backend/internal/common"
	"github.com/trailhead/trailhead-backend/pkg/logger"
)

// respondError maps a service error to its status. Internal errors are logged
// and replaced with an opaque message.
func respondError(c *gin.Context, err error, message string) {
	status := common.StatusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		log := logger.WithRequestID(c.GetString("request_id"))
		log.Error().Err(err).Str("route", c.FullPath()).Msg(message)
		common.V2ErrorResponse(c, status, "Internal server error", nil)
		return
	}
	common.V2ErrorResponse(c, status, message, err)
}

// badRequest reports a body / binding failure
func badRequest(c *gin.Context, err error) {
	common.V2ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
}

package handlers

import (
	"strings"

	"traceaq/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const checkoutRoutePrefix = "/api/checkout/sessions/"

// getLogger returns the request logger set by middleware.RequestLogger, falling back
// to the global one. Checkout routes get the session id attached.
func getLogger(c *gin.Context) *zap.Logger {
	logger := utils.GetLogger()
	if v, ok := c.Get("logger"); ok {
		if l, ok := v.(*zap.Logger); ok {
			logger = l
		}
	}
	if id := c.Param("id"); id != "" && strings.HasPrefix(c.FullPath(), checkoutRoutePrefix) {
		logger = logger.With(zap.String("sessionID", id))
	}
	return logger
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck answers load balancer probes.
func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

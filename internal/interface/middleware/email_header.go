package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-user-lifecycle/pkg/response"
)

const (
	EmailHeader = "EMAIL"
	CtxEmailKey = "userEmail"
)

// RequireEmail identifies the caller by the EMAIL header and stores it under CtxEmailKey.
func RequireEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.GetHeader(EmailHeader))
		if email == "" {
			response.Error[any](c, http.StatusBadRequest, "missing EMAIL header", nil)
			return
		}
		c.Set(CtxEmailKey, email)
		c.Next()
	}
}

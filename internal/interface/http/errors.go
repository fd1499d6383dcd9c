package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/internal/application"
	"github.com/oksasatya/go-user-lifecycle/pkg/response"
)

// writeError translates application errors into HTTP responses.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		notFound *application.NotFoundError
		invalid  *application.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		response.Text(c, http.StatusNotFound, notFound.Error())
	case errors.Is(err, application.ErrCertificationCodeNotMatched):
		response.Text(c, http.StatusForbidden, err.Error())
	case errors.As(err, &invalid):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", invalid.Fields)
	case errors.Is(err, application.ErrEmailAlreadyRegistered):
		response.Error[any](c, http.StatusConflict, err.Error(), nil)
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).Error("request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/navid-fn/ecomdash/internal/chart"
	"github.com/navid-fn/ecomdash/internal/dataset"
	"github.com/navid-fn/ecomdash/internal/service"
)

var (
	// ErrBadRequest wraps every invalid query or body.
	ErrBadRequest = errors.New("bad request")

	// ErrUnknownTable is returned for a derived table name that does not exist.
	ErrUnknownTable = errors.New("unknown table")
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, dataset.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, ErrUnknownTable),
		errors.Is(err, chart.ErrUnknownChart),
		errors.Is(err, chart.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDatasetUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}

// README: HTTP helper utilities for JSON responses and error mapping.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cakeline/internal/modules/order"
	"cakeline/internal/modules/settings"
	"cakeline/internal/modules/trip"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
// Conflicts tell the client to re-fetch and retry; validation failures carry
// the actionable message from the service.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrValidation), errors.Is(err, trip.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound), errors.Is(err, trip.ErrNotFound),
		errors.Is(err, settings.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrConflict):
		writeError(c, http.StatusConflict, "data changed, please retry")
	case errors.Is(err, order.ErrInvalidState), errors.Is(err, trip.ErrClosed),
		errors.Is(err, trip.ErrNumberTaken):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

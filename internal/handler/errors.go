package handler

import (
	"errors"
	"net/http"

	"portal/internal/service"
	"portal/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps service error categories to HTTP statuses so every
// handler reports failures the same way.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	}
	c.JSON(status, response.Error(status, err.Error()))
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/models"
)

// respondError writes err with the status its class maps to. The message is surfaced verbatim.
func respondError(c *gin.Context, action string, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, models.ErrorResponse{Error: action, Message: err.Error()})
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid " + name, Message: err.Error()})
		return uuid.Nil, false
	}
	return id, true
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brochure-backend/internal/middleware"
	"brochure-backend/internal/models"
)

// Me godoc
// @Summary     Current user
// @Tags        users
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.UserResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/v1/me [get]
func Me(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.NewUserResponse(user))
}

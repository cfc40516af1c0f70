package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brochure-backend/internal/middleware"
	"brochure-backend/internal/models"
	"brochure-backend/internal/services"
)

type RendersHandler struct {
	renders *services.RenderService
}

func NewRendersHandler(renders *services.RenderService) *RendersHandler {
	return &RendersHandler{renders: renders}
}

// GetRender godoc
// @Summary     Get a render
// @Tags        renders
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Render ID"
// @Success     200 {object} models.RenderResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/renders/{id} [get]
func (h *RendersHandler) GetRender(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	renderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	render, err := h.renders.Get(c.Request.Context(), user.ID, renderID)
	if err != nil {
		respondError(c, "failed to get render", err)
		return
	}
	c.JSON(http.StatusOK, models.NewRenderResponse(render))
}

// ListProjectRenders godoc
// @Summary     List a project's renders
// @Tags        renders
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Success     200 {object} models.RenderListResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{id}/renders [get]
func (h *RendersHandler) ListProjectRenders(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	renders, err := h.renders.ListForProject(c.Request.Context(), user.ID, projectID)
	if err != nil {
		respondError(c, "failed to list renders", err)
		return
	}

	resp := models.RenderListResponse{Renders: make([]models.RenderResponse, 0, len(renders))}
	for i := range renders {
		resp.Renders = append(resp.Renders, models.NewRenderResponse(&renders[i]))
	}
	c.JSON(http.StatusOK, resp)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brochure-backend/internal/middleware"
	"brochure-backend/internal/models"
	"brochure-backend/internal/services"
)

type ProjectsHandler struct {
	projects *services.ProjectService
	assets   *services.AssetService
}

func NewProjectsHandler(projects *services.ProjectService, assets *services.AssetService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, assets: assets}
}

// CreateProject godoc
// @Summary     Create a project
// @Description Creates a draft brochure project. Exactly three features are required.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       body body models.CreateProjectRequest true "Project"
// @Success     201 {object} models.ProjectResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/v1/projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	project, err := h.projects.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		respondError(c, "failed to create project", err)
		return
	}
	c.JSON(http.StatusCreated, models.NewProjectResponse(project, nil))
}

// ListProjects godoc
// @Summary     List projects
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       status query string false "Filter by status (draft, processing, completed, error)"
// @Success     200 {object} models.ProjectListResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/v1/projects [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var status *models.ProjectStatus
	if raw := c.Query("status"); raw != "" {
		s, valid := models.ParseProjectStatus(raw)
		if !valid {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid status", Message: raw})
			return
		}
		status = &s
	}

	projects, err := h.projects.List(c.Request.Context(), user.ID, status)
	if err != nil {
		respondError(c, "failed to list projects", err)
		return
	}

	resp := models.ProjectListResponse{Projects: make([]models.ProjectResponse, 0, len(projects))}
	for i := range projects {
		resp.Projects = append(resp.Projects, models.NewProjectResponse(&projects[i], nil))
	}
	c.JSON(http.StatusOK, resp)
}

// GetProject godoc
// @Summary     Get a project
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Param       include query string false "Set to 'assets' to embed the asset list"
// @Success     200 {object} models.ProjectResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{id} [get]
func (h *ProjectsHandler) GetProject(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.Get(c.Request.Context(), user.ID, projectID)
	if err != nil {
		respondError(c, "failed to get project", err)
		return
	}

	var assets []models.Asset
	if c.Query("include") == "assets" {
		assets, err = h.assets.List(c.Request.Context(), user.ID, projectID)
		if err != nil {
			respondError(c, "failed to list assets", err)
			return
		}
	}
	c.JSON(http.StatusOK, models.NewProjectResponse(project, assets))
}

// UpdateProject godoc
// @Summary     Update a project
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Param       body body models.UpdateProjectRequest true "Fields to change"
// @Success     200 {object} models.ProjectResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{id} [patch]
func (h *ProjectsHandler) UpdateProject(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	project, err := h.projects.Update(c.Request.Context(), user.ID, projectID, req)
	if err != nil {
		respondError(c, "failed to update project", err)
		return
	}
	c.JSON(http.StatusOK, models.NewProjectResponse(project, nil))
}

// DeleteProject godoc
// @Summary     Delete a project
// @Description Removes the project and its assets. Rejected while a job is queued or running.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Success     200 {object} models.SuccessResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /api/v1/projects/{id} [delete]
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), user.ID, projectID); err != nil {
		respondError(c, "failed to delete project", err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

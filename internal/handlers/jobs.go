package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brochure-backend/internal/jobstate"
	"brochure-backend/internal/middleware"
	"brochure-backend/internal/models"
	"brochure-backend/internal/services"
)

type JobsHandler struct {
	jobs *services.JobService
}

func NewJobsHandler(jobs *services.JobService) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

// CreateJob godoc
// @Summary     Start brochure generation
// @Description Queues a generation job for the project and returns immediately. Poll GET /jobs/{id} for progress.
// @Tags        jobs
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       body body models.CreateJobRequest true "Job"
// @Success     202 {object} models.CreateJobResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     429 {object} models.ErrorResponse
// @Router      /api/v1/jobs [post]
func (h *JobsHandler) CreateJob(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var req models.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid projectId", Message: err.Error()})
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), user.ID, projectID, models.JobType(req.Type))
	if err != nil {
		respondError(c, "failed to create job", err)
		return
	}
	c.JSON(http.StatusAccepted, models.CreateJobResponse{JobID: job.ID.String()})
}

// ListJobs godoc
// @Summary     List the current user's jobs
// @Tags        jobs
// @Produce     json
// @Security    Bearer
// @Param       status query string false "Filter by status (queued, running, done, error)"
// @Success     200 {object} models.JobListResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/v1/jobs [get]
func (h *JobsHandler) ListJobs(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var status *models.JobStatus
	if raw := c.Query("status"); raw != "" {
		s, valid := models.ParseJobStatus(raw)
		if !valid {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid status", Message: raw})
			return
		}
		status = &s
	}

	jobs, err := h.jobs.ListForUser(c.Request.Context(), user.ID, status)
	if err != nil {
		respondError(c, "failed to list jobs", err)
		return
	}
	c.JSON(http.StatusOK, jobList(jobs))
}

// ListProjectJobs godoc
// @Summary     List a project's jobs
// @Tags        jobs
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Success     200 {object} models.JobListResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{id}/jobs [get]
func (h *JobsHandler) ListProjectJobs(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	jobs, err := h.jobs.ListForProject(c.Request.Context(), user.ID, projectID)
	if err != nil {
		respondError(c, "failed to list jobs", err)
		return
	}
	c.JSON(http.StatusOK, jobList(jobs))
}

// GetJob godoc
// @Summary     Get job status
// @Description Returns status, progress, error and resultId plus a ready-to-render view of the job.
// @Tags        jobs
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Job ID"
// @Success     200 {object} models.JobResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/jobs/{id} [get]
func (h *JobsHandler) GetJob(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), user.ID, jobID)
	if err != nil {
		respondError(c, "failed to get job", err)
		return
	}
	c.JSON(http.StatusOK, models.NewJobResponse(job, jobstate.Describe(job)))
}

// CancelJob godoc
// @Summary     Cancel a job
// @Tags        jobs
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Job ID"
// @Success     200 {object} models.SuccessResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /api/v1/jobs/{id}/cancel [post]
func (h *JobsHandler) CancelJob(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.jobs.Cancel(c.Request.Context(), user.ID, jobID); err != nil {
		respondError(c, "failed to cancel job", err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// UpdateJob godoc
// @Summary     Update job status (internal)
// @Description Trusted status patch for server-to-server callers. Terminal jobs cannot change.
// @Tags        internal
// @Accept      json
// @Produce     json
// @Param       X-Internal-Token header string true "Shared internal token"
// @Param       id path string true "Job ID"
// @Param       body body models.UpdateJobRequest true "Status patch"
// @Success     200 {object} models.JobResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /internal/jobs/{id} [patch]
func (h *JobsHandler) UpdateJob(c *gin.Context) {
	jobID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	status, valid := models.ParseJobStatus(req.Status)
	if !valid {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid status", Message: req.Status})
		return
	}
	update := jobstate.Update{Status: status, Progress: req.Progress}
	if req.Error != nil {
		update.Error = *req.Error
	}
	if req.ResultID != nil {
		resultID, err := uuid.Parse(*req.ResultID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid resultId", Message: err.Error()})
			return
		}
		update.ResultID = uuid.NullUUID{UUID: resultID, Valid: true}
	}

	job, err := h.jobs.UpdateStatus(c.Request.Context(), jobID, update)
	if err != nil {
		respondError(c, "failed to update job", err)
		return
	}
	c.JSON(http.StatusOK, models.NewJobResponse(job, jobstate.Describe(job)))
}

func jobList(jobs []models.Job) models.JobListResponse {
	resp := models.JobListResponse{Jobs: make([]models.JobResponse, 0, len(jobs))}
	for i := range jobs {
		resp.Jobs = append(resp.Jobs, models.NewJobResponse(&jobs[i], jobstate.Describe(&jobs[i])))
	}
	return resp
}

// Package server assembles the HTTP API and the background generation components.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"brochure-backend/internal/handlers"
	"brochure-backend/internal/middleware"
	"brochure-backend/internal/services"
)

// RouterDeps is everything the HTTP surface needs.
type RouterDeps struct {
	Users    *services.UserService
	Projects *services.ProjectService
	Assets   *services.AssetService
	Jobs     *services.JobService
	Renders  *services.RenderService

	Store   handlers.Pinger
	Backend handlers.HealthChecker

	JWTSecret        string
	InternalToken    string
	JobRatePerMinute int
	AssetMaxBytes    int64

	Logger *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))

	health := handlers.NewHealthHandler(deps.Store, deps.Backend)
	router.GET("/health", health.Health)
	router.GET("/health/ready", health.Ready)

	projects := handlers.NewProjectsHandler(deps.Projects, deps.Assets)
	assets := handlers.NewAssetsHandler(deps.Assets, deps.AssetMaxBytes)
	jobs := handlers.NewJobsHandler(deps.Jobs)
	renders := handlers.NewRendersHandler(deps.Renders)
	limiter := middleware.NewRateLimiter(deps.JobRatePerMinute)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(deps.JWTSecret))
	api.Use(middleware.ResolveUser(deps.Users, deps.Logger))

	api.GET("/me", handlers.Me)

	// Projects
	api.POST("/projects", projects.CreateProject)
	api.GET("/projects", projects.ListProjects)
	api.GET("/projects/:id", projects.GetProject)
	api.PATCH("/projects/:id", projects.UpdateProject)
	api.DELETE("/projects/:id", projects.DeleteProject)

	// Assets
	api.POST("/projects/:id/assets/upload-url", assets.CreateUploadURL)
	api.POST("/projects/:id/assets/upload", assets.UploadAsset)
	api.POST("/projects/:id/assets", assets.RegisterAsset)
	api.GET("/projects/:id/assets", assets.ListAssets)
	api.DELETE("/projects/:id/assets/:assetId", assets.DeleteAsset)

	// Jobs and renders
	api.POST("/jobs", limiter.Middleware(), jobs.CreateJob)
	api.GET("/jobs", jobs.ListJobs)
	api.GET("/jobs/:id", jobs.GetJob)
	api.POST("/jobs/:id/cancel", jobs.CancelJob)
	api.GET("/projects/:id/jobs", jobs.ListProjectJobs)
	api.GET("/projects/:id/renders", renders.ListProjectRenders)
	api.GET("/renders/:id", renders.GetRender)

	internal := router.Group("/internal")
	internal.Use(middleware.InternalToken(deps.InternalToken))
	internal.PATCH("/jobs/:id", jobs.UpdateJob)

	return router
}

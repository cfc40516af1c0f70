// Package simulator is a stand-in for the AI copy and render service. It answers the same
// routes with deterministic content and can be told to fail, for tests and local development.
package simulator

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"brochure-backend/internal/backend"
	"brochure-backend/internal/models"
)

// Options controls how the simulator answers. Zero status codes mean success.
type Options struct {
	CopyStatus   int
	RenderStatus int
	// BulletCount overrides the number of bullets returned, to exercise validation.
	BulletCount int
	OmitPDF     bool
	OmitPNG     bool
	Latency     time.Duration
	// BeforeRender runs before the render route answers.
	BeforeRender func(req backend.RenderRequest)
}

type Simulator struct {
	mu          sync.Mutex
	opts        Options
	copyCalls   int
	renderCalls int
	lastCopy    *backend.CopyRequest
	lastRender  *backend.RenderRequest
}

func New(opts Options) *Simulator {
	return &Simulator{opts: opts}
}

func (s *Simulator) SetOptions(opts Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
}

func (s *Simulator) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "brochure-simulator"})
	})
	api.POST("/ai/generate-copy", s.generateCopy)
	api.POST("/render/generate", s.render)
	return r
}

func (s *Simulator) generateCopy(c *gin.Context) {
	var req backend.CopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	s.copyCalls++
	s.lastCopy = &req
	opts := s.opts
	s.mu.Unlock()

	time.Sleep(opts.Latency)
	if opts.CopyStatus != 0 && opts.CopyStatus != http.StatusOK {
		c.JSON(opts.CopyStatus, gin.H{"detail": "Content generation failed: simulated failure"})
		return
	}

	c.JSON(http.StatusOK, backend.CopyResponse{
		Success:  true,
		CopyData: buildCopy(req, opts.BulletCount),
		Message:  "Generated by simulator",
	})
}

func (s *Simulator) render(c *gin.Context) {
	var req backend.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	s.renderCalls++
	s.lastRender = &req
	opts := s.opts
	s.mu.Unlock()

	if opts.BeforeRender != nil {
		opts.BeforeRender(req)
	}
	time.Sleep(opts.Latency)
	if opts.RenderStatus != 0 && opts.RenderStatus != http.StatusOK {
		c.JSON(opts.RenderStatus, gin.H{"detail": "Brochure generation failed: simulated failure"})
		return
	}

	resp := backend.RenderResponse{Success: true, Message: "Rendered by simulator"}
	if !opts.OmitPDF {
		resp.PdfURL = fmt.Sprintf("https://renders.example.com/%s/%s.pdf", req.ProjectID, req.JobID)
	}
	if !opts.OmitPNG {
		resp.PngURL = fmt.Sprintf("https://renders.example.com/%s/%s.png", req.ProjectID, req.JobID)
	}
	c.JSON(http.StatusOK, resp)
}

func buildCopy(req backend.CopyRequest, bulletCount int) models.CopyData {
	if bulletCount == 0 {
		bulletCount = models.FeatureCount
	}

	bullets := make([]models.Bullet, 0, bulletCount)
	for i := range bulletCount {
		title := fmt.Sprintf("Benefit %d", i+1)
		if i < len(req.SelectedFeatures) {
			title = req.SelectedFeatures[i]
		}
		bullets = append(bullets, models.Bullet{
			Title: truncate(title, 28),
			Desc:  truncate(fmt.Sprintf("%s delivers %s.", req.BusinessInfo.Name, title), 120),
		})
	}

	audience := req.BusinessInfo.TargetAudience
	if audience == "" {
		audience = "everyone"
	}
	return models.CopyData{
		Headline:    truncate(fmt.Sprintf("%s: %s built for %s", req.BusinessInfo.Name, req.BusinessInfo.Type, audience), 90),
		Subheadline: truncate(req.BusinessInfo.Description, 140),
		Bullets:     bullets,
		CTA:         &models.CallToAction{Label: "Get started", Sub: "No commitment required"},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (s *Simulator) CopyCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyCalls
}

func (s *Simulator) RenderCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderCalls
}

func (s *Simulator) LastCopyRequest() *backend.CopyRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCopy
}

func (s *Simulator) LastRenderRequest() *backend.RenderRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRender
}

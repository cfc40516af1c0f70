package services_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"brochure-backend/internal/backend"
	"brochure-backend/internal/memstore"
	"brochure-backend/internal/models"
	"brochure-backend/internal/queue"
	"brochure-backend/internal/services"
	"brochure-backend/internal/simulator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var _ services.Store = (*memstore.Store)(nil)
var _ services.BlobStore = (*memstore.Blobs)(nil)

type fixture struct {
	store    *memstore.Store
	blobs    *memstore.Blobs
	sim      *simulator.Simulator
	queue    *queue.ChannelQueue
	users    *services.UserService
	projects *services.ProjectService
	assets   *services.AssetService
	jobs     *services.JobService
	renders  *services.RenderService
	gateway  *services.GenerationService
	user     *models.User
	clock    *steppingClock
}

// steppingClock advances one second on every read so records get distinct timestamps.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newFixture(t *testing.T, opts simulator.Options) *fixture {
	t.Helper()

	clock := &steppingClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := memstore.New()
	store.SetClock(clock.Now)
	blobs := memstore.NewBlobs("brochure-assets")

	sim := simulator.New(opts)
	srv := httptest.NewServer(sim.Handler())
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	q := queue.NewChannelQueue(16)

	f := &fixture{
		store:    store,
		blobs:    blobs,
		sim:      sim,
		queue:    q,
		users:    services.NewUserService(store),
		projects: services.NewProjectService(store, blobs, logger),
		assets:   services.NewAssetService(store, blobs, 10<<20, logger),
		jobs:     services.NewJobService(store, q, logger),
		renders:  services.NewRenderService(store),
		gateway: services.NewGenerationService(store, blobs, backend.NewClient(srv.URL, 5*time.Second),
			services.GenerationConfig{Template: "product_a", Palette: models.Palette{Primary: "#2563eb"}}, logger),
		clock: clock,
	}
	f.user = f.newUser(t, "user-1")
	return f
}

func (f *fixture) newUser(t *testing.T, subject string) *models.User {
	t.Helper()
	u, err := f.users.Resolve(context.Background(), subject, subject+"@example.com", "")
	require.NoError(t, err)
	return u
}

func projectRequest() models.CreateProjectRequest {
	return models.CreateProjectRequest{
		Title:        "Spring launch",
		BusinessInfo: models.BusinessInfo{Name: "Acme", Type: "Bakery"},
		Features: []models.Feature{
			{Title: "Fresh bread", Desc: "Baked daily"},
			{Title: "Local flour", Desc: "From nearby mills"},
			{Title: "Fast delivery", Desc: "Within the hour"},
		},
	}
}

func (f *fixture) newProject(t *testing.T, userID uuid.UUID) *models.Project {
	t.Helper()
	p, err := f.projects.Create(context.Background(), userID, projectRequest())
	require.NoError(t, err)
	return p
}

func (f *fixture) upload(t *testing.T, project *models.Project, name string, isLogo bool) *models.Asset {
	t.Helper()
	a, err := f.assets.Upload(context.Background(), project.UserID, project.ID, name, "image/png", []byte("png-bytes"), isLogo)
	require.NoError(t, err)
	return a
}

func (f *fixture) job(t *testing.T, id uuid.UUID) *models.Job {
	t.Helper()
	j, err := f.store.GetJob(context.Background(), id)
	require.NoError(t, err)
	return j
}

func (f *fixture) project(t *testing.T, id uuid.UUID) *models.Project {
	t.Helper()
	p, err := f.store.GetProject(context.Background(), id)
	require.NoError(t, err)
	return p
}

// render stores a finished render for job directly, as the generation run would.
func (f *fixture) render(t *testing.T, job *models.Job) *models.Render {
	t.Helper()
	r := &models.Render{
		JobID:     job.ID,
		ProjectID: job.ProjectID,
		UserID:    job.UserID,
		PdfURL:    "https://renders.example.com/" + job.ID.String() + ".pdf",
		Copy:      models.CopyData{Headline: "Fresh every day"},
		Layout:    models.LayoutData{Template: "product_a"},
	}
	require.NoError(t, f.store.CreateRender(context.Background(), r))
	return r
}

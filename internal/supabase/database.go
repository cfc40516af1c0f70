package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/models"
)

// DatabaseClient is the Postgres-backed entity store.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func notFound(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(entity)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}

func (d *DatabaseClient) UpsertUser(ctx context.Context, authSubject, email string, name sql.NullString) (*models.User, error) {
	var user models.User
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO users (id, auth_subject, email, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (auth_subject) DO UPDATE
		SET email = EXCLUDED.email, name = EXCLUDED.name, updated_at = NOW()
		RETURNING id, auth_subject, email, name, created_at, updated_at
	`, uuid.New(), authSubject, email, name).Scan(
		&user.ID, &user.AuthSubject, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &user, nil
}

func (d *DatabaseClient) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := d.db.QueryRowContext(ctx, `
		SELECT id, auth_subject, email, name, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&user.ID, &user.AuthSubject, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (d *DatabaseClient) GetUserBySubject(ctx context.Context, authSubject string) (*models.User, error) {
	var user models.User
	err := d.db.QueryRowContext(ctx, `
		SELECT id, auth_subject, email, name, created_at, updated_at
		FROM users
		WHERE auth_subject = $1
	`, authSubject).Scan(&user.ID, &user.AuthSubject, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

const projectColumns = `id, user_id, title, business_info, features, status, created_at, updated_at`

func scanProject(row scanner) (*models.Project, error) {
	var (
		p            models.Project
		businessInfo []byte
		features     []byte
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &businessInfo, &features, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(businessInfo, &p.BusinessInfo); err != nil {
		return nil, fmt.Errorf("failed to decode business info: %w", err)
	}
	if err := json.Unmarshal(features, &p.Features); err != nil {
		return nil, fmt.Errorf("failed to decode features: %w", err)
	}
	return &p, nil
}

func (d *DatabaseClient) CreateProject(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	businessInfo, err := json.Marshal(project.BusinessInfo)
	if err != nil {
		return fmt.Errorf("failed to encode business info: %w", err)
	}
	features, err := json.Marshal(project.Features)
	if err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}

	err = d.db.QueryRowContext(ctx, `
		INSERT INTO projects (id, user_id, title, business_info, features, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, project.ID, project.UserID, project.Title, businessInfo, features, project.Status).Scan(
		&project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, projectID)
	p, err := scanProject(row)
	if err != nil {
		return nil, notFound(err, "project")
	}
	return p, nil
}

func (d *DatabaseClient) ListProjects(ctx context.Context, userID uuid.UUID, status *models.ProjectStatus) ([]models.Project, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
	`, userID, nullableStatus(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (d *DatabaseClient) UpdateProject(ctx context.Context, project *models.Project) error {
	businessInfo, err := json.Marshal(project.BusinessInfo)
	if err != nil {
		return fmt.Errorf("failed to encode business info: %w", err)
	}
	features, err := json.Marshal(project.Features)
	if err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}

	err = d.db.QueryRowContext(ctx, `
		UPDATE projects
		SET title = $1, business_info = $2, features = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`, project.Title, businessInfo, features, project.ID).Scan(&project.UpdatedAt)
	if err != nil {
		return notFound(err, "project")
	}
	return nil
}

func (d *DatabaseClient) SetProjectStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE projects
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, projectID)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	return expectOne(res, "project")
}

func (d *DatabaseClient) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	// Assets cascade with the project row.
	res, err := d.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return expectOne(res, "project")
}

const assetColumns = `id, project_id, user_id, storage_path, mime_type, size, width, height, is_logo, uploaded_at`

func scanAsset(row scanner) (*models.Asset, error) {
	var a models.Asset
	err := row.Scan(&a.ID, &a.ProjectID, &a.UserID, &a.StoragePath, &a.MimeType, &a.Size,
		&a.Width, &a.Height, &a.IsLogo, &a.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (d *DatabaseClient) CreateAsset(ctx context.Context, asset *models.Asset) error {
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO assets (id, project_id, user_id, storage_path, mime_type, size, width, height, is_logo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING uploaded_at
	`, asset.ID, asset.ProjectID, asset.UserID, asset.StoragePath, asset.MimeType, asset.Size,
		asset.Width, asset.Height, asset.IsLogo).Scan(&asset.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetAsset(ctx context.Context, assetID uuid.UUID) (*models.Asset, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, assetID)
	a, err := scanAsset(row)
	if err != nil {
		return nil, notFound(err, "asset")
	}
	return a, nil
}

func (d *DatabaseClient) ListAssets(ctx context.Context, projectID uuid.UUID) ([]models.Asset, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE project_id = $1
		ORDER BY uploaded_at ASC, id ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

func (d *DatabaseClient) DeleteAsset(ctx context.Context, assetID uuid.UUID) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, assetID)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return expectOne(res, "asset")
}

const jobColumns = `id, type, project_id, user_id, status, progress, error_message, result_id, created_at, updated_at`

func scanJob(row scanner) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.Type, &j.ProjectID, &j.UserID, &j.Status, &j.Progress,
		&j.Error, &j.ResultID, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (d *DatabaseClient) CreateJob(ctx context.Context, job *models.Job) error {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO jobs (id, type, project_id, user_id, status, progress)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, job.ID, job.Type, job.ProjectID, job.UserID, job.Status, job.Progress).Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, jobID)
	j, err := scanJob(row)
	if err != nil {
		return nil, notFound(err, "job")
	}
	return j, nil
}

func (d *DatabaseClient) queryJobs(ctx context.Context, query string, args ...any) ([]models.Job, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (d *DatabaseClient) ListJobsByProject(ctx context.Context, projectID uuid.UUID) ([]models.Job, error) {
	return d.queryJobs(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE project_id = $1
		ORDER BY created_at DESC
	`, projectID)
}

func (d *DatabaseClient) ListJobsByUser(ctx context.Context, userID uuid.UUID, status *models.JobStatus) ([]models.Job, error) {
	var s sql.NullString
	if status != nil {
		s = sql.NullString{String: string(*status), Valid: true}
	}
	return d.queryJobs(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
	`, userID, s)
}

func (d *DatabaseClient) ListStaleJobs(ctx context.Context, before time.Time) ([]models.Job, error) {
	return d.queryJobs(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE status = ANY($1) AND updated_at < $2
		ORDER BY updated_at ASC
	`, pq.Array([]string{string(models.JobStatusQueued), string(models.JobStatusRunning)}), before)
}

func (d *DatabaseClient) UpdateJob(ctx context.Context, jobID uuid.UUID, mutate func(job *models.Job) error) (*models.Job, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, jobID)
	job, err := scanJob(row)
	if err != nil {
		return nil, notFound(err, "job")
	}

	if err := mutate(job); err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE jobs
		SET status = $1, progress = $2, error_message = $3, result_id = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`, job.Status, job.Progress, job.Error, job.ResultID, job.ID).Scan(&job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit job update: %w", err)
	}
	return job, nil
}

const renderColumns = `id, job_id, project_id, user_id, pdf_url, png_url, copy_data, layout_data, created_at`

func scanRender(row scanner) (*models.Render, error) {
	var (
		r          models.Render
		copyData   []byte
		layoutData []byte
	)
	err := row.Scan(&r.ID, &r.JobID, &r.ProjectID, &r.UserID, &r.PdfURL, &r.PngURL, &copyData, &layoutData, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(copyData, &r.Copy); err != nil {
		return nil, fmt.Errorf("failed to decode copy data: %w", err)
	}
	if err := json.Unmarshal(layoutData, &r.Layout); err != nil {
		return nil, fmt.Errorf("failed to decode layout data: %w", err)
	}
	return &r, nil
}

func (d *DatabaseClient) CreateRender(ctx context.Context, render *models.Render) error {
	if render.ID == uuid.Nil {
		render.ID = uuid.New()
	}
	copyData, err := json.Marshal(render.Copy)
	if err != nil {
		return fmt.Errorf("failed to encode copy data: %w", err)
	}
	layoutData, err := json.Marshal(render.Layout)
	if err != nil {
		return fmt.Errorf("failed to encode layout data: %w", err)
	}

	err = d.db.QueryRowContext(ctx, `
		INSERT INTO renders (id, job_id, project_id, user_id, pdf_url, png_url, copy_data, layout_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, render.ID, render.JobID, render.ProjectID, render.UserID, render.PdfURL, render.PngURL,
		copyData, layoutData).Scan(&render.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.InvalidTransition("a render already exists for job %s", render.JobID)
		}
		return fmt.Errorf("failed to create render: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetRender(ctx context.Context, renderID uuid.UUID) (*models.Render, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+renderColumns+` FROM renders WHERE id = $1`, renderID)
	r, err := scanRender(row)
	if err != nil {
		return nil, notFound(err, "render")
	}
	return r, nil
}

func (d *DatabaseClient) ListRendersByProject(ctx context.Context, projectID uuid.UUID) ([]models.Render, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+renderColumns+`
		FROM renders
		WHERE project_id = $1
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list renders: %w", err)
	}
	defer rows.Close()

	var renders []models.Render
	for rows.Next() {
		r, err := scanRender(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan render: %w", err)
		}
		renders = append(renders, *r)
	}
	return renders, rows.Err()
}

func expectOne(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound(entity)
	}
	return nil
}

func nullableStatus(status *models.ProjectStatus) sql.NullString {
	if status == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*status), Valid: true}
}

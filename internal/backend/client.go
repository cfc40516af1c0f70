// Package backend is the HTTP client for the external AI copy and brochure render service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/models"
)

const (
	ServiceAI     = "AI generation"
	ServiceRender = "PDF generation"
	ServiceHealth = "Backend health check"

	generateCopyPath = "/api/ai/generate-copy"
	renderPath       = "/api/render/generate"
	healthPath       = "/api/health"
)

type BusinessInfo struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Description    string   `json:"description"`
	TargetAudience string   `json:"target_audience,omitempty"`
	KeyBenefits    []string `json:"key_benefits,omitempty"`
}

type CopyRequest struct {
	BusinessInfo     BusinessInfo `json:"business_info"`
	SelectedFeatures []string     `json:"selected_features"`
}

type CopyResponse struct {
	Success  bool            `json:"success"`
	CopyData models.CopyData `json:"copy_data"`
	Message  string          `json:"message"`
}

type RenderRequest struct {
	ProjectID string            `json:"project_id"`
	JobID     string            `json:"job_id"`
	CopyData  models.CopyData   `json:"copy_data"`
	Assets    map[string]string `json:"assets"`
	Template  string            `json:"template"`
}

type RenderResponse struct {
	Success    bool     `json:"success"`
	PdfURL     string   `json:"pdf_url,omitempty"`
	PngURL     string   `json:"png_url,omitempty"`
	Message    string   `json:"message"`
	RenderTime *float64 `json:"render_time,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateCopy asks the AI service for brochure copy. Non-2xx answers are returned as
// *apperrors.ExternalServiceError carrying the status and body; nothing is retried.
func (c *Client) GenerateCopy(ctx context.Context, req CopyRequest) (*CopyResponse, error) {
	var resp CopyResponse
	if err := c.postJSON(ctx, ServiceAI, generateCopyPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Render asks the render service to produce the brochure documents.
func (c *Client) Render(ctx context.Context, req RenderRequest) (*RenderResponse, error) {
	var resp RenderResponse
	if err := c.postJSON(ctx, ServiceRender, renderPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperrors.ExternalServiceError{Service: ServiceHealth, Err: transportError(ctx, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &apperrors.ExternalServiceError{Service: ServiceHealth, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

var (
	errUnreachable = errors.New("service unreachable")
	errTimedOut    = errors.New("request timed out")
)

// transportError drops the request URL and dial address from a failed round trip,
// since the message ends up on the job record.
func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errTimedOut
	}
	return errUnreachable
}

func (c *Client) postJSON(ctx context.Context, service, path string, in, out any) error {
	jsonData, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperrors.ExternalServiceError{Service: service, Err: transportError(ctx, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperrors.ExternalServiceError{Service: service, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apperrors.ExternalServiceError{Service: service, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &apperrors.ExternalServiceError{Service: service,
			Err: fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))}
	}
	return nil
}

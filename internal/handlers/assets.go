package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"brochure-backend/internal/middleware"
	"brochure-backend/internal/models"
	"brochure-backend/internal/services"
)

type AssetsHandler struct {
	assets   *services.AssetService
	maxBytes int64
}

func NewAssetsHandler(assets *services.AssetService, maxBytes int64) *AssetsHandler {
	return &AssetsHandler{assets: assets, maxBytes: maxBytes}
}

// CreateUploadURL godoc
// @Summary     Issue an asset upload URL
// @Description Returns a one-time signed URL and the storage path to register after uploading.
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Param       body body models.UploadURLRequest true "File name"
// @Success     200 {object} models.UploadURLResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{id}/assets/upload-url [post]
func (h *AssetsHandler) CreateUploadURL(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	resp, err := h.assets.UploadURL(c.Request.Context(), user.ID, projectID, req.Filename)
	if err != nil {
		respondError(c, "failed to create upload url", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterAsset godoc
// @Summary     Register an uploaded asset
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Param       body body models.RegisterAssetRequest true "Asset metadata"
// @Success     201 {object} models.AssetResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{id}/assets [post]
func (h *AssetsHandler) RegisterAsset(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.RegisterAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	asset, err := h.assets.Register(c.Request.Context(), user.ID, projectID, req)
	if err != nil {
		respondError(c, "failed to register asset", err)
		return
	}
	c.JSON(http.StatusCreated, models.NewAssetResponse(asset))
}

// UploadAsset godoc
// @Summary     Upload an asset through the API
// @Tags        assets
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Param       file formData file true "Image (jpeg, png or svg)"
// @Param       isLogo formData bool false "Use the image as the logo"
// @Success     201 {object} models.AssetResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{id}/assets/upload [post]
func (h *AssetsHandler) UploadAsset(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "file is required", Message: err.Error()})
		return
	}
	if file.Size > h.maxBytes {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "file too large",
			Message: "the limit is " + strconv.FormatInt(h.maxBytes, 10) + " bytes",
		})
		return
	}

	isLogo := false
	if raw := c.PostForm("isLogo"); raw != "" {
		isLogo, err = strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid isLogo", Message: err.Error()})
			return
		}
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to open file", Message: err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file", Message: err.Error()})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	asset, err := h.assets.Upload(c.Request.Context(), user.ID, projectID, file.Filename, contentType, data, isLogo)
	if err != nil {
		respondError(c, "failed to upload asset", err)
		return
	}
	c.JSON(http.StatusCreated, models.NewAssetResponse(asset))
}

// ListAssets godoc
// @Summary     List project assets
// @Tags        assets
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Success     200 {object} models.AssetListResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{id}/assets [get]
func (h *AssetsHandler) ListAssets(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	assets, err := h.assets.List(c.Request.Context(), user.ID, projectID)
	if err != nil {
		respondError(c, "failed to list assets", err)
		return
	}

	resp := models.AssetListResponse{Assets: make([]models.AssetResponse, 0, len(assets))}
	for i := range assets {
		resp.Assets = append(resp.Assets, models.NewAssetResponse(&assets[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteAsset godoc
// @Summary     Delete an asset
// @Tags        assets
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Param       assetId path string true "Asset ID"
// @Success     200 {object} models.SuccessResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{id}/assets/{assetId} [delete]
func (h *AssetsHandler) DeleteAsset(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	assetID, ok := uuidParam(c, "assetId")
	if !ok {
		return
	}

	if err := h.assets.Delete(c.Request.Context(), user.ID, projectID, assetID); err != nil {
		respondError(c, "failed to delete asset", err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

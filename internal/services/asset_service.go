package services

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/models"
)

type AssetService struct {
	store    Store
	blobs    BlobStore
	maxBytes int64
	logger   *zap.Logger
}

func NewAssetService(store Store, blobs BlobStore, maxBytes int64, logger *zap.Logger) *AssetService {
	return &AssetService{store: store, blobs: blobs, maxBytes: maxBytes, logger: logger}
}

// ProjectPrefix is the storage prefix every asset of a project must live under.
func ProjectPrefix(userID, projectID uuid.UUID) string {
	return fmt.Sprintf("users/%s/projects/%s/", userID, projectID)
}

// UploadURL reserves a storage path for filename and returns a one-time upload URL for it.
func (s *AssetService) UploadURL(ctx context.Context, userID, projectID uuid.UUID, filename string) (*models.UploadURLResponse, error) {
	if _, err := ownedProject(ctx, s.store, userID, projectID); err != nil {
		return nil, err
	}

	storagePath, err := newStoragePath(userID, projectID, filename)
	if err != nil {
		return nil, err
	}
	uploadURL, err := s.blobs.CreateUploadURL(ctx, storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload url: %w", err)
	}
	return &models.UploadURLResponse{UploadURL: uploadURL, StoragePath: storagePath}, nil
}

// Register records an asset the client already uploaded.
func (s *AssetService) Register(ctx context.Context, userID, projectID uuid.UUID, req models.RegisterAssetRequest) (*models.Asset, error) {
	if _, err := ownedProject(ctx, s.store, userID, projectID); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(req.StoragePath, ProjectPrefix(userID, projectID)) || strings.Contains(req.StoragePath, "..") {
		return nil, apperrors.Validation("storagePath must be under %s", ProjectPrefix(userID, projectID))
	}
	if err := s.validate(req.MimeType, req.Size); err != nil {
		return nil, err
	}

	asset := &models.Asset{
		ProjectID:   projectID,
		UserID:      userID,
		StoragePath: req.StoragePath,
		MimeType:    req.MimeType,
		Size:        req.Size,
		Width:       nullInt32(req.Width),
		Height:      nullInt32(req.Height),
		IsLogo:      req.IsLogo,
	}
	if err := s.store.CreateAsset(ctx, asset); err != nil {
		return nil, err
	}
	s.logger.Info("asset registered",
		zap.String("asset_id", asset.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.Bool("is_logo", asset.IsLogo))
	return asset, nil
}

// Upload stores data on behalf of the client and registers it.
func (s *AssetService) Upload(ctx context.Context, userID, projectID uuid.UUID, filename, mimeType string, data []byte, isLogo bool) (*models.Asset, error) {
	if _, err := ownedProject(ctx, s.store, userID, projectID); err != nil {
		return nil, err
	}
	if err := s.validate(mimeType, int64(len(data))); err != nil {
		return nil, err
	}

	storagePath, err := newStoragePath(userID, projectID, filename)
	if err != nil {
		return nil, err
	}
	if err := s.blobs.Upload(ctx, storagePath, mimeType, data); err != nil {
		return nil, err
	}

	asset := &models.Asset{
		ProjectID:   projectID,
		UserID:      userID,
		StoragePath: storagePath,
		MimeType:    mimeType,
		Size:        int64(len(data)),
		IsLogo:      isLogo,
	}
	if err := s.store.CreateAsset(ctx, asset); err != nil {
		if delErr := s.blobs.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("path", storagePath), zap.Error(delErr))
		}
		return nil, err
	}
	return asset, nil
}

func (s *AssetService) List(ctx context.Context, userID, projectID uuid.UUID) ([]models.Asset, error) {
	if _, err := ownedProject(ctx, s.store, userID, projectID); err != nil {
		return nil, err
	}
	return s.store.ListAssets(ctx, projectID)
}

func (s *AssetService) Delete(ctx context.Context, userID, projectID, assetID uuid.UUID) error {
	if _, err := ownedProject(ctx, s.store, userID, projectID); err != nil {
		return err
	}
	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.ProjectID != projectID {
		return apperrors.NotFound("asset")
	}

	if err := s.store.DeleteAsset(ctx, assetID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, asset.StoragePath); err != nil {
		s.logger.Warn("failed to remove asset blob", zap.String("path", asset.StoragePath), zap.Error(err))
	}
	return nil
}

func (s *AssetService) validate(mimeType string, size int64) error {
	if !slices.Contains(models.AllowedAssetMimeTypes, mimeType) {
		return apperrors.Validation("unsupported file type %q, allowed: %s", mimeType, strings.Join(models.AllowedAssetMimeTypes, ", "))
	}
	if size <= 0 {
		return apperrors.Validation("file is empty")
	}
	if size > s.maxBytes {
		return apperrors.Validation("file is %d bytes, the limit is %d", size, s.maxBytes)
	}
	return nil
}

func newStoragePath(userID, projectID uuid.UUID, filename string) (string, error) {
	name := sanitizeFilename(filename)
	if name == "" {
		return "", apperrors.Validation("filename is required")
	}
	return ProjectPrefix(userID, projectID) + uuid.NewString() + "-" + name, nil
}

func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}

func nullInt32(v *int32) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: *v, Valid: true}
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/models"
)

type UserService struct {
	store Store
}

func NewUserService(store Store) *UserService {
	return &UserService{store: store}
}

// Resolve returns the user for a verified identity. The row is written only when
// the identity is new or its email or name changed.
func (s *UserService) Resolve(ctx context.Context, authSubject, email, name string) (*models.User, error) {
	if strings.TrimSpace(authSubject) == "" {
		return nil, apperrors.Validation("identity subject is required")
	}
	var n sql.NullString
	if name != "" {
		n = sql.NullString{String: name, Valid: true}
	}

	existing, err := s.store.GetUserBySubject(ctx, authSubject)
	switch {
	case err == nil:
		if existing.Email == email && existing.Name == n {
			return existing, nil
		}
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}
	return s.store.UpsertUser(ctx, authSubject, email, n)
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

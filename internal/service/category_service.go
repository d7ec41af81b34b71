package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/splitbook/backend/internal/middleware"
	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/storage"
)

// CategoryService manages expense categories: a global set plus per-user
// custom ones.
type CategoryService struct {
	storage storage.Store
}

// NewCategoryService creates a category service.
func NewCategoryService(store storage.Store) *CategoryService {
	return &CategoryService{storage: store}
}

// List returns the global categories plus the caller's own, by name.
func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	return s.storage.ListCategories(ctx, actorID)
}

// Create adds a custom category owned by the caller.
func (s *CategoryService) Create(ctx context.Context, name, icon, categoryType string) (*models.Category, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingFields)
	}

	cat := &models.Category{
		Name:      strings.TrimSpace(name),
		Icon:      icon,
		Type:      categoryType,
		CreatedBy: actorID,
	}
	if err := s.storage.CreateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return cat, nil
}

// UpdateCategoryInput carries optional category updates; nil fields are kept.
type UpdateCategoryInput struct {
	Name *string
	Icon *string
	Type *string
}

// Update modifies a category the caller created. Global categories have no
// creator and cannot be changed by anyone.
func (s *CategoryService) Update(ctx context.Context, id string, in UpdateCategoryInput) (*models.Category, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	cat, err := s.storage.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat.CreatedBy == "" || cat.CreatedBy != actorID {
		return nil, ErrForbidden
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name", ErrMissingFields)
		}
		cat.Name = strings.TrimSpace(*in.Name)
	}
	if in.Icon != nil {
		cat.Icon = *in.Icon
	}
	if in.Type != nil {
		cat.Type = *in.Type
	}

	if err := s.storage.UpdateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return cat, nil
}

// Delete removes a category the caller created. Global categories cannot be
// deleted.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return ErrUnauthenticated
	}

	cat, err := s.storage.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if cat.CreatedBy == "" || cat.CreatedBy != actorID {
		return ErrForbidden
	}

	if err := s.storage.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

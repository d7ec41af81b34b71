package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/storage"
)

// CreateCategory inserts a new category.
func (s *SQLiteStore) CreateCategory(ctx context.Context, cat *models.Category) error {
	if cat.ID == "" {
		cat.ID = uuid.New().String()
	}
	if cat.CreatedAt == 0 {
		cat.CreatedAt = time.Now().Unix()
	}
	if cat.Type == "" {
		cat.Type = models.CategoryExpense
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, icon, type, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		cat.ID, cat.Name, cat.Icon, cat.Type, cat.CreatedBy, cat.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetCategory retrieves one category by ID.
func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	cat := &models.Category{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, icon, type, created_by, created_at FROM categories WHERE id = ?", id,
	).Scan(&cat.ID, &cat.Name, &cat.Icon, &cat.Type, &cat.CreatedBy, &cat.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return cat, nil
}

// UpdateCategory rewrites a category's name, icon and type.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, cat *models.Category) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, icon = ?, type = ? WHERE id = ?",
		cat.Name, cat.Icon, cat.Type, cat.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category. Records keep their category_id; lookups
// of a removed category return not-found and callers treat it as unset.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListCategories returns global categories plus the user's own, by name.
func (s *SQLiteStore) ListCategories(ctx context.Context, userID string) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, icon, type, created_by, created_at FROM categories WHERE created_by = '' OR created_by = ? ORDER BY name",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var cats []*models.Category
	for rows.Next() {
		cat := &models.Category{}
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Icon, &cat.Type, &cat.CreatedBy, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return cats, nil
}

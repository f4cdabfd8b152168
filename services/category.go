package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/famillio/household-api/models"
	"github.com/famillio/household-api/utils"

	"github.com/google/uuid"
)

type CategoryService struct {
	db *sql.DB
}

func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{db: db}
}

// checkParent enforces the single-level hierarchy: the parent must exist in
// the household and must not itself have a parent. Self-parenting is checked
// by the caller where the category id is known.
func (s *CategoryService) checkParent(ctx context.Context, householdID, parentID string) error {
	var grandparent sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT parent_id FROM categories WHERE id = $1 AND household_id = $2
	`, parentID, householdID).Scan(&grandparent)

	if err == sql.ErrNoRows {
		return models.NewNotFoundError("Parent category")
	}
	if err != nil {
		return fmt.Errorf("check parent category: %w", err)
	}
	if grandparent.Valid {
		return models.NewConflictError("parent category already has a parent")
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, householdID string, req models.CreateCategoryRequest) (*models.Category, error) {
	if req.ParentID != nil {
		if err := s.checkParent(ctx, householdID, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		ID:          uuid.New().String(),
		HouseholdID: householdID,
		Name:        req.Name,
		Icon:        req.Icon,
		Color:       req.Color,
		ParentID:    req.ParentID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, household_id, name, icon, color, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, category.ID, category.HouseholdID, category.Name, category.Icon, category.Color,
		category.ParentID, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}

	return category, nil
}

func (s *CategoryService) List(ctx context.Context, householdID string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, household_id, name, icon, color, parent_id, created_at, updated_at
		FROM categories
		WHERE household_id = $1
		ORDER BY name ASC
	`, householdID)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *CategoryService) Update(ctx context.Context, householdID, id string, req models.UpdateCategoryRequest) (*models.Category, error) {
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, models.NewConflictError("category cannot be its own parent")
		}
		if err := s.checkParent(ctx, householdID, *req.ParentID); err != nil {
			return nil, err
		}
		// A category with children cannot be demoted under a parent.
		var hasChildren bool
		err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM categories WHERE parent_id = $1)
		`, id).Scan(&hasChildren)
		if err != nil {
			return nil, fmt.Errorf("check children: %w", err)
		}
		if hasChildren {
			return nil, models.NewConflictError("category with children cannot have a parent")
		}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = $1, icon = $2, color = $3, parent_id = $4, updated_at = NOW()
		WHERE id = $5 AND household_id = $6
	`, req.Name, req.Icon, req.Color, req.ParentID, id, householdID)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, models.NewNotFoundError("Category")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, household_id, name, icon, color, parent_id, created_at, updated_at
		FROM categories WHERE id = $1
	`, id)
	return scanCategory(row)
}

// Delete removes a category. A category with children is never deletable.
// One that is referenced by expenses or allocations requires force, which
// nulls the references in the same transaction as the delete.
func (s *CategoryService) Delete(ctx context.Context, householdID, id string, force bool) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND household_id = $2)
	`, id, householdID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return models.NewNotFoundError("Category")
	}

	var hasChildren bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM categories WHERE parent_id = $1)
	`, id).Scan(&hasChildren)
	if err != nil {
		return fmt.Errorf("check children: %w", err)
	}
	if hasChildren {
		return models.NewConflictError("category has child categories")
	}

	var inUse bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM expenses WHERE category_id = $1)
		    OR EXISTS(SELECT 1 FROM budget_categories WHERE category_id = $1)
		    OR EXISTS(SELECT 1 FROM budgets WHERE category_id = $1)
	`, id).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("check usage: %w", err)
	}
	if inUse && !force {
		return models.NewConflictError("category is in use; pass force=true to delete and unlink")
	}

	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if inUse {
			if _, err := tx.ExecContext(ctx, `UPDATE expenses SET category_id = NULL WHERE category_id = $1`, id); err != nil {
				return fmt.Errorf("unlink expenses: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE budgets SET category_id = NULL WHERE category_id = $1`, id); err != nil {
				return fmt.Errorf("unlink budgets: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM budget_categories WHERE category_id = $1`, id); err != nil {
				return fmt.Errorf("remove allocations: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE recurring_expenses SET category_id = NULL WHERE category_id = $1`, id); err != nil {
				return fmt.Errorf("unlink recurring expenses: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	var icon, color, parentID sql.NullString
	err := row.Scan(&c.ID, &c.HouseholdID, &c.Name, &icon, &color, &parentID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if icon.Valid {
		c.Icon = &icon.String
	}
	if color.Valid {
		c.Color = &color.String
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	return &c, nil
}

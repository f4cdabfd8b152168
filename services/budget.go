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

type BudgetService struct {
	db *sql.DB
}

func NewBudgetService(db *sql.DB) *BudgetService {
	return &BudgetService{db: db}
}

// DeriveEndDate computes a budget's end date from its period. CUSTOM keeps
// the explicit end date and is validated by the caller.
func DeriveEndDate(period string, start time.Time) time.Time {
	switch period {
	case models.PeriodWeekly:
		return start.AddDate(0, 0, 7)
	case models.PeriodBiweekly:
		return start.AddDate(0, 0, 14)
	case models.PeriodMonthly:
		return start.AddDate(0, 1, 0)
	case models.PeriodQuarterly:
		return start.AddDate(0, 3, 0)
	case models.PeriodYearly:
		return start.AddDate(1, 0, 0)
	}
	return start
}

func (s *BudgetService) resolveDates(req models.CreateBudgetRequest) (time.Time, *models.APIError) {
	if !models.ValidPeriod(req.Period) {
		return time.Time{}, models.NewValidationError("invalid period", map[string]string{"period": "must be one of WEEKLY, BIWEEKLY, MONTHLY, QUARTERLY, YEARLY, CUSTOM"})
	}
	if req.Period == models.PeriodCustom {
		if req.EndDate == nil {
			return time.Time{}, models.NewValidationError("end date required for custom period", map[string]string{"end_date": "required when period is CUSTOM"})
		}
		if !req.EndDate.After(req.StartDate) {
			return time.Time{}, models.NewValidationError("end date before start date", map[string]string{"end_date": "must be after start_date"})
		}
		return *req.EndDate, nil
	}
	return DeriveEndDate(req.Period, req.StartDate), nil
}

// checkCategory verifies the top-level category belongs to the household.
// Cross-household references read as NOT_FOUND.
func (s *BudgetService) checkCategory(ctx context.Context, householdID, categoryID string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND household_id = $2)
	`, categoryID, householdID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check budget category: %w", err)
	}
	if !exists {
		return models.NewNotFoundError("Category")
	}
	return nil
}

func (s *BudgetService) validateAllocations(ctx context.Context, householdID string, amount float64, allocations []models.AllocationInput) error {
	var total float64
	seen := map[string]bool{}
	for _, a := range allocations {
		if seen[a.CategoryID] {
			return models.NewConflictError("duplicate category in allocations")
		}
		seen[a.CategoryID] = true
		total += a.AllocatedAmount

		var exists bool
		err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND household_id = $2)
		`, a.CategoryID, householdID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check allocation category: %w", err)
		}
		if !exists {
			return models.NewNotFoundError("Category")
		}
	}
	if total > amount {
		return models.NewConflictError("allocations exceed budget amount")
	}
	return nil
}

// Create inserts the budget and its category allocations atomically.
func (s *BudgetService) Create(ctx context.Context, householdID string, req models.CreateBudgetRequest) (*models.Budget, error) {
	endDate, apiErr := s.resolveDates(req)
	if apiErr != nil {
		return nil, apiErr
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, householdID, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	if err := s.validateAllocations(ctx, householdID, req.Amount, req.Allocations); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		ID:          uuid.New().String(),
		HouseholdID: householdID,
		Name:        req.Name,
		Amount:      req.Amount,
		Period:      req.Period,
		StartDate:   req.StartDate,
		EndDate:     endDate,
		CategoryID:  req.CategoryID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO budgets (id, household_id, name, amount, period, start_date, end_date, category_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, budget.ID, budget.HouseholdID, budget.Name, budget.Amount, budget.Period,
			budget.StartDate, budget.EndDate, budget.CategoryID, budget.CreatedAt, budget.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert budget: %w", err)
		}

		for i, a := range req.Allocations {
			allocation := models.BudgetCategory{
				ID:              uuid.New().String(),
				BudgetID:        budget.ID,
				CategoryID:      a.CategoryID,
				AllocatedAmount: a.AllocatedAmount,
				Position:        i,
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO budget_categories (id, budget_id, category_id, allocated_amount, position)
				VALUES ($1, $2, $3, $4, $5)
			`, allocation.ID, allocation.BudgetID, allocation.CategoryID, allocation.AllocatedAmount, allocation.Position)
			if err != nil {
				return fmt.Errorf("insert allocation: %w", err)
			}
			budget.Allocations = append(budget.Allocations, allocation)
		}
		return nil
	})
	if err != nil {
		if apiErr, ok := err.(*models.APIError); ok {
			return nil, apiErr
		}
		return nil, err
	}

	return budget, nil
}

func (s *BudgetService) List(ctx context.Context, householdID string) ([]models.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, household_id, name, amount, period, start_date, end_date, category_id, created_at, updated_at
		FROM budgets
		WHERE household_id = $1
		ORDER BY start_date DESC
	`, householdID)
	if err != nil {
		return nil, fmt.Errorf("fetch budgets: %w", err)
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (s *BudgetService) GetByID(ctx context.Context, householdID, id string) (*models.Budget, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, household_id, name, amount, period, start_date, end_date, category_id, created_at, updated_at
		FROM budgets
		WHERE id = $1 AND household_id = $2
	`, id, householdID)

	budget, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("Budget")
	}
	if err != nil {
		return nil, fmt.Errorf("fetch budget: %w", err)
	}

	allocations, err := s.getAllocations(ctx, id)
	if err != nil {
		return nil, err
	}
	budget.Allocations = allocations

	return budget, nil
}

// Update rewrites the budget and replaces its allocation set in one
// transaction.
func (s *BudgetService) Update(ctx context.Context, householdID, id string, req models.UpdateBudgetRequest) (*models.Budget, error) {
	createReq := models.CreateBudgetRequest(req)
	endDate, apiErr := s.resolveDates(createReq)
	if apiErr != nil {
		return nil, apiErr
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, householdID, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	if err := s.validateAllocations(ctx, householdID, req.Amount, req.Allocations); err != nil {
		return nil, err
	}

	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE budgets
			SET name = $1, amount = $2, period = $3, start_date = $4, end_date = $5, category_id = $6, updated_at = NOW()
			WHERE id = $7 AND household_id = $8
		`, req.Name, req.Amount, req.Period, req.StartDate, endDate, req.CategoryID, id, householdID)
		if err != nil {
			return fmt.Errorf("update budget: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return models.NewNotFoundError("Budget")
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM budget_categories WHERE budget_id = $1`, id); err != nil {
			return fmt.Errorf("clear allocations: %w", err)
		}
		for i, a := range req.Allocations {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO budget_categories (id, budget_id, category_id, allocated_amount, position)
				VALUES ($1, $2, $3, $4, $5)
			`, uuid.New().String(), id, a.CategoryID, a.AllocatedAmount, i)
			if err != nil {
				return fmt.Errorf("insert allocation: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if apiErr, ok := err.(*models.APIError); ok {
			return nil, apiErr
		}
		return nil, err
	}

	return s.GetByID(ctx, householdID, id)
}

func (s *BudgetService) Delete(ctx context.Context, householdID, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM budgets WHERE id = $1 AND household_id = $2
	`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return models.NewNotFoundError("Budget")
	}
	return nil
}

func (s *BudgetService) getAllocations(ctx context.Context, budgetID string) ([]models.BudgetCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bc.id, bc.budget_id, bc.category_id, bc.allocated_amount, bc.position, c.name
		FROM budget_categories bc
		INNER JOIN categories c ON bc.category_id = c.id
		WHERE bc.budget_id = $1
		ORDER BY bc.position ASC
	`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("fetch allocations: %w", err)
	}
	defer rows.Close()

	allocations := []models.BudgetCategory{}
	for rows.Next() {
		var a models.BudgetCategory
		if err := rows.Scan(&a.ID, &a.BudgetID, &a.CategoryID, &a.AllocatedAmount, &a.Position, &a.CategoryName); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

func scanBudget(row rowScanner) (*models.Budget, error) {
	var b models.Budget
	var categoryID sql.NullString
	err := row.Scan(&b.ID, &b.HouseholdID, &b.Name, &b.Amount, &b.Period,
		&b.StartDate, &b.EndDate, &categoryID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		b.CategoryID = &categoryID.String
	}
	return &b, nil
}

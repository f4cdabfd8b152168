package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/famillio/household-api/models"
)

// Round2 rounds to two decimal places, half away from zero on the cent.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateProgress derives spent/remaining/percentage/status from a budget
// amount and its line items. Only EXPENSE-type items count toward spend.
// A zero-amount budget yields percentage 0 and ON_TRACK rather than a
// division by zero.
func CalculateProgress(amount float64, expenses []models.Expense) models.BudgetProgress {
	var totalSpent float64
	for _, e := range expenses {
		if e.Type == models.TypeExpense {
			totalSpent += e.Amount
		}
	}
	totalSpent = Round2(totalSpent)

	var percentage float64
	if amount > 0 {
		percentage = Round2(totalSpent / amount * 100)
	}

	return models.BudgetProgress{
		TotalSpent: totalSpent,
		Remaining:  Round2(amount - totalSpent),
		Percentage: percentage,
		Status:     progressStatus(percentage),
	}
}

// Thresholds are inclusive at the lower bound; 90 is the over-budget cutoff.
func progressStatus(percentage float64) string {
	switch {
	case percentage >= 90:
		return models.StatusOverBudget
	case percentage >= 70:
		return models.StatusWarning
	default:
		return models.StatusOnTrack
	}
}

// EvaluateBudgetHealth computes health figures for one budget as of now.
// endDate nil means the budget never expires: daysRemaining and
// projectedSpending stay nil.
func EvaluateBudgetHealth(budget models.Budget, expenses []models.Expense, endDate *time.Time, now time.Time) models.BudgetHealth {
	progress := CalculateProgress(budget.Amount, expenses)

	health := models.BudgetHealth{
		BudgetID: budget.ID,
		Name:     budget.Name,
		Amount:   budget.Amount,
		Period:   budget.Period,
		Progress: progress,
	}

	if endDate == nil {
		return health
	}

	days := int(math.Ceil(endDate.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}
	health.DaysRemaining = &days

	elapsed := int(math.Ceil(now.Sub(budget.StartDate).Hours() / 24))
	if elapsed < 1 {
		elapsed = 1
	}
	totalDays := int(math.Ceil(endDate.Sub(budget.StartDate).Hours() / 24))
	dailyAverage := progress.TotalSpent / float64(elapsed)
	projected := Round2(dailyAverage * float64(totalDays))
	health.ProjectedSpending = &projected

	return health
}

// GroupByStatus buckets health results for the summary counts.
func GroupByStatus(budgets []models.BudgetHealth) (map[string][]models.BudgetHealth, models.BudgetHealthSummary) {
	grouped := map[string][]models.BudgetHealth{
		models.StatusOnTrack:    {},
		models.StatusWarning:    {},
		models.StatusOverBudget: {},
	}
	summary := models.BudgetHealthSummary{Total: len(budgets)}

	for _, b := range budgets {
		grouped[b.Progress.Status] = append(grouped[b.Progress.Status], b)
		switch b.Progress.Status {
		case models.StatusOnTrack:
			summary.OnTrack++
		case models.StatusWarning:
			summary.Warning++
		case models.StatusOverBudget:
			summary.OverBudget++
		}
	}

	return grouped, summary
}

// ProgressService fetches budgets with their line items and applies the
// calculators above.
type ProgressService struct {
	db *sql.DB
}

func NewProgressService(db *sql.DB) *ProgressService {
	return &ProgressService{db: db}
}

// GetBudgetProgress returns derived progress for one budget.
func (s *ProgressService) GetBudgetProgress(ctx context.Context, householdID, budgetID string) (*models.BudgetProgress, error) {
	var amount float64
	err := s.db.QueryRowContext(ctx, `
		SELECT amount FROM budgets
		WHERE id = $1 AND household_id = $2
	`, budgetID, householdID).Scan(&amount)

	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("Budget")
	}
	if err != nil {
		return nil, fmt.Errorf("fetch budget: %w", err)
	}

	expenses, err := s.budgetLineItems(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	progress := CalculateProgress(amount, expenses)
	return &progress, nil
}

// GetHealthReport evaluates every budget of the household whose end date is
// in the future, grouped by status.
func (s *ProgressService) GetHealthReport(ctx context.Context, householdID string, now time.Time) (*models.BudgetHealthReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, household_id, name, amount, period, start_date, end_date
		FROM budgets
		WHERE household_id = $1 AND end_date > $2
		ORDER BY end_date ASC
	`, householdID, now)
	if err != nil {
		return nil, fmt.Errorf("fetch budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.HouseholdID, &b.Name, &b.Amount, &b.Period, &b.StartDate, &b.EndDate); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	results := make([]models.BudgetHealth, 0, len(budgets))
	for _, b := range budgets {
		expenses, err := s.budgetLineItems(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		end := b.EndDate
		results = append(results, EvaluateBudgetHealth(b, expenses, &end, now))
	}

	grouped, summary := GroupByStatus(results)
	return &models.BudgetHealthReport{
		Budgets: results,
		Summary: summary,
		Grouped: grouped,
	}, nil
}

func (s *ProgressService) budgetLineItems(ctx context.Context, budgetID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, type
		FROM expenses
		WHERE budget_id = $1
	`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("fetch budget expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.Amount, &e.Type); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/famillio/household-api/models"
	"github.com/famillio/household-api/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// NextOccurrence advances one step past current for the given frequency.
// anchorDay is the day-of-month of the definition's start date; monthly and
// yearly steps clamp it to the last day of short months (a definition anchored
// on the 31st fires on Feb 28).
func NextOccurrence(current time.Time, frequency string, anchorDay int) time.Time {
	switch frequency {
	case models.FreqDaily:
		return current.AddDate(0, 0, 1)
	case models.FreqWeekly:
		return current.AddDate(0, 0, 7)
	case models.FreqBiweekly:
		return current.AddDate(0, 0, 14)
	case models.FreqMonthly:
		next := time.Date(current.Year(), current.Month()+1, 1, current.Hour(), current.Minute(), 0, 0, current.Location())
		return clampToMonth(next, anchorDay)
	case models.FreqYearly:
		next := time.Date(current.Year()+1, current.Month(), 1, current.Hour(), current.Minute(), 0, 0, current.Location())
		return clampToMonth(next, anchorDay)
	}
	return current.AddDate(0, 1, 0)
}

func clampToMonth(firstOfMonth time.Time, day int) time.Time {
	lastDay := time.Date(firstOfMonth.Year(), firstOfMonth.Month()+1, 0, 0, 0, 0, 0, firstOfMonth.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfMonth.Year(), firstOfMonth.Month(), day, firstOfMonth.Hour(), firstOfMonth.Minute(), 0, 0, firstOfMonth.Location())
}

// DueOccurrences lists every occurrence of a definition up to and including
// now, starting from next and never past endDate.
func DueOccurrences(next time.Time, frequency string, anchorDay int, endDate *time.Time, now time.Time) []time.Time {
	var due []time.Time
	for !next.After(now) {
		if endDate != nil && next.After(*endDate) {
			break
		}
		due = append(due, next)
		next = NextOccurrence(next, frequency, anchorDay)
	}
	return due
}

// RecurringService owns recurring-expense definitions and turns due ones into
// concrete expense rows.
type RecurringService struct {
	db *sql.DB
}

func NewRecurringService(db *sql.DB) *RecurringService {
	return &RecurringService{db: db}
}

func (s *RecurringService) Create(ctx context.Context, householdID, userID string, req models.CreateRecurringExpenseRequest) (*models.RecurringExpense, error) {
	if !models.ValidFrequency(req.Frequency) {
		return nil, models.NewValidationError("invalid frequency", map[string]string{"frequency": "must be one of DAILY, WEEKLY, BIWEEKLY, MONTHLY, YEARLY"})
	}
	if !models.ValidExpenseType(req.Type) {
		return nil, models.NewValidationError("invalid type", map[string]string{"type": "must be one of INCOME, EXPENSE, TRANSFER"})
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, models.NewValidationError("end date before start date", map[string]string{"end_date": "must be after start_date"})
	}
	if err := s.checkReferences(ctx, householdID, req.BudgetID, req.CategoryID); err != nil {
		return nil, err
	}

	rec := &models.RecurringExpense{
		ID:             uuid.New().String(),
		HouseholdID:    householdID,
		UserID:         userID,
		Description:    req.Description,
		Amount:         req.Amount,
		Type:           req.Type,
		Frequency:      req.Frequency,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		NextOccurrence: req.StartDate,
		BudgetID:       req.BudgetID,
		CategoryID:     req.CategoryID,
		Active:         true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_expenses
			(id, household_id, user_id, description, amount, type, frequency,
			 start_date, end_date, next_occurrence, budget_id, category_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, rec.ID, rec.HouseholdID, rec.UserID, rec.Description, rec.Amount, rec.Type, rec.Frequency,
		rec.StartDate, rec.EndDate, rec.NextOccurrence, rec.BudgetID, rec.CategoryID, rec.Active, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert recurring expense: %w", err)
	}

	return rec, nil
}

func (s *RecurringService) List(ctx context.Context, householdID string) ([]models.RecurringExpense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, household_id, user_id, description, amount, type, frequency,
		       start_date, end_date, next_occurrence, budget_id, category_id, active, created_at, updated_at
		FROM recurring_expenses
		WHERE household_id = $1
		ORDER BY next_occurrence ASC
	`, householdID)
	if err != nil {
		return nil, fmt.Errorf("fetch recurring expenses: %w", err)
	}
	defer rows.Close()

	recurring := []models.RecurringExpense{}
	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		recurring = append(recurring, *rec)
	}
	return recurring, rows.Err()
}

func (s *RecurringService) Update(ctx context.Context, householdID, id string, req models.UpdateRecurringExpenseRequest) (*models.RecurringExpense, error) {
	if err := s.checkReferences(ctx, householdID, nil, req.CategoryID); err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE recurring_expenses
		SET description = $1, amount = $2, end_date = $3, category_id = $4, active = $5, updated_at = NOW()
		WHERE id = $6 AND household_id = $7
	`, req.Description, req.Amount, req.EndDate, req.CategoryID, active, id, householdID)
	if err != nil {
		return nil, fmt.Errorf("update recurring expense: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, models.NewNotFoundError("Recurring expense")
	}

	return s.getByID(ctx, householdID, id)
}

func (s *RecurringService) Delete(ctx context.Context, householdID, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM recurring_expenses WHERE id = $1 AND household_id = $2
	`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete recurring expense: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return models.NewNotFoundError("Recurring expense")
	}
	return nil
}

// Materialize turns every due definition of the household into concrete
// expense rows. Each definition is processed in its own transaction: all of
// its due occurrences land or none do. Definitions whose end date has passed
// are deactivated.
func (s *RecurringService) Materialize(ctx context.Context, householdID string, now time.Time) (*models.MaterializeResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, household_id, user_id, description, amount, type, frequency,
		       start_date, end_date, next_occurrence, budget_id, category_id, active, created_at, updated_at
		FROM recurring_expenses
		WHERE household_id = $1 AND active = TRUE AND next_occurrence <= $2
	`, householdID, now)
	if err != nil {
		return nil, fmt.Errorf("fetch due definitions: %w", err)
	}

	var due []models.RecurringExpense
	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		due = append(due, *rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	created := 0
	for _, rec := range due {
		n, err := s.materializeOne(ctx, rec, now)
		if err != nil {
			return nil, err
		}
		created += n
	}

	return &models.MaterializeResult{Created: created}, nil
}

func (s *RecurringService) materializeOne(ctx context.Context, rec models.RecurringExpense, now time.Time) (int, error) {
	anchorDay := rec.StartDate.Day()
	occurrences := DueOccurrences(rec.NextOccurrence, rec.Frequency, anchorDay, rec.EndDate, now)

	next := rec.NextOccurrence
	for range occurrences {
		next = NextOccurrence(next, rec.Frequency, anchorDay)
	}
	stillActive := rec.EndDate == nil || !next.After(*rec.EndDate)

	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		for _, date := range occurrences {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO expenses
					(id, household_id, user_id, description, amount, type, date,
					 budget_id, category_id, recurring_id, tags, attachments)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			`, uuid.New().String(), rec.HouseholdID, rec.UserID, rec.Description, rec.Amount, rec.Type, date,
				rec.BudgetID, rec.CategoryID, rec.ID, pq.Array([]string{}), pq.Array([]string{}))
			if err != nil {
				return fmt.Errorf("insert materialized expense: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE recurring_expenses
			SET next_occurrence = $1, active = $2, updated_at = NOW()
			WHERE id = $3
		`, next, stillActive, rec.ID)
		if err != nil {
			return fmt.Errorf("advance next occurrence: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(occurrences), nil
}

func (s *RecurringService) getByID(ctx context.Context, householdID, id string) (*models.RecurringExpense, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, household_id, user_id, description, amount, type, frequency,
		       start_date, end_date, next_occurrence, budget_id, category_id, active, created_at, updated_at
		FROM recurring_expenses
		WHERE id = $1 AND household_id = $2
	`, id, householdID)

	rec, err := scanRecurring(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("Recurring expense")
	}
	return rec, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecurring(row rowScanner) (*models.RecurringExpense, error) {
	var rec models.RecurringExpense
	var endDate sql.NullTime
	var budgetID, categoryID sql.NullString

	err := row.Scan(&rec.ID, &rec.HouseholdID, &rec.UserID, &rec.Description, &rec.Amount, &rec.Type,
		&rec.Frequency, &rec.StartDate, &endDate, &rec.NextOccurrence, &budgetID, &categoryID,
		&rec.Active, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if endDate.Valid {
		rec.EndDate = &endDate.Time
	}
	if budgetID.Valid {
		rec.BudgetID = &budgetID.String
	}
	if categoryID.Valid {
		rec.CategoryID = &categoryID.String
	}
	return &rec, nil
}

// checkReferences verifies optional budget/category references resolve inside
// the household. Cross-household references read as NOT_FOUND.
func (s *RecurringService) checkReferences(ctx context.Context, householdID string, budgetID, categoryID *string) error {
	if budgetID != nil {
		var exists bool
		err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM budgets WHERE id = $1 AND household_id = $2)
		`, *budgetID, householdID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check budget reference: %w", err)
		}
		if !exists {
			return models.NewNotFoundError("Budget")
		}
	}
	if categoryID != nil {
		var exists bool
		err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND household_id = $2)
		`, *categoryID, householdID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check category reference: %w", err)
		}
		if !exists {
			return models.NewNotFoundError("Category")
		}
	}
	return nil
}

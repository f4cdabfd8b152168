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

type ExpenseService struct {
	db *sql.DB
}

func NewExpenseService(db *sql.DB) *ExpenseService {
	return &ExpenseService{db: db}
}

func validateExpenseInput(req models.CreateExpenseRequest) *models.APIError {
	fields := map[string]string{}
	if !models.ValidExpenseType(req.Type) {
		fields["type"] = "must be one of INCOME, EXPENSE, TRANSFER"
	}
	if req.Amount <= 0 {
		fields["amount"] = "must be positive"
	}
	if len(fields) > 0 {
		return models.NewValidationError("invalid expense", fields)
	}
	return nil
}

func (s *ExpenseService) Create(ctx context.Context, householdID, userID string, req models.CreateExpenseRequest) (*models.Expense, error) {
	if err := validateExpenseInput(req); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, householdID, req.BudgetID, req.CategoryID); err != nil {
		return nil, err
	}

	expense := newExpense(householdID, userID, req)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses
			(id, household_id, user_id, description, amount, type, date,
			 budget_id, category_id, tags, attachments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, expense.ID, expense.HouseholdID, expense.UserID, expense.Description, expense.Amount,
		expense.Type, expense.Date, expense.BudgetID, expense.CategoryID,
		pq.Array(expense.Tags), pq.Array(expense.Attachments), expense.CreatedAt, expense.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}

	return expense, nil
}

// BulkCreate inserts up to BulkCreateMax expenses in one transaction: every
// row lands or none do.
func (s *ExpenseService) BulkCreate(ctx context.Context, householdID, userID string, reqs []models.CreateExpenseRequest) ([]models.Expense, error) {
	if len(reqs) == 0 {
		return nil, models.NewValidationError("no expenses provided", map[string]string{"expenses": "must contain at least 1 item"})
	}
	if len(reqs) > models.BulkCreateMax {
		return nil, models.NewValidationError("too many expenses", map[string]string{"expenses": fmt.Sprintf("must contain at most %d items", models.BulkCreateMax)})
	}

	for i, req := range reqs {
		if err := validateExpenseInput(req); err != nil {
			err.Message = fmt.Sprintf("invalid expense at index %d", i)
			return nil, err
		}
		if err := s.checkReferences(ctx, householdID, req.BudgetID, req.CategoryID); err != nil {
			return nil, err
		}
	}

	expenses := make([]models.Expense, 0, len(reqs))
	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		for _, req := range reqs {
			expense := newExpense(householdID, userID, req)
			_, err := tx.ExecContext(ctx, `
				INSERT INTO expenses
					(id, household_id, user_id, description, amount, type, date,
					 budget_id, category_id, tags, attachments, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			`, expense.ID, expense.HouseholdID, expense.UserID, expense.Description, expense.Amount,
				expense.Type, expense.Date, expense.BudgetID, expense.CategoryID,
				pq.Array(expense.Tags), pq.Array(expense.Attachments), expense.CreatedAt, expense.UpdatedAt)
			if err != nil {
				return fmt.Errorf("insert expense: %w", err)
			}
			expenses = append(expenses, *expense)
		}
		return nil
	})
	if err != nil {
		if apiErr, ok := err.(*models.APIError); ok {
			return nil, apiErr
		}
		return nil, err
	}

	return expenses, nil
}

func (s *ExpenseService) List(ctx context.Context, householdID string, filter models.ExpenseFilter) ([]models.Expense, error) {
	query := `
		SELECT e.id, e.household_id, e.user_id, e.description, e.amount, e.type, e.date,
		       e.budget_id, e.category_id, e.recurring_id, e.tags, e.attachments,
		       e.created_at, e.updated_at, c.name, u.name
		FROM expenses e
		LEFT JOIN categories c ON e.category_id = c.id
		LEFT JOIN users u ON e.user_id = u.id
		WHERE e.household_id = $1
	`
	args := []interface{}{householdID}

	addArg := func(clause string, value interface{}) {
		args = append(args, value)
		query += fmt.Sprintf(" AND %s $%d", clause, len(args))
	}
	if filter.From != nil {
		addArg("e.date >=", *filter.From)
	}
	if filter.To != nil {
		addArg("e.date <=", *filter.To)
	}
	if filter.BudgetID != "" {
		addArg("e.budget_id =", filter.BudgetID)
	}
	if filter.CategoryID != "" {
		addArg("e.category_id =", filter.CategoryID)
	}
	if filter.Type != "" {
		addArg("e.type =", filter.Type)
	}
	query += " ORDER BY e.date DESC, e.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func (s *ExpenseService) GetByID(ctx context.Context, householdID, id string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT e.id, e.household_id, e.user_id, e.description, e.amount, e.type, e.date,
		       e.budget_id, e.category_id, e.recurring_id, e.tags, e.attachments,
		       e.created_at, e.updated_at, c.name, u.name
		FROM expenses e
		LEFT JOIN categories c ON e.category_id = c.id
		LEFT JOIN users u ON e.user_id = u.id
		WHERE e.id = $1 AND e.household_id = $2
	`, id, householdID)

	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("Expense")
	}
	if err != nil {
		return nil, fmt.Errorf("fetch expense: %w", err)
	}
	return e, nil
}

func (s *ExpenseService) Update(ctx context.Context, householdID, id string, req models.CreateExpenseRequest) (*models.Expense, error) {
	if err := validateExpenseInput(req); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, householdID, req.BudgetID, req.CategoryID); err != nil {
		return nil, err
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	attachments := req.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE expenses
		SET description = $1, amount = $2, type = $3, date = $4,
		    budget_id = $5, category_id = $6, tags = $7, attachments = $8, updated_at = NOW()
		WHERE id = $9 AND household_id = $10
	`, req.Description, req.Amount, req.Type, req.Date, req.BudgetID, req.CategoryID,
		pq.Array(tags), pq.Array(attachments), id, householdID)
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, models.NewNotFoundError("Expense")
	}

	return s.GetByID(ctx, householdID, id)
}

func (s *ExpenseService) Delete(ctx context.Context, householdID, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM expenses WHERE id = $1 AND household_id = $2
	`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return models.NewNotFoundError("Expense")
	}
	return nil
}

func newExpense(householdID, userID string, req models.CreateExpenseRequest) *models.Expense {
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	attachments := req.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	return &models.Expense{
		ID:          uuid.New().String(),
		HouseholdID: householdID,
		UserID:      userID,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Date:        req.Date,
		BudgetID:    req.BudgetID,
		CategoryID:  req.CategoryID,
		Tags:        tags,
		Attachments: attachments,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var e models.Expense
	var budgetID, categoryID, recurringID, categoryName, userName sql.NullString
	var tags, attachments pq.StringArray

	err := row.Scan(&e.ID, &e.HouseholdID, &e.UserID, &e.Description, &e.Amount, &e.Type, &e.Date,
		&budgetID, &categoryID, &recurringID, &tags, &attachments,
		&e.CreatedAt, &e.UpdatedAt, &categoryName, &userName)
	if err != nil {
		return nil, err
	}

	if budgetID.Valid {
		e.BudgetID = &budgetID.String
	}
	if categoryID.Valid {
		e.CategoryID = &categoryID.String
	}
	if recurringID.Valid {
		e.RecurringID = &recurringID.String
	}
	if categoryName.Valid {
		e.CategoryName = &categoryName.String
	}
	e.UserName = userName.String
	e.Tags = []string(tags)
	e.Attachments = []string(attachments)
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if e.Attachments == nil {
		e.Attachments = []string{}
	}
	return &e, nil
}

// CreatorID returns who created an expense, for the creator-or-manager
// mutation rule.
func (s *ExpenseService) CreatorID(ctx context.Context, householdID, id string) (string, error) {
	var creatorID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM expenses WHERE id = $1 AND household_id = $2
	`, id, householdID).Scan(&creatorID)
	if err == sql.ErrNoRows {
		return "", models.NewNotFoundError("Expense")
	}
	if err != nil {
		return "", fmt.Errorf("fetch expense creator: %w", err)
	}
	return creatorID, nil
}

func (s *ExpenseService) checkReferences(ctx context.Context, householdID string, budgetID, categoryID *string) error {
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

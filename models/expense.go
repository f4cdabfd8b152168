package models

import "time"

// Expense types. Only EXPENSE rows count toward spend; INCOME and TRANSFER
// are excluded from every budget/progress figure.
const (
	TypeIncome   = "INCOME"
	TypeExpense  = "EXPENSE"
	TypeTransfer = "TRANSFER"
)

func ValidExpenseType(t string) bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

// BulkCreateMax caps the number of rows accepted by a single bulk insert.
const BulkCreateMax = 100

type Expense struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"household_id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Date        time.Time `json:"date"`
	BudgetID    *string   `json:"budget_id,omitempty"`
	CategoryID  *string   `json:"category_id,omitempty"`
	RecurringID *string   `json:"recurring_id,omitempty"`
	Tags        []string  `json:"tags"`
	Attachments []string  `json:"attachments"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Populated by JOINs on list/detail reads.
	CategoryName *string `json:"category_name,omitempty"`
	UserName     string  `json:"user_name,omitempty"`
}

type CreateExpenseRequest struct {
	Description string    `json:"description" binding:"required"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	Type        string    `json:"type" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	BudgetID    *string   `json:"budget_id,omitempty"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Attachments []string  `json:"attachments,omitempty"`
}

type BulkCreateExpensesRequest struct {
	Expenses []CreateExpenseRequest `json:"expenses" binding:"required"`
}

type ExpenseFilter struct {
	From       *time.Time
	To         *time.Time
	BudgetID   string
	CategoryID string
	Type       string
}

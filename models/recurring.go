package models

import "time"

// Recurrence frequencies for recurring expense definitions.
const (
	FreqDaily    = "DAILY"
	FreqWeekly   = "WEEKLY"
	FreqBiweekly = "BIWEEKLY"
	FreqMonthly  = "MONTHLY"
	FreqYearly   = "YEARLY"
)

func ValidFrequency(f string) bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqBiweekly, FreqMonthly, FreqYearly:
		return true
	}
	return false
}

type RecurringExpense struct {
	ID             string     `json:"id"`
	HouseholdID    string     `json:"household_id"`
	UserID         string     `json:"user_id"`
	Description    string     `json:"description"`
	Amount         float64    `json:"amount"`
	Type           string     `json:"type"`
	Frequency      string     `json:"frequency"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	NextOccurrence time.Time  `json:"next_occurrence"`
	BudgetID       *string    `json:"budget_id,omitempty"`
	CategoryID     *string    `json:"category_id,omitempty"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type CreateRecurringExpenseRequest struct {
	Description string     `json:"description" binding:"required"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Type        string     `json:"type" binding:"required"`
	Frequency   string     `json:"frequency" binding:"required"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	BudgetID    *string    `json:"budget_id,omitempty"`
	CategoryID  *string    `json:"category_id,omitempty"`
}

type UpdateRecurringExpenseRequest struct {
	Description string     `json:"description" binding:"required"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CategoryID  *string    `json:"category_id,omitempty"`
	Active      *bool      `json:"active,omitempty"`
}

type MaterializeResult struct {
	Created int `json:"created"`
}

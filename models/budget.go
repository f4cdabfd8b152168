package models

import "time"

// Budget periods. CUSTOM requires an explicit end date; every other period
// derives it from the start date.
const (
	PeriodWeekly    = "WEEKLY"
	PeriodBiweekly  = "BIWEEKLY"
	PeriodMonthly   = "MONTHLY"
	PeriodQuarterly = "QUARTERLY"
	PeriodYearly    = "YEARLY"
	PeriodCustom    = "CUSTOM"
)

func ValidPeriod(period string) bool {
	switch period {
	case PeriodWeekly, PeriodBiweekly, PeriodMonthly, PeriodQuarterly, PeriodYearly, PeriodCustom:
		return true
	}
	return false
}

// Progress statuses for a budget's derived spend figures.
const (
	StatusOnTrack    = "ON_TRACK"
	StatusWarning    = "WARNING"
	StatusOverBudget = "OVER_BUDGET"
)

type Budget struct {
	ID          string           `json:"id"`
	HouseholdID string           `json:"household_id"`
	Name        string           `json:"name"`
	Amount      float64          `json:"amount"`
	Period      string           `json:"period"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	CategoryID  *string          `json:"category_id,omitempty"`
	Allocations []BudgetCategory `json:"allocations,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// BudgetCategory allocates part of a budget's amount to one category.
type BudgetCategory struct {
	ID              string  `json:"id"`
	BudgetID        string  `json:"budget_id"`
	CategoryID      string  `json:"category_id"`
	CategoryName    string  `json:"category_name,omitempty"`
	AllocatedAmount float64 `json:"allocated_amount"`
	Position        int     `json:"position"`
}

type AllocationInput struct {
	CategoryID      string  `json:"category_id" binding:"required"`
	AllocatedAmount float64 `json:"allocated_amount" binding:"required,gt=0"`
}

type CreateBudgetRequest struct {
	Name        string            `json:"name" binding:"required"`
	Amount      float64           `json:"amount" binding:"required,gt=0"`
	Period      string            `json:"period" binding:"required"`
	StartDate   time.Time         `json:"start_date" binding:"required"`
	EndDate     *time.Time        `json:"end_date,omitempty"`
	CategoryID  *string           `json:"category_id,omitempty"`
	Allocations []AllocationInput `json:"allocations,omitempty"`
}

type UpdateBudgetRequest struct {
	Name        string            `json:"name" binding:"required"`
	Amount      float64           `json:"amount" binding:"required,gt=0"`
	Period      string            `json:"period" binding:"required"`
	StartDate   time.Time         `json:"start_date" binding:"required"`
	EndDate     *time.Time        `json:"end_date,omitempty"`
	CategoryID  *string           `json:"category_id,omitempty"`
	Allocations []AllocationInput `json:"allocations,omitempty"`
}

// BudgetProgress is derived from a budget and its EXPENSE-type line items,
// never stored.
type BudgetProgress struct {
	TotalSpent float64 `json:"totalSpent"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
}

// BudgetHealth extends progress with time-based projection for one budget.
type BudgetHealth struct {
	BudgetID          string         `json:"budget_id"`
	Name              string         `json:"name"`
	Amount            float64        `json:"amount"`
	Period            string         `json:"period"`
	Progress          BudgetProgress `json:"progress"`
	DaysRemaining     *int           `json:"days_remaining"`
	ProjectedSpending *float64       `json:"projected_spending"`
}

type BudgetHealthReport struct {
	Budgets []BudgetHealth            `json:"budgets"`
	Summary BudgetHealthSummary       `json:"summary"`
	Grouped map[string][]BudgetHealth `json:"grouped"`
}

type BudgetHealthSummary struct {
	Total      int `json:"total"`
	OnTrack    int `json:"onTrack"`
	Warning    int `json:"warning"`
	OverBudget int `json:"overBudget"`
}

package models

// MonthlySummary is the full dashboard payload for one household, month and
// optional budget selection. The whole object is cached as a unit.
type MonthlySummary struct {
	Period              PeriodInfo           `json:"period"`
	Summary             SummaryTotals        `json:"summary"`
	CategoryBreakdown   CategoryBreakdown    `json:"categoryBreakdown"`
	MemberContributions []MemberContribution `json:"memberContributions"`
	Trends              Trends               `json:"trends"`
}

type PeriodInfo struct {
	Month       string `json:"month"` // YYYY-MM
	Start       string `json:"start"` // ISO date
	End         string `json:"end"`   // ISO date
	DaysElapsed int    `json:"daysElapsed"`
	TotalDays   int    `json:"totalDays"`
}

type SummaryTotals struct {
	TotalExpenses float64 `json:"totalExpenses"`
	TotalIncome   float64 `json:"totalIncome"`
	Net           float64 `json:"net"`

	// Only set when a budget is selected.
	BudgetAmount    *float64 `json:"budgetAmount,omitempty"`
	BudgetRemaining *float64 `json:"budgetRemaining,omitempty"`
	UsagePercentage *float64 `json:"usagePercentage,omitempty"`
}

type CategoryBreakdown struct {
	All  []CategoryBucket `json:"all"`
	Top5 []CategoryBucket `json:"top5"`
}

type CategoryBucket struct {
	CategoryID      string   `json:"category_id,omitempty"`
	Name            string   `json:"name"`
	Total           float64  `json:"total"`
	Count           int      `json:"count"`
	Percentage      float64  `json:"percentage"`
	AllocatedAmount *float64 `json:"allocated_amount,omitempty"`
}

type MemberContribution struct {
	UserID     string  `json:"user_id"`
	Name       string  `json:"name"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Trends struct {
	DailyBreakdown    []DailyPoint `json:"dailyBreakdown"`
	WeekOverWeek      []WeekBucket `json:"weekOverWeek"`
	ProjectedSpending Projection   `json:"projectedSpending"`
}

type DailyPoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type WeekBucket struct {
	Week  int     `json:"week"`
	Label string  `json:"label"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type Projection struct {
	DailyAverage   float64 `json:"dailyAverage"`
	ProjectedTotal float64 `json:"projectedTotal"`
}

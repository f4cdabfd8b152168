package services

import (
	"math"
	"testing"
	"time"

	"github.com/famillio/household-api/models"
)

func strPtr(s string) *string { return &s }

func dashboardExpense(day int, amount float64, expenseType, userID, userName string, categoryID, categoryName *string) models.Expense {
	return models.Expense{
		UserID:       userID,
		UserName:     userName,
		Amount:       amount,
		Type:         expenseType,
		Date:         time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC),
		CategoryID:   categoryID,
		CategoryName: categoryName,
	}
}

func TestComputeMonthlySummary_Period(t *testing.T) {
	tests := []struct {
		name            string
		year            int
		month           time.Month
		now             time.Time
		wantTotalDays   int
		wantDaysElapsed int
		wantStart       string
		wantEnd         string
	}{
		{
			name:            "mid month",
			year:            2024,
			month:           time.March,
			now:             time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			wantTotalDays:   31,
			wantDaysElapsed: 15,
			wantStart:       "2024-03-01",
			wantEnd:         "2024-03-31",
		},
		{
			name:            "past month clamps elapsed to total days",
			year:            2024,
			month:           time.February,
			now:             time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			wantTotalDays:   29,
			wantDaysElapsed: 29,
			wantStart:       "2024-02-01",
			wantEnd:         "2024-02-29",
		},
		{
			name:            "future month clamps elapsed to zero",
			year:            2024,
			month:           time.December,
			now:             time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			wantTotalDays:   31,
			wantDaysElapsed: 0,
			wantStart:       "2024-12-01",
			wantEnd:         "2024-12-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeMonthlySummary(tt.year, tt.month, tt.now, nil, nil)
			if got.Period.TotalDays != tt.wantTotalDays {
				t.Errorf("TotalDays = %d, want %d", got.Period.TotalDays, tt.wantTotalDays)
			}
			if got.Period.DaysElapsed != tt.wantDaysElapsed {
				t.Errorf("DaysElapsed = %d, want %d", got.Period.DaysElapsed, tt.wantDaysElapsed)
			}
			if got.Period.Start != tt.wantStart {
				t.Errorf("Start = %s, want %s", got.Period.Start, tt.wantStart)
			}
			if got.Period.End != tt.wantEnd {
				t.Errorf("End = %s, want %s", got.Period.End, tt.wantEnd)
			}
		})
	}
}

func TestComputeMonthlySummary_Totals(t *testing.T) {
	expenses := []models.Expense{
		dashboardExpense(1, 100.00, models.TypeExpense, "u1", "Alice", nil, nil),
		dashboardExpense(2, 50.50, models.TypeExpense, "u2", "Bob", nil, nil),
		dashboardExpense(3, 2000.00, models.TypeIncome, "u1", "Alice", nil, nil),
		dashboardExpense(4, 75.00, models.TypeTransfer, "u1", "Alice", nil, nil),
	}
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	got := ComputeMonthlySummary(2024, time.March, now, expenses, nil)

	if got.Summary.TotalExpenses != 150.50 {
		t.Errorf("TotalExpenses = %v, want 150.50", got.Summary.TotalExpenses)
	}
	if got.Summary.TotalIncome != 2000.00 {
		t.Errorf("TotalIncome = %v, want 2000.00", got.Summary.TotalIncome)
	}
	if got.Summary.Net != 1849.50 {
		t.Errorf("Net = %v, want 1849.50", got.Summary.Net)
	}
	if got.Summary.BudgetAmount != nil {
		t.Errorf("BudgetAmount = %v, want nil without a budget selection", *got.Summary.BudgetAmount)
	}
}

func TestComputeMonthlySummary_BudgetFigures(t *testing.T) {
	expenses := []models.Expense{
		dashboardExpense(1, 250.00, models.TypeExpense, "u1", "Alice", nil, nil),
	}
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("with amount", func(t *testing.T) {
		budget := &DashboardBudget{ID: "b1", Amount: 1000.00}
		got := ComputeMonthlySummary(2024, time.March, now, expenses, budget)

		if got.Summary.BudgetAmount == nil || *got.Summary.BudgetAmount != 1000.00 {
			t.Fatalf("BudgetAmount = %v, want 1000.00", got.Summary.BudgetAmount)
		}
		if *got.Summary.BudgetRemaining != 750.00 {
			t.Errorf("BudgetRemaining = %v, want 750.00", *got.Summary.BudgetRemaining)
		}
		if *got.Summary.UsagePercentage != 25.0 {
			t.Errorf("UsagePercentage = %v, want 25.0", *got.Summary.UsagePercentage)
		}
	})

	t.Run("zero amount yields zero usage", func(t *testing.T) {
		budget := &DashboardBudget{ID: "b1", Amount: 0}
		got := ComputeMonthlySummary(2024, time.March, now, expenses, budget)
		if *got.Summary.UsagePercentage != 0 {
			t.Errorf("UsagePercentage = %v, want 0", *got.Summary.UsagePercentage)
		}
	})
}

func TestComputeCategoryBreakdown(t *testing.T) {
	groceries := strPtr("c1")
	transport := strPtr("c2")
	expenses := []models.Expense{
		dashboardExpense(1, 60.00, models.TypeExpense, "u1", "Alice", groceries, strPtr("Groceries")),
		dashboardExpense(2, 40.00, models.TypeExpense, "u1", "Alice", groceries, strPtr("Groceries")),
		dashboardExpense(3, 80.00, models.TypeExpense, "u2", "Bob", transport, strPtr("Transport")),
		dashboardExpense(4, 20.00, models.TypeExpense, "u2", "Bob", nil, nil),
		dashboardExpense(5, 500.00, models.TypeIncome, "u1", "Alice", groceries, strPtr("Groceries")),
	}

	budget := &DashboardBudget{
		ID:          "b1",
		Amount:      400.00,
		Allocations: map[string]float64{"c1": 120.00},
	}
	got := computeCategoryBreakdown(expenses, 200.00, budget)

	if len(got.All) != 3 {
		t.Fatalf("len(All) = %d, want 3", len(got.All))
	}

	// Sorted by total descending: groceries 100, transport 80, uncategorized 20.
	if got.All[0].Name != "Groceries" || got.All[0].Total != 100.00 {
		t.Errorf("All[0] = %s/%v, want Groceries/100.00", got.All[0].Name, got.All[0].Total)
	}
	if got.All[1].Name != "Transport" || got.All[1].Total != 80.00 {
		t.Errorf("All[1] = %s/%v, want Transport/80.00", got.All[1].Name, got.All[1].Total)
	}
	if got.All[2].Name != uncategorizedBucket || got.All[2].Total != 20.00 {
		t.Errorf("All[2] = %s/%v, want %s/20.00", got.All[2].Name, got.All[2].Total, uncategorizedBucket)
	}
	if got.All[2].CategoryID != "" {
		t.Errorf("uncategorized CategoryID = %q, want empty", got.All[2].CategoryID)
	}

	var percentSum float64
	for _, b := range got.All {
		percentSum += b.Percentage
	}
	if math.Abs(percentSum-100.0) > 0.05 {
		t.Errorf("percentages sum to %v, want 100", percentSum)
	}

	if got.All[0].AllocatedAmount == nil || *got.All[0].AllocatedAmount != 120.00 {
		t.Errorf("Groceries AllocatedAmount = %v, want 120.00", got.All[0].AllocatedAmount)
	}
	if got.All[1].AllocatedAmount != nil {
		t.Errorf("Transport AllocatedAmount = %v, want nil", *got.All[1].AllocatedAmount)
	}
}

func TestComputeCategoryBreakdown_Top5(t *testing.T) {
	var expenses []models.Expense
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	var total float64
	for i, name := range names {
		id := name
		amount := float64((i + 1) * 10)
		total += amount
		expenses = append(expenses, dashboardExpense(i+1, amount, models.TypeExpense, "u1", "Alice", &id, strPtr(name)))
	}

	got := computeCategoryBreakdown(expenses, total, nil)

	if len(got.All) != 7 {
		t.Fatalf("len(All) = %d, want 7", len(got.All))
	}
	if len(got.Top5) != 5 {
		t.Fatalf("len(Top5) = %d, want 5", len(got.Top5))
	}
	if got.Top5[0].Name != "G" || got.Top5[4].Name != "C" {
		t.Errorf("Top5 spans %s..%s, want G..C", got.Top5[0].Name, got.Top5[4].Name)
	}
}

func TestComputeMemberContributions(t *testing.T) {
	expenses := []models.Expense{
		dashboardExpense(1, 30.00, models.TypeExpense, "u1", "Alice", nil, nil),
		dashboardExpense(2, 120.00, models.TypeExpense, "u2", "Bob", nil, nil),
		dashboardExpense(3, 50.00, models.TypeExpense, "u1", "Alice", nil, nil),
		dashboardExpense(4, 999.00, models.TypeIncome, "u1", "Alice", nil, nil),
	}

	got := computeMemberContributions(expenses, 200.00)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].UserID != "u2" || got[0].Total != 120.00 || got[0].Count != 1 {
		t.Errorf("got[0] = %+v, want u2/120.00/1", got[0])
	}
	if got[1].UserID != "u1" || got[1].Total != 80.00 || got[1].Count != 2 {
		t.Errorf("got[1] = %+v, want u1/80.00/2", got[1])
	}
	if got[0].Percentage != 60.0 || got[1].Percentage != 40.0 {
		t.Errorf("percentages = %v/%v, want 60/40", got[0].Percentage, got[1].Percentage)
	}
}

func TestComputeDailyBreakdown(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	expenses := []models.Expense{
		dashboardExpense(1, 10.00, models.TypeExpense, "u1", "Alice", nil, nil),
		dashboardExpense(1, 5.00, models.TypeExpense, "u1", "Alice", nil, nil),
		dashboardExpense(15, 20.00, models.TypeExpense, "u1", "Alice", nil, nil),
		dashboardExpense(31, 7.50, models.TypeExpense, "u1", "Alice", nil, nil),
		dashboardExpense(10, 400.00, models.TypeIncome, "u1", "Alice", nil, nil),
	}

	got := computeDailyBreakdown(start, 31, expenses)

	if len(got) != 31 {
		t.Fatalf("len = %d, want 31 points with no gaps", len(got))
	}
	if got[0].Date != "2024-03-01" || got[30].Date != "2024-03-31" {
		t.Errorf("date range %s..%s, want 2024-03-01..2024-03-31", got[0].Date, got[30].Date)
	}
	if got[0].Total != 15.00 || got[0].Count != 2 {
		t.Errorf("day 1 = %v/%d, want 15.00/2", got[0].Total, got[0].Count)
	}
	if got[9].Total != 0 || got[9].Count != 0 {
		t.Errorf("day 10 = %v/%d, want 0/0 (income excluded)", got[9].Total, got[9].Count)
	}

	var sum float64
	for _, p := range got {
		sum += p.Total
	}
	if sum != 42.50 {
		t.Errorf("daily totals sum to %v, want 42.50", sum)
	}
}

func TestRollupWeeks(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	daily := computeDailyBreakdown(start, 31, []models.Expense{
		dashboardExpense(1, 70.00, models.TypeExpense, "u1", "Alice", nil, nil),
		dashboardExpense(8, 30.00, models.TypeExpense, "u1", "Alice", nil, nil),
		dashboardExpense(29, 12.00, models.TypeExpense, "u1", "Alice", nil, nil),
	})

	got := rollupWeeks(daily)

	// 31 days partition into 7+7+7+7+3.
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	if got[0].Label != "Week 1" || got[4].Label != "Week 5" {
		t.Errorf("labels %s..%s, want Week 1..Week 5", got[0].Label, got[4].Label)
	}
	if got[0].Total != 70.00 {
		t.Errorf("week 1 total = %v, want 70.00", got[0].Total)
	}
	if got[1].Total != 30.00 {
		t.Errorf("week 2 total = %v, want 30.00", got[1].Total)
	}

	var weekSum, dailySum float64
	for _, w := range got {
		weekSum += w.Total
	}
	for _, p := range daily {
		dailySum += p.Total
	}
	if math.Abs(weekSum-dailySum) > 0.01 {
		t.Errorf("weekly sum %v differs from daily sum %v", weekSum, dailySum)
	}
}

func TestComputeProjection(t *testing.T) {
	tests := []struct {
		name          string
		totalExpenses float64
		daysElapsed   int
		totalDays     int
		wantAverage   float64
		wantProjected float64
	}{
		{"mid month", 150.00, 10, 30, 15.00, 450.00},
		{"elapsed floor of one", 50.00, 0, 31, 50.00, 1550.00},
		{"full month", 310.00, 31, 31, 10.00, 310.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeProjection(tt.totalExpenses, tt.daysElapsed, tt.totalDays)
			if got.DailyAverage != tt.wantAverage {
				t.Errorf("DailyAverage = %v, want %v", got.DailyAverage, tt.wantAverage)
			}
			if got.ProjectedTotal != tt.wantProjected {
				t.Errorf("ProjectedTotal = %v, want %v", got.ProjectedTotal, tt.wantProjected)
			}
		})
	}
}

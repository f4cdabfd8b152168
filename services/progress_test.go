package services

import (
	"math"
	"testing"
	"time"

	"github.com/famillio/household-api/models"
)

func expenseOf(amount float64, expenseType string) models.Expense {
	return models.Expense{Amount: amount, Type: expenseType}
}

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name           string
		amount         float64
		expenses       []models.Expense
		wantSpent      float64
		wantRemaining  float64
		wantPercentage float64
		wantStatus     string
	}{
		{
			name:   "on track",
			amount: 500.00,
			expenses: []models.Expense{
				expenseOf(120.50, models.TypeExpense),
				expenseOf(200.00, models.TypeExpense),
			},
			wantSpent:      320.50,
			wantRemaining:  179.50,
			wantPercentage: 64.1,
			wantStatus:     models.StatusOnTrack,
		},
		{
			name:   "warning at 70 percent boundary",
			amount: 100.00,
			expenses: []models.Expense{
				expenseOf(70.00, models.TypeExpense),
			},
			wantSpent:      70.00,
			wantRemaining:  30.00,
			wantPercentage: 70.0,
			wantStatus:     models.StatusWarning,
		},
		{
			name:   "over budget at 90 percent boundary",
			amount: 200.00,
			expenses: []models.Expense{
				expenseOf(180.00, models.TypeExpense),
			},
			wantSpent:      180.00,
			wantRemaining:  20.00,
			wantPercentage: 90.0,
			wantStatus:     models.StatusOverBudget,
		},
		{
			name:   "over 100 percent stays over budget",
			amount: 100.00,
			expenses: []models.Expense{
				expenseOf(150.00, models.TypeExpense),
			},
			wantSpent:      150.00,
			wantRemaining:  -50.00,
			wantPercentage: 150.0,
			wantStatus:     models.StatusOverBudget,
		},
		{
			name:           "zero amount budget does not divide by zero",
			amount:         0.00,
			expenses:       []models.Expense{},
			wantSpent:      0,
			wantRemaining:  0,
			wantPercentage: 0,
			wantStatus:     models.StatusOnTrack,
		},
		{
			name:   "income and transfers excluded from spend",
			amount: 100.00,
			expenses: []models.Expense{
				expenseOf(40.00, models.TypeExpense),
				expenseOf(500.00, models.TypeIncome),
				expenseOf(300.00, models.TypeTransfer),
			},
			wantSpent:      40.00,
			wantRemaining:  60.00,
			wantPercentage: 40.0,
			wantStatus:     models.StatusOnTrack,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateProgress(tt.amount, tt.expenses)
			if got.TotalSpent != tt.wantSpent {
				t.Errorf("TotalSpent = %v, want %v", got.TotalSpent, tt.wantSpent)
			}
			if got.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %v, want %v", got.Remaining, tt.wantRemaining)
			}
			if got.Percentage != tt.wantPercentage {
				t.Errorf("Percentage = %v, want %v", got.Percentage, tt.wantPercentage)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", got.Status, tt.wantStatus)
			}
		})
	}
}

func TestCalculateProgress_RemainingPlusSpentEqualsAmount(t *testing.T) {
	amounts := []float64{500.00, 123.45, 0.01, 999.99}
	expenses := []models.Expense{
		expenseOf(33.33, models.TypeExpense),
		expenseOf(66.67, models.TypeExpense),
		expenseOf(0.01, models.TypeExpense),
	}

	for _, amount := range amounts {
		got := CalculateProgress(amount, expenses)
		if diff := math.Abs(got.Remaining + got.TotalSpent - amount); diff > 0.01 {
			t.Errorf("amount %v: remaining %v + spent %v differs from amount by %v", amount, got.Remaining, got.TotalSpent, diff)
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.234, 1.23},
		{1.236, 1.24},
		{64.0999, 64.10},
		{-1.236, -1.24},
		{0, 0},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEvaluateBudgetHealth(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	budget := models.Budget{
		ID:        "b1",
		Name:      "Groceries",
		Amount:    600.00,
		Period:    models.PeriodMonthly,
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	expenses := []models.Expense{
		expenseOf(150.00, models.TypeExpense),
		expenseOf(150.00, models.TypeExpense),
	}

	t.Run("with end date", func(t *testing.T) {
		end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		health := EvaluateBudgetHealth(budget, expenses, &end, now)

		if health.DaysRemaining == nil {
			t.Fatal("DaysRemaining = nil, want a value")
		}
		// 2024-03-15 12:00 to 2024-04-01 00:00 is 16.5 days, ceiled to 17
		if *health.DaysRemaining != 17 {
			t.Errorf("DaysRemaining = %d, want 17", *health.DaysRemaining)
		}
		if health.ProjectedSpending == nil {
			t.Fatal("ProjectedSpending = nil, want a value")
		}
		// 300 spent over ceil(14.5)=15 elapsed days, projected over 31 days
		want := Round2(300.0 / 15.0 * 31.0)
		if *health.ProjectedSpending != want {
			t.Errorf("ProjectedSpending = %v, want %v", *health.ProjectedSpending, want)
		}
	})

	t.Run("without end date", func(t *testing.T) {
		health := EvaluateBudgetHealth(budget, expenses, nil, now)
		if health.DaysRemaining != nil {
			t.Errorf("DaysRemaining = %v, want nil", *health.DaysRemaining)
		}
		if health.ProjectedSpending != nil {
			t.Errorf("ProjectedSpending = %v, want nil", *health.ProjectedSpending)
		}
	})

	t.Run("past end date clamps days remaining to zero", func(t *testing.T) {
		end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		health := EvaluateBudgetHealth(budget, expenses, &end, now)
		if health.DaysRemaining == nil || *health.DaysRemaining != 0 {
			t.Errorf("DaysRemaining = %v, want 0", health.DaysRemaining)
		}
	})
}

func TestGroupByStatus(t *testing.T) {
	healths := []models.BudgetHealth{
		{BudgetID: "a", Progress: models.BudgetProgress{Status: models.StatusOnTrack}},
		{BudgetID: "b", Progress: models.BudgetProgress{Status: models.StatusOnTrack}},
		{BudgetID: "c", Progress: models.BudgetProgress{Status: models.StatusWarning}},
		{BudgetID: "d", Progress: models.BudgetProgress{Status: models.StatusOverBudget}},
	}

	grouped, summary := GroupByStatus(healths)

	if summary.Total != 4 || summary.OnTrack != 2 || summary.Warning != 1 || summary.OverBudget != 1 {
		t.Errorf("summary = %+v, want {4 2 1 1}", summary)
	}
	if len(grouped[models.StatusOnTrack]) != 2 {
		t.Errorf("on-track group = %d entries, want 2", len(grouped[models.StatusOnTrack]))
	}
	if len(grouped[models.StatusWarning]) != 1 {
		t.Errorf("warning group = %d entries, want 1", len(grouped[models.StatusWarning]))
	}
	if len(grouped[models.StatusOverBudget]) != 1 {
		t.Errorf("over-budget group = %d entries, want 1", len(grouped[models.StatusOverBudget]))
	}
}

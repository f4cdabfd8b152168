package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/famillio/household-api/models"
)

// DashboardBudget is the selected-budget context for a summary: the spending
// allowance plus per-category allocations.
type DashboardBudget struct {
	ID          string
	Amount      float64
	Allocations map[string]float64 // category id -> allocated amount
}

// ComputeMonthlySummary builds the full dashboard payload from a flat expense
// slice. Pure computation: the caller resolves the month, fetches the rows
// and supplies the clock.
func ComputeMonthlySummary(year int, month time.Month, now time.Time, expenses []models.Expense, budget *DashboardBudget) models.MonthlySummary {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-24 * time.Hour)
	totalDays := end.Day()

	daysElapsed := int(math.Ceil(now.Sub(start).Hours() / 24))
	if daysElapsed > totalDays {
		daysElapsed = totalDays
	}
	if daysElapsed < 0 {
		daysElapsed = 0
	}

	var totalExpenses, totalIncome float64
	for _, e := range expenses {
		switch e.Type {
		case models.TypeExpense:
			totalExpenses += e.Amount
		case models.TypeIncome:
			totalIncome += e.Amount
		}
	}
	totalExpenses = Round2(totalExpenses)
	totalIncome = Round2(totalIncome)

	summary := models.SummaryTotals{
		TotalExpenses: totalExpenses,
		TotalIncome:   totalIncome,
		Net:           Round2(totalIncome - totalExpenses),
	}

	if budget != nil {
		amount := budget.Amount
		remaining := Round2(amount - totalExpenses)
		var usage float64
		if amount > 0 {
			usage = Round2(totalExpenses / amount * 100)
		}
		summary.BudgetAmount = &amount
		summary.BudgetRemaining = &remaining
		summary.UsagePercentage = &usage
	}

	return models.MonthlySummary{
		Period: models.PeriodInfo{
			Month:       start.Format("2006-01"),
			Start:       start.Format("2006-01-02"),
			End:         end.Format("2006-01-02"),
			DaysElapsed: daysElapsed,
			TotalDays:   totalDays,
		},
		Summary:             summary,
		CategoryBreakdown:   computeCategoryBreakdown(expenses, totalExpenses, budget),
		MemberContributions: computeMemberContributions(expenses, totalExpenses),
		Trends: models.Trends{
			DailyBreakdown:    computeDailyBreakdown(start, totalDays, expenses),
			WeekOverWeek:      rollupWeeks(computeDailyBreakdown(start, totalDays, expenses)),
			ProjectedSpending: computeProjection(totalExpenses, daysElapsed, totalDays),
		},
	}
}

// uncategorizedBucket absorbs every EXPENSE item with no category.
const uncategorizedBucket = "Uncategorized"

func computeCategoryBreakdown(expenses []models.Expense, totalExpenses float64, budget *DashboardBudget) models.CategoryBreakdown {
	type bucket struct {
		categoryID string
		name       string
		total      float64
		count      int
	}

	buckets := map[string]*bucket{}
	order := []string{}

	for _, e := range expenses {
		if e.Type != models.TypeExpense {
			continue
		}
		key := uncategorizedBucket
		name := uncategorizedBucket
		categoryID := ""
		if e.CategoryID != nil {
			key = *e.CategoryID
			categoryID = *e.CategoryID
			if e.CategoryName != nil {
				name = *e.CategoryName
			} else {
				name = key
			}
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{categoryID: categoryID, name: name}
			buckets[key] = b
			order = append(order, key)
		}
		b.total += e.Amount
		b.count++
	}

	all := make([]models.CategoryBucket, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		cb := models.CategoryBucket{
			CategoryID: b.categoryID,
			Name:       b.name,
			Total:      Round2(b.total),
			Count:      b.count,
		}
		if totalExpenses > 0 {
			cb.Percentage = Round2(b.total / totalExpenses * 100)
		}
		if budget != nil && b.categoryID != "" {
			if allocated, ok := budget.Allocations[b.categoryID]; ok {
				cb.AllocatedAmount = &allocated
			}
		}
		all = append(all, cb)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Total > all[j].Total
	})

	top5 := all
	if len(top5) > 5 {
		top5 = all[:5]
	}

	return models.CategoryBreakdown{All: all, Top5: top5}
}

func computeMemberContributions(expenses []models.Expense, totalExpenses float64) []models.MemberContribution {
	type bucket struct {
		name  string
		total float64
		count int
	}

	buckets := map[string]*bucket{}
	order := []string{}

	for _, e := range expenses {
		if e.Type != models.TypeExpense {
			continue
		}
		b, ok := buckets[e.UserID]
		if !ok {
			b = &bucket{name: e.UserName}
			buckets[e.UserID] = b
			order = append(order, e.UserID)
		}
		b.total += e.Amount
		b.count++
	}

	contributions := make([]models.MemberContribution, 0, len(order))
	for _, userID := range order {
		b := buckets[userID]
		mc := models.MemberContribution{
			UserID: userID,
			Name:   b.name,
			Total:  Round2(b.total),
			Count:  b.count,
		}
		if totalExpenses > 0 {
			mc.Percentage = Round2(b.total / totalExpenses * 100)
		}
		contributions = append(contributions, mc)
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].Total > contributions[j].Total
	})

	return contributions
}

// computeDailyBreakdown produces one bucket per calendar day of the month,
// zero-initialized so the series has no gaps.
func computeDailyBreakdown(start time.Time, totalDays int, expenses []models.Expense) []models.DailyPoint {
	points := make([]models.DailyPoint, totalDays)
	index := make(map[string]int, totalDays)
	for i := 0; i < totalDays; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		points[i] = models.DailyPoint{Date: date}
		index[date] = i
	}

	for _, e := range expenses {
		if e.Type != models.TypeExpense {
			continue
		}
		if i, ok := index[e.Date.UTC().Format("2006-01-02")]; ok {
			points[i].Total += e.Amount
			points[i].Count++
		}
	}

	for i := range points {
		points[i].Total = Round2(points[i].Total)
	}

	return points
}

// rollupWeeks partitions the daily series into consecutive 7-day windows; the
// final window may be shorter.
func rollupWeeks(daily []models.DailyPoint) []models.WeekBucket {
	weeks := []models.WeekBucket{}
	for i := 0; i < len(daily); i += 7 {
		end := i + 7
		if end > len(daily) {
			end = len(daily)
		}
		week := models.WeekBucket{
			Week:  len(weeks) + 1,
			Label: fmt.Sprintf("Week %d", len(weeks)+1),
		}
		for _, p := range daily[i:end] {
			week.Total += p.Total
			week.Count += p.Count
		}
		week.Total = Round2(week.Total)
		weeks = append(weeks, week)
	}
	return weeks
}

func computeProjection(totalExpenses float64, daysElapsed, totalDays int) models.Projection {
	if daysElapsed < 1 {
		daysElapsed = 1
	}
	dailyAverage := totalExpenses / float64(daysElapsed)
	return models.Projection{
		DailyAverage:   Round2(dailyAverage),
		ProjectedTotal: Round2(dailyAverage * float64(totalDays)),
	}
}

// DashboardService resolves the period, fetches the household's expense set
// and serves summaries through the injected cache.
type DashboardService struct {
	db    *sql.DB
	cache SummaryCache
}

func NewDashboardService(db *sql.DB, cache SummaryCache) *DashboardService {
	return &DashboardService{db: db, cache: cache}
}

// GetMonthlySummary returns the dashboard for the given YYYY-MM month (the
// current month when empty) and optional budget selection. Results are served
// from cache within the TTL window; mutations are not expected to appear
// until the entry expires.
func (s *DashboardService) GetMonthlySummary(ctx context.Context, householdID, monthStr, budgetID string, now time.Time) (*models.MonthlySummary, error) {
	var year int
	var month time.Month
	if monthStr == "" {
		year, month = now.UTC().Year(), now.UTC().Month()
	} else {
		parsed, err := time.Parse("2006-01", monthStr)
		if err != nil {
			return nil, models.NewValidationError("invalid month", map[string]string{"month": "expected YYYY-MM"})
		}
		year, month = parsed.Year(), parsed.Month()
	}

	key := SummaryCacheKey(householdID, fmt.Sprintf("%04d-%02d", year, int(month)), budgetID)
	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, nil
	}

	var budget *DashboardBudget
	if budgetID != "" {
		b, err := s.fetchBudgetContext(ctx, householdID, budgetID)
		if err != nil {
			return nil, err
		}
		budget = b
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	expenses, err := s.fetchExpenses(ctx, householdID, budgetID, start, end)
	if err != nil {
		return nil, err
	}

	summary := ComputeMonthlySummary(year, month, now.UTC(), expenses, budget)

	if err := s.cache.Set(ctx, key, &summary); err != nil {
		log.Printf("⚠️ Failed to cache dashboard summary: %v", err)
	}

	return &summary, nil
}

// Invalidate drops a cached summary. Not called on writes today; exposed so
// deployments that cannot tolerate the staleness window have a hook.
func (s *DashboardService) Invalidate(ctx context.Context, householdID, month, budgetID string) error {
	return s.cache.Invalidate(ctx, SummaryCacheKey(householdID, month, budgetID))
}

func (s *DashboardService) fetchBudgetContext(ctx context.Context, householdID, budgetID string) (*DashboardBudget, error) {
	budget := &DashboardBudget{ID: budgetID, Allocations: map[string]float64{}}

	err := s.db.QueryRowContext(ctx, `
		SELECT amount FROM budgets
		WHERE id = $1 AND household_id = $2
	`, budgetID, householdID).Scan(&budget.Amount)

	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("Budget")
	}
	if err != nil {
		return nil, fmt.Errorf("fetch budget: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, allocated_amount
		FROM budget_categories
		WHERE budget_id = $1
	`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("fetch allocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var categoryID string
		var allocated float64
		if err := rows.Scan(&categoryID, &allocated); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		budget.Allocations[categoryID] = allocated
	}

	return budget, rows.Err()
}

func (s *DashboardService) fetchExpenses(ctx context.Context, householdID, budgetID string, start, end time.Time) ([]models.Expense, error) {
	query := `
		SELECT e.id, e.user_id, e.amount, e.type, e.date, e.category_id,
		       c.name, u.name
		FROM expenses e
		LEFT JOIN categories c ON e.category_id = c.id
		LEFT JOIN users u ON e.user_id = u.id
		WHERE e.household_id = $1 AND e.date >= $2 AND e.date < $3
	`
	args := []interface{}{householdID, start, end}
	if budgetID != "" {
		query += ` AND e.budget_id = $4`
		args = append(args, budgetID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var categoryID, categoryName, userName sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Type, &e.Date, &categoryID, &categoryName, &userName); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if categoryID.Valid {
			e.CategoryID = &categoryID.String
		}
		if categoryName.Valid {
			e.CategoryName = &categoryName.String
		}
		e.UserName = userName.String
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

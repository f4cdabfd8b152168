package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/famillio/household-api/models"
)

// singleValueConnector backs a *sql.DB whose every query returns one row with
// one column holding value. Enough to drive the EXISTS ownership probes
// without a database.
type singleValueConnector struct{ value driver.Value }

func (c singleValueConnector) Connect(context.Context) (driver.Conn, error) {
	return singleValueConn{c.value}, nil
}

func (c singleValueConnector) Driver() driver.Driver { return singleValueDriver{c.value} }

type singleValueDriver struct{ value driver.Value }

func (d singleValueDriver) Open(string) (driver.Conn, error) { return singleValueConn{d.value}, nil }

type singleValueConn struct{ value driver.Value }

func (c singleValueConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c singleValueConn) Close() error              { return nil }
func (c singleValueConn) Begin() (driver.Tx, error) { return nil, errors.New("begin not supported") }

func (c singleValueConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	return &singleValueRows{value: c.value}, nil
}

type singleValueRows struct {
	value driver.Value
	done  bool
}

func (r *singleValueRows) Columns() []string { return []string{"value"} }
func (r *singleValueRows) Close() error      { return nil }
func (r *singleValueRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = r.value
	return nil
}

func TestDeriveEndDate(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		period string
		start  time.Time
		want   time.Time
	}{
		{"weekly", models.PeriodWeekly, start, time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)},
		{"biweekly", models.PeriodBiweekly, start, time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)},
		{"monthly", models.PeriodMonthly, start, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)},
		{"quarterly", models.PeriodQuarterly, start, time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)},
		{"yearly", models.PeriodYearly, start, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{
			name:   "monthly from the 31st normalizes",
			period: models.PeriodMonthly,
			start:  time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			want:   time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveEndDate(tt.period, tt.start)
			if !got.Equal(tt.want) {
				t.Errorf("DeriveEndDate(%s, %v) = %v, want %v", tt.period, tt.start, got, tt.want)
			}
		})
	}
}

func TestBudgetWritesRejectForeignCategory(t *testing.T) {
	db := sql.OpenDB(singleValueConnector{value: false})
	defer db.Close()
	svc := NewBudgetService(db)

	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	categoryID := "category-from-another-household"

	t.Run("create", func(t *testing.T) {
		_, err := svc.Create(ctx, "h1", models.CreateBudgetRequest{
			Name:       "Groceries",
			Amount:     500,
			Period:     models.PeriodMonthly,
			StartDate:  start,
			CategoryID: &categoryID,
		})
		apiErr, ok := err.(*models.APIError)
		if !ok || apiErr.Code != models.ErrCodeNotFound {
			t.Errorf("Create with foreign category = %v, want NOT_FOUND", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		_, err := svc.Update(ctx, "h1", "b1", models.UpdateBudgetRequest{
			Name:       "Groceries",
			Amount:     500,
			Period:     models.PeriodMonthly,
			StartDate:  start,
			CategoryID: &categoryID,
		})
		apiErr, ok := err.(*models.APIError)
		if !ok || apiErr.Code != models.ErrCodeNotFound {
			t.Errorf("Update with foreign category = %v, want NOT_FOUND", err)
		}
	})
}

func TestResolveDates_CustomPeriod(t *testing.T) {
	svc := &BudgetService{}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("custom with valid end date", func(t *testing.T) {
		end := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
		got, apiErr := svc.resolveDates(models.CreateBudgetRequest{
			Period:    models.PeriodCustom,
			StartDate: start,
			EndDate:   &end,
		})
		if apiErr != nil {
			t.Fatalf("resolveDates: %v", apiErr)
		}
		if !got.Equal(end) {
			t.Errorf("end date = %v, want %v", got, end)
		}
	})

	t.Run("custom without end date", func(t *testing.T) {
		_, apiErr := svc.resolveDates(models.CreateBudgetRequest{
			Period:    models.PeriodCustom,
			StartDate: start,
		})
		if apiErr == nil || apiErr.Code != models.ErrCodeValidation {
			t.Errorf("got %v, want VALIDATION error", apiErr)
		}
	})

	t.Run("custom with end before start", func(t *testing.T) {
		end := start.AddDate(0, 0, -1)
		_, apiErr := svc.resolveDates(models.CreateBudgetRequest{
			Period:    models.PeriodCustom,
			StartDate: start,
			EndDate:   &end,
		})
		if apiErr == nil || apiErr.Code != models.ErrCodeValidation {
			t.Errorf("got %v, want VALIDATION error", apiErr)
		}
	})

	t.Run("unknown period", func(t *testing.T) {
		_, apiErr := svc.resolveDates(models.CreateBudgetRequest{
			Period:    "FORTNIGHTLY",
			StartDate: start,
		})
		if apiErr == nil || apiErr.Code != models.ErrCodeValidation {
			t.Errorf("got %v, want VALIDATION error", apiErr)
		}
	})
}

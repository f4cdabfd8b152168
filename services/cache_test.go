package services

import (
	"context"
	"testing"
	"time"

	"github.com/famillio/household-api/models"
)

func TestSummaryCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		householdID string
		month       string
		budgetID    string
		want        string
	}{
		{"with budget", "h1", "2024-03", "b1", "dashboard:h1:2024-03:b1"},
		{"household wide", "h1", "2024-03", "", "dashboard:h1:2024-03:all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SummaryCacheKey(tt.householdID, tt.month, tt.budgetID); got != tt.want {
				t.Errorf("SummaryCacheKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	summary := &models.MonthlySummary{
		Summary: models.SummaryTotals{TotalExpenses: 42.00},
	}

	t.Run("miss on unknown key", func(t *testing.T) {
		cache := NewMemoryCache(DashboardCacheTTL)
		if _, ok := cache.Get(ctx, "dashboard:h1:2024-03:all"); ok {
			t.Error("Get on empty cache returned a hit")
		}
	})

	t.Run("set then get within ttl", func(t *testing.T) {
		cache := NewMemoryCache(DashboardCacheTTL)
		if err := cache.Set(ctx, "k", summary); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, ok := cache.Get(ctx, "k")
		if !ok {
			t.Fatal("Get after Set missed")
		}
		if got.Summary.TotalExpenses != 42.00 {
			t.Errorf("TotalExpenses = %v, want 42.00", got.Summary.TotalExpenses)
		}
	})

	t.Run("entry expires after ttl", func(t *testing.T) {
		cache := NewMemoryCache(DashboardCacheTTL)
		current := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
		cache.now = func() time.Time { return current }

		if err := cache.Set(ctx, "k", summary); err != nil {
			t.Fatalf("Set: %v", err)
		}

		current = current.Add(DashboardCacheTTL - time.Second)
		if _, ok := cache.Get(ctx, "k"); !ok {
			t.Error("entry expired before the ttl elapsed")
		}

		current = current.Add(2 * time.Second)
		if _, ok := cache.Get(ctx, "k"); ok {
			t.Error("entry survived past the ttl")
		}
	})

	t.Run("invalidate removes entry", func(t *testing.T) {
		cache := NewMemoryCache(DashboardCacheTTL)
		if err := cache.Set(ctx, "k", summary); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := cache.Invalidate(ctx, "k"); err != nil {
			t.Fatalf("Invalidate: %v", err)
		}
		if _, ok := cache.Get(ctx, "k"); ok {
			t.Error("Get after Invalidate returned a hit")
		}
	})
}

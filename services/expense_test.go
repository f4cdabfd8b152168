package services

import (
	"testing"

	"github.com/famillio/household-api/models"
)

func TestValidateExpenseInput(t *testing.T) {
	tests := []struct {
		name       string
		req        models.CreateExpenseRequest
		wantErr    bool
		wantFields []string
	}{
		{
			name:    "valid expense",
			req:     models.CreateExpenseRequest{Description: "Groceries", Amount: 45.20, Type: models.TypeExpense},
			wantErr: false,
		},
		{
			name:    "valid income",
			req:     models.CreateExpenseRequest{Description: "Salary", Amount: 3000, Type: models.TypeIncome},
			wantErr: false,
		},
		{
			name:       "unknown type",
			req:        models.CreateExpenseRequest{Description: "x", Amount: 10, Type: "REFUND"},
			wantErr:    true,
			wantFields: []string{"type"},
		},
		{
			name:       "zero amount",
			req:        models.CreateExpenseRequest{Description: "x", Amount: 0, Type: models.TypeExpense},
			wantErr:    true,
			wantFields: []string{"amount"},
		},
		{
			name:       "negative amount",
			req:        models.CreateExpenseRequest{Description: "x", Amount: -5, Type: models.TypeExpense},
			wantErr:    true,
			wantFields: []string{"amount"},
		},
		{
			name:       "both invalid collects both fields",
			req:        models.CreateExpenseRequest{Description: "x", Amount: -5, Type: "REFUND"},
			wantErr:    true,
			wantFields: []string{"type", "amount"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validateExpenseInput(tt.req)
			if (got != nil) != tt.wantErr {
				t.Fatalf("validateExpenseInput = %v, wantErr %v", got, tt.wantErr)
			}
			if got == nil {
				return
			}
			if got.Code != models.ErrCodeValidation {
				t.Errorf("Code = %s, want %s", got.Code, models.ErrCodeValidation)
			}
			for _, f := range tt.wantFields {
				if _, ok := got.Fields[f]; !ok {
					t.Errorf("missing field detail for %q in %v", f, got.Fields)
				}
			}
		})
	}
}

package services

import (
	"testing"

	"github.com/famillio/household-api/models"
)

func TestCheckRole(t *testing.T) {
	tests := []struct {
		name          string
		role          string
		requiredRoles []string
		wantAllowed   bool
	}{
		{"owner passes any-role", models.RoleOwner, AnyRole, true},
		{"viewer passes any-role", models.RoleViewer, AnyRole, true},
		{"viewer fails writing roles", models.RoleViewer, WritingRoles, false},
		{"member passes writing roles", models.RoleMember, WritingRoles, true},
		{"member fails manager roles", models.RoleMember, ManagerRoles, false},
		{"admin passes manager roles", models.RoleAdmin, ManagerRoles, true},
		{"admin fails owner-only", models.RoleAdmin, OwnerOnly, false},
		{"owner passes owner-only", models.RoleOwner, OwnerOnly, true},
		{"empty requirement admits any member", models.RoleViewer, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckRole(tt.role, tt.requiredRoles)
			if got.Allowed != tt.wantAllowed {
				t.Errorf("CheckRole(%s, %v).Allowed = %v, want %v", tt.role, tt.requiredRoles, got.Allowed, tt.wantAllowed)
			}
			if got.Allowed && got.Role != tt.role {
				t.Errorf("Role = %s, want %s", got.Role, tt.role)
			}
			if !got.Allowed && got.Reason == "" {
				t.Error("denied decision carries no reason")
			}
		})
	}
}

func TestCanMutateExpense(t *testing.T) {
	tests := []struct {
		name        string
		role        string
		creatorID   string
		callerID    string
		wantAllowed bool
	}{
		{"creator mutates own expense regardless of role", models.RoleMember, "u1", "u1", true},
		{"viewer creator still mutates own expense", models.RoleViewer, "u1", "u1", true},
		{"member cannot mutate another member's expense", models.RoleMember, "u1", "u2", false},
		{"admin mutates anyone's expense", models.RoleAdmin, "u1", "u2", true},
		{"owner mutates anyone's expense", models.RoleOwner, "u1", "u2", true},
		{"viewer cannot mutate another member's expense", models.RoleViewer, "u1", "u2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanMutateExpense(tt.role, tt.creatorID, tt.callerID)
			if got.Allowed != tt.wantAllowed {
				t.Errorf("CanMutateExpense(%s, %s, %s).Allowed = %v, want %v", tt.role, tt.creatorID, tt.callerID, got.Allowed, tt.wantAllowed)
			}
		})
	}
}

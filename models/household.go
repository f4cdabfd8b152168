package models

import "time"

// Member roles, in decreasing order of privilege. A household has exactly one
// OWNER, assigned at creation and only removable by deleting the household.
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
	RoleViewer = "VIEWER"
)

func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

type Household struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	OwnerID         string            `json:"owner_id"`
	PrimaryBudgetID *string           `json:"primary_budget_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	IsOwner         bool              `json:"is_owner"`
	Role            string            `json:"role,omitempty"`
	Members         []HouseholdMember `json:"members,omitempty"`
}

type HouseholdMember struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"household_id"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
	UserName    string    `json:"user_name"`
	UserEmail   string    `json:"user_email"`
}

type CreateHouseholdRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateHouseholdRequest struct {
	Name            string  `json:"name" binding:"required"`
	PrimaryBudgetID *string `json:"primary_budget_id,omitempty"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

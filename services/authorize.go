package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/famillio/household-api/models"
)

// Decision is the tagged result of an authorization check. When Allowed is
// false, Reason carries the internal explanation; callers surface only a
// generic ACCESS_DENIED so an outsider cannot distinguish "no such household"
// from "not a member".
type Decision struct {
	Allowed bool
	Role    string
	Reason  string
}

func Allowed(role string) Decision {
	return Decision{Allowed: true, Role: role}
}

func Denied(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Role sets used by the handlers.
var (
	AnyRole      = []string{models.RoleOwner, models.RoleAdmin, models.RoleMember, models.RoleViewer}
	ManagerRoles = []string{models.RoleOwner, models.RoleAdmin}
	OwnerOnly    = []string{models.RoleOwner}
	WritingRoles = []string{models.RoleOwner, models.RoleAdmin, models.RoleMember}
)

// Authorizer resolves household membership for request-level access checks.
// Read-only: it never mutates state.
type Authorizer struct {
	db *sql.DB
}

func NewAuthorizer(db *sql.DB) *Authorizer {
	return &Authorizer{db: db}
}

// Authorize checks that userID is a member of householdID with one of the
// required roles. An empty requiredRoles slice means any member passes.
func (a *Authorizer) Authorize(ctx context.Context, householdID, userID string, requiredRoles []string) (Decision, error) {
	var role string
	err := a.db.QueryRowContext(ctx, `
		SELECT role FROM household_members
		WHERE household_id = $1 AND user_id = $2
	`, householdID, userID).Scan(&role)

	if err == sql.ErrNoRows {
		return Denied("not a member"), nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("membership lookup: %w", err)
	}

	return CheckRole(role, requiredRoles), nil
}

// CheckRole is the pure part of the guard: membership already resolved,
// decide on the role alone.
func CheckRole(role string, requiredRoles []string) Decision {
	if len(requiredRoles) == 0 {
		return Allowed(role)
	}
	for _, r := range requiredRoles {
		if role == r {
			return Allowed(role)
		}
	}
	return Denied("insufficient role")
}

// CanMutateExpense applies the creator-or-manager rule for expense writes.
func CanMutateExpense(role, creatorID, callerID string) Decision {
	if creatorID == callerID {
		return Allowed(role)
	}
	return CheckRole(role, ManagerRoles)
}

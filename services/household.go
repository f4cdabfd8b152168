package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/famillio/household-api/models"
	"github.com/famillio/household-api/utils"

	"github.com/google/uuid"
)

type HouseholdService struct {
	db *sql.DB
}

func NewHouseholdService(db *sql.DB) *HouseholdService {
	return &HouseholdService{db: db}
}

// Create inserts the household and its OWNER membership atomically.
func (s *HouseholdService) Create(ctx context.Context, name, ownerID string) (*models.Household, error) {
	household := &models.Household{
		ID:        uuid.New().String(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		IsOwner:   true,
		Role:      models.RoleOwner,
	}

	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO households (id, name, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, household.ID, household.Name, household.OwnerID, household.CreatedAt, household.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert household: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO household_members (id, household_id, user_id, role, joined_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), household.ID, ownerID, models.RoleOwner, time.Now())
		if err != nil {
			return fmt.Errorf("insert owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return household, nil
}

func (s *HouseholdService) GetUserHouseholds(ctx context.Context, userID string) ([]models.Household, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT h.id, h.name, h.owner_id, h.primary_budget_id, h.created_at, h.updated_at, hm.role
		FROM households h
		INNER JOIN household_members hm ON h.id = hm.household_id
		WHERE hm.user_id = $1
		ORDER BY h.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch households: %w", err)
	}
	defer rows.Close()

	households := []models.Household{}
	for rows.Next() {
		var h models.Household
		var primaryBudgetID sql.NullString
		if err := rows.Scan(&h.ID, &h.Name, &h.OwnerID, &primaryBudgetID, &h.CreatedAt, &h.UpdatedAt, &h.Role); err != nil {
			return nil, fmt.Errorf("scan household: %w", err)
		}
		if primaryBudgetID.Valid {
			h.PrimaryBudgetID = &primaryBudgetID.String
		}
		h.IsOwner = h.OwnerID == userID
		households = append(households, h)
	}
	return households, rows.Err()
}

func (s *HouseholdService) GetByID(ctx context.Context, id, userID string) (*models.Household, error) {
	var h models.Household
	var primaryBudgetID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT h.id, h.name, h.owner_id, h.primary_budget_id, h.created_at, h.updated_at, hm.role
		FROM households h
		INNER JOIN household_members hm ON h.id = hm.household_id
		WHERE h.id = $1 AND hm.user_id = $2
	`, id, userID).Scan(&h.ID, &h.Name, &h.OwnerID, &primaryBudgetID, &h.CreatedAt, &h.UpdatedAt, &h.Role)

	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("Household")
	}
	if err != nil {
		return nil, fmt.Errorf("fetch household: %w", err)
	}

	if primaryBudgetID.Valid {
		h.PrimaryBudgetID = &primaryBudgetID.String
	}
	h.IsOwner = h.OwnerID == userID

	members, err := s.GetMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	h.Members = members

	return &h, nil
}

func (s *HouseholdService) GetMembers(ctx context.Context, householdID string) ([]models.HouseholdMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hm.id, hm.household_id, hm.user_id, hm.role, hm.joined_at, u.name, u.email
		FROM household_members hm
		INNER JOIN users u ON hm.user_id = u.id
		WHERE hm.household_id = $1
		ORDER BY hm.joined_at ASC
	`, householdID)
	if err != nil {
		return nil, fmt.Errorf("fetch members: %w", err)
	}
	defer rows.Close()

	members := []models.HouseholdMember{}
	for rows.Next() {
		var m models.HouseholdMember
		if err := rows.Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role, &m.JoinedAt, &m.UserName, &m.UserEmail); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *HouseholdService) Update(ctx context.Context, id string, req models.UpdateHouseholdRequest) error {
	if req.PrimaryBudgetID != nil {
		var exists bool
		err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM budgets WHERE id = $1 AND household_id = $2)
		`, *req.PrimaryBudgetID, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check primary budget: %w", err)
		}
		if !exists {
			return models.NewNotFoundError("Budget")
		}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE households
		SET name = $1, primary_budget_id = $2, updated_at = NOW()
		WHERE id = $3
	`, req.Name, req.PrimaryBudgetID, id)
	if err != nil {
		return fmt.Errorf("update household: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return models.NewNotFoundError("Household")
	}
	return nil
}

// Delete removes the household; FK cascades take members, budgets, categories
// and expenses with it.
func (s *HouseholdService) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM households WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete household: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return models.NewNotFoundError("Household")
	}
	return nil
}

// UpdateMemberRole changes a member's role. The OWNER row is immutable and
// OWNER cannot be granted here.
func (s *HouseholdService) UpdateMemberRole(ctx context.Context, householdID, memberID, role string) error {
	if !models.ValidRole(role) || role == models.RoleOwner {
		return models.NewValidationError("invalid role", map[string]string{"role": "must be one of ADMIN, MEMBER, VIEWER"})
	}

	var currentRole string
	err := s.db.QueryRowContext(ctx, `
		SELECT role FROM household_members WHERE id = $1 AND household_id = $2
	`, memberID, householdID).Scan(&currentRole)
	if err == sql.ErrNoRows {
		return models.NewNotFoundError("Member")
	}
	if err != nil {
		return fmt.Errorf("fetch member: %w", err)
	}
	if currentRole == models.RoleOwner {
		return models.NewConflictError("owner role cannot be changed")
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE household_members SET role = $1 WHERE id = $2 AND household_id = $3
	`, role, memberID, householdID)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	return nil
}

func (s *HouseholdService) RemoveMember(ctx context.Context, householdID, memberID string) error {
	var role string
	err := s.db.QueryRowContext(ctx, `
		SELECT role FROM household_members WHERE id = $1 AND household_id = $2
	`, memberID, householdID).Scan(&role)
	if err == sql.ErrNoRows {
		return models.NewNotFoundError("Member")
	}
	if err != nil {
		return fmt.Errorf("fetch member: %w", err)
	}
	if role == models.RoleOwner {
		return models.NewConflictError("owner cannot be removed")
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM household_members WHERE id = $1 AND household_id = $2
	`, memberID, householdID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

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

// invitationTTL is how long an invitation token stays valid.
const invitationTTL = 7 * 24 * time.Hour

type InvitationService struct {
	db *sql.DB
}

func NewInvitationService(db *sql.DB) *InvitationService {
	return &InvitationService{db: db}
}

// Create issues a one-time invitation token for an email. Rejects when the
// email already belongs to a member or has an unexpired pending invitation.
func (s *InvitationService) Create(ctx context.Context, householdID, email, role, invitedBy string) (*models.Invitation, error) {
	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidRole(role) || role == models.RoleOwner {
		return nil, models.NewValidationError("invalid role", map[string]string{"role": "must be one of ADMIN, MEMBER, VIEWER"})
	}

	var alreadyMember bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM household_members hm
			INNER JOIN users u ON hm.user_id = u.id
			WHERE hm.household_id = $1 AND u.email = $2
		)
	`, householdID, email).Scan(&alreadyMember)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if alreadyMember {
		return nil, models.NewConflictError("user is already a member")
	}

	var pending bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM invitations
			WHERE household_id = $1 AND email = $2 AND used_at IS NULL AND expires_at > NOW()
		)
	`, householdID, email).Scan(&pending)
	if err != nil {
		return nil, fmt.Errorf("check pending invitation: %w", err)
	}
	if pending {
		return nil, models.NewConflictError("invitation already sent")
	}

	invitation := &models.Invitation{
		ID:          uuid.New().String(),
		HouseholdID: householdID,
		Email:       email,
		Role:        role,
		InvitedBy:   invitedBy,
		Token:       uuid.New().String(),
		ExpiresAt:   time.Now().Add(invitationTTL),
		CreatedAt:   time.Now(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invitations (id, household_id, email, role, invited_by, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, invitation.ID, invitation.HouseholdID, invitation.Email, invitation.Role,
		invitation.InvitedBy, invitation.Token, invitation.ExpiresAt, invitation.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert invitation: %w", err)
	}

	return invitation, nil
}

func (s *InvitationService) List(ctx context.Context, householdID string) ([]models.Invitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, household_id, email, role, invited_by, token, expires_at, used_at, created_at
		FROM invitations
		WHERE household_id = $1
		ORDER BY created_at DESC
	`, householdID)
	if err != nil {
		return nil, fmt.Errorf("fetch invitations: %w", err)
	}
	defer rows.Close()

	invitations := []models.Invitation{}
	for rows.Next() {
		var inv models.Invitation
		var usedAt sql.NullTime
		if err := rows.Scan(&inv.ID, &inv.HouseholdID, &inv.Email, &inv.Role, &inv.InvitedBy,
			&inv.Token, &inv.ExpiresAt, &usedAt, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		if usedAt.Valid {
			inv.UsedAt = &usedAt.Time
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (s *InvitationService) Cancel(ctx context.Context, householdID, invitationID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM invitations WHERE id = $1 AND household_id = $2 AND used_at IS NULL
	`, invitationID, householdID)
	if err != nil {
		return fmt.Errorf("cancel invitation: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return models.NewNotFoundError("Invitation")
	}
	return nil
}

// Accept consumes a token: marks it used and inserts the membership with the
// invited role, in one transaction.
func (s *InvitationService) Accept(ctx context.Context, token, userID, userEmail string) (*models.Household, error) {
	var inv models.Invitation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, household_id, email, role, expires_at, used_at
		FROM invitations
		WHERE token = $1
	`, token).Scan(&inv.ID, &inv.HouseholdID, &inv.Email, &inv.Role, &inv.ExpiresAt, &inv.UsedAt)

	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("Invitation")
	}
	if err != nil {
		return nil, fmt.Errorf("fetch invitation: %w", err)
	}

	if inv.UsedAt != nil {
		return nil, models.NewConflictError("invitation already used")
	}
	if time.Now().After(inv.ExpiresAt) {
		return nil, models.NewConflictError("invitation expired")
	}
	if inv.Email != userEmail {
		return nil, models.NewAccessDeniedError()
	}

	var alreadyMember bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM household_members WHERE household_id = $1 AND user_id = $2)
	`, inv.HouseholdID, userID).Scan(&alreadyMember)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if alreadyMember {
		return nil, models.NewConflictError("already a member")
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE invitations SET used_at = NOW() WHERE id = $1
		`, inv.ID); err != nil {
			return fmt.Errorf("mark invitation used: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO household_members (id, household_id, user_id, role, joined_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), inv.HouseholdID, userID, inv.Role, time.Now()); err != nil {
			return fmt.Errorf("insert membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var h models.Household
	err = s.db.QueryRowContext(ctx, `
		SELECT id, name, owner_id, created_at, updated_at FROM households WHERE id = $1
	`, inv.HouseholdID).Scan(&h.ID, &h.Name, &h.OwnerID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("fetch household: %w", err)
	}
	h.Role = inv.Role

	return &h, nil
}

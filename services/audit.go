package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
)

// AuditLogger records destructive and role-changing actions. Recording is
// best effort: a failed audit write never fails the request that caused it.
type AuditLogger struct {
	db *sql.DB
}

func NewAuditLogger(db *sql.DB) *AuditLogger {
	return &AuditLogger{db: db}
}

func (a *AuditLogger) Record(ctx context.Context, householdID, userID, action string, changes map[string]interface{}) {
	payload, err := json.Marshal(changes)
	if err != nil {
		log.Printf("⚠️ Failed to encode audit changes for %s: %v", action, err)
		return
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO audit_logs (household_id, user_id, action, changes)
		VALUES ($1, $2, $3, $4)
	`, householdID, userID, action, payload)
	if err != nil {
		log.Printf("⚠️ Failed to record audit log for %s: %v", action, err)
	}
}

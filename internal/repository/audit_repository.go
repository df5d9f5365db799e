package repository

import (
	"database/sql"
	"fmt"
	"time"

	"feedback/internal/models"
)

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create creates a new audit log entry
func (r *AuditRepository) Create(entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (user_id, username, action, resource, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		entry.UserID,
		entry.Username,
		entry.Action,
		entry.Resource,
		entry.Details,
		now,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	entry.CreatedAt = now
	return nil
}

// List retrieves the most recent audit log entries
func (r *AuditRepository) List(limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, user_id, username, action, resource, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Username,
			&entry.Action,
			&entry.Resource,
			&entry.Details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

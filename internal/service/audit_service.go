package service

import (
	"log/slog"

	"feedback/internal/models"
	"feedback/internal/repository"
)

// AuditService records lifecycle intents for the admin audit trail
type AuditService struct {
	auditRepo *repository.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo *repository.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Log creates an audit log entry. Audit failures never fail the main
// operation; they are logged and dropped.
func (s *AuditService) Log(caller *models.User, action, resource, details string) {
	err := s.auditRepo.Create(&models.AuditLog{
		UserID:   &caller.ID,
		Username: &caller.Username,
		Action:   action,
		Resource: resource,
		Details:  details,
	})
	if err != nil {
		slog.Error("Failed to write audit log", "action", action, "error", err)
	}
}

// List retrieves the most recent audit log entries
func (s *AuditService) List(limit int) ([]models.AuditLog, error) {
	return s.auditRepo.List(limit)
}

package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"feedback/internal/models"

	"github.com/lib/pq"
)

var (
	ErrJobRoleNotFound = errors.New("job role not found")
	ErrJobRoleExists   = errors.New("job role already exists")
)

// JobRoleRepository handles job role database operations
type JobRoleRepository struct {
	db *sql.DB
}

// NewJobRoleRepository creates a new job role repository
func NewJobRoleRepository(db *sql.DB) *JobRoleRepository {
	return &JobRoleRepository{db: db}
}

// Create creates a new job role
func (r *JobRoleRepository) Create(jobRole *models.JobRole) error {
	query := `
		INSERT INTO job_roles (name, created_at, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(query, jobRole.Name, now, now).Scan(&jobRole.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrJobRoleExists
		}
		return fmt.Errorf("failed to create job role: %w", err)
	}

	jobRole.CreatedAt = now
	jobRole.UpdatedAt = now
	return nil
}

// GetByID retrieves a job role by ID
func (r *JobRoleRepository) GetByID(id uint) (*models.JobRole, error) {
	query := `SELECT id, name, created_at, updated_at FROM job_roles WHERE id = $1`

	jobRole := &models.JobRole{}
	err := r.db.QueryRow(query, id).Scan(&jobRole.ID, &jobRole.Name, &jobRole.CreatedAt, &jobRole.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrJobRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job role: %w", err)
	}

	return jobRole, nil
}

// GetByName retrieves a job role by name
func (r *JobRoleRepository) GetByName(name string) (*models.JobRole, error) {
	query := `SELECT id, name, created_at, updated_at FROM job_roles WHERE name = $1`

	jobRole := &models.JobRole{}
	err := r.db.QueryRow(query, name).Scan(&jobRole.ID, &jobRole.Name, &jobRole.CreatedAt, &jobRole.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrJobRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job role: %w", err)
	}

	return jobRole, nil
}

// List retrieves all job roles ordered by name
func (r *JobRoleRepository) List() ([]models.JobRole, error) {
	query := `SELECT id, name, created_at, updated_at FROM job_roles ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list job roles: %w", err)
	}
	defer rows.Close()

	var jobRoles []models.JobRole
	for rows.Next() {
		var jobRole models.JobRole
		if err := rows.Scan(&jobRole.ID, &jobRole.Name, &jobRole.CreatedAt, &jobRole.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job role: %w", err)
		}
		jobRoles = append(jobRoles, jobRole)
	}

	return jobRoles, rows.Err()
}

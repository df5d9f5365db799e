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
	ErrCriteriaNotFound    = errors.New("criteria not found")
	ErrCriteriaExists      = errors.New("criteria already exists for this job role")
	ErrExpectationExists   = errors.New("expectation already exists for this position")
	ErrExpectationNotFound = errors.New("expectation not found")
)

// CriteriaRepository handles criteria and expectation database operations
type CriteriaRepository struct {
	db *sql.DB
}

// NewCriteriaRepository creates a new criteria repository
func NewCriteriaRepository(db *sql.DB) *CriteriaRepository {
	return &CriteriaRepository{db: db}
}

// Create creates a new criteria
func (r *CriteriaRepository) Create(criteria *models.Criteria) error {
	query := `
		INSERT INTO criteria (name, job_role_id, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(query, criteria.Name, criteria.JobRoleID, criteria.Archived, now, now).Scan(&criteria.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrCriteriaExists
		}
		return fmt.Errorf("failed to create criteria: %w", err)
	}

	criteria.CreatedAt = now
	criteria.UpdatedAt = now
	return nil
}

// GetByID retrieves a criteria by ID
func (r *CriteriaRepository) GetByID(id uint) (*models.Criteria, error) {
	query := `
		SELECT id, name, job_role_id, archived, created_at, updated_at
		FROM criteria
		WHERE id = $1
	`

	criteria := &models.Criteria{}
	err := r.db.QueryRow(query, id).Scan(
		&criteria.ID,
		&criteria.Name,
		&criteria.JobRoleID,
		&criteria.Archived,
		&criteria.CreatedAt,
		&criteria.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrCriteriaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get criteria: %w", err)
	}

	return criteria, nil
}

// Update updates a criteria's name and archived flag
func (r *CriteriaRepository) Update(criteria *models.Criteria) error {
	query := `
		UPDATE criteria
		SET name = $1, archived = $2, updated_at = $3
		WHERE id = $4
	`

	now := time.Now()
	result, err := r.db.Exec(query, criteria.Name, criteria.Archived, now, criteria.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrCriteriaExists
		}
		return fmt.Errorf("failed to update criteria: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrCriteriaNotFound
	}

	criteria.UpdatedAt = now
	return nil
}

// ListByJobRole retrieves criteria for a job role, optionally including archived ones
func (r *CriteriaRepository) ListByJobRole(jobRoleID uint, includeArchived bool) ([]models.Criteria, error) {
	query := `
		SELECT id, name, job_role_id, archived, created_at, updated_at
		FROM criteria
		WHERE job_role_id = $1
	`
	if !includeArchived {
		query += ` AND archived = FALSE`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(query, jobRoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	defer rows.Close()

	var criteriaList []models.Criteria
	for rows.Next() {
		var criteria models.Criteria
		err := rows.Scan(
			&criteria.ID,
			&criteria.Name,
			&criteria.JobRoleID,
			&criteria.Archived,
			&criteria.CreatedAt,
			&criteria.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan criteria: %w", err)
		}
		criteriaList = append(criteriaList, criteria)
	}

	return criteriaList, rows.Err()
}

// CountByJobRole returns the number of criteria (archived included) for a job role
func (r *CriteriaRepository) CountByJobRole(jobRoleID uint) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM criteria WHERE job_role_id = $1`
	if err := r.db.QueryRow(query, jobRoleID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count criteria: %w", err)
	}
	return count, nil
}

// CreateExpectation creates a new expectation for a criteria and position
func (r *CriteriaRepository) CreateExpectation(expectation *models.Expectation) error {
	query := `
		INSERT INTO expectations (criteria_id, position, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		expectation.CriteriaID,
		expectation.Position,
		expectation.Description,
		now,
		now,
	).Scan(&expectation.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrExpectationExists
		}
		return fmt.Errorf("failed to create expectation: %w", err)
	}

	expectation.CreatedAt = now
	expectation.UpdatedAt = now
	return nil
}

// ListExpectations retrieves all expectations for a criteria
func (r *CriteriaRepository) ListExpectations(criteriaID uint) ([]models.Expectation, error) {
	query := `
		SELECT id, criteria_id, position, description, created_at, updated_at
		FROM expectations
		WHERE criteria_id = $1
		ORDER BY position
	`

	rows, err := r.db.Query(query, criteriaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expectations: %w", err)
	}
	defer rows.Close()

	var expectations []models.Expectation
	for rows.Next() {
		var expectation models.Expectation
		err := rows.Scan(
			&expectation.ID,
			&expectation.CriteriaID,
			&expectation.Position,
			&expectation.Description,
			&expectation.CreatedAt,
			&expectation.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expectation: %w", err)
		}
		expectations = append(expectations, expectation)
	}

	return expectations, rows.Err()
}

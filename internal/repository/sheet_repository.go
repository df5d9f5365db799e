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
	ErrSheetNotFound = errors.New("sheet not found")
	ErrSheetExists   = errors.New("sheet already exists for this reviewer")
)

// SheetRepository handles sheet database operations
type SheetRepository struct {
	db *sql.DB
}

// NewSheetRepository creates a new sheet repository
func NewSheetRepository(db *sql.DB) *SheetRepository {
	return &SheetRepository{db: db}
}

const sheetColumns = `id, review_id, reviewer_id, due_date, weight, reviewer_group,
       completed, completed_date, created_at, updated_at`

func scanSheetRows(rows *sql.Rows) ([]models.Sheet, error) {
	var sheets []models.Sheet
	for rows.Next() {
		var sheet models.Sheet
		err := rows.Scan(
			&sheet.ID,
			&sheet.ReviewID,
			&sheet.ReviewerID,
			&sheet.DueDate,
			&sheet.Weight,
			&sheet.ReviewerGroup,
			&sheet.Completed,
			&sheet.CompletedDate,
			&sheet.CreatedAt,
			&sheet.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sheet: %w", err)
		}
		sheets = append(sheets, sheet)
	}
	return sheets, rows.Err()
}

// CreateTx creates a new sheet inside a transaction
func (r *SheetRepository) CreateTx(tx *sql.Tx, sheet *models.Sheet) error {
	query := `
		INSERT INTO sheets (review_id, reviewer_id, due_date, weight, reviewer_group,
		                    completed, completed_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	now := time.Now()
	err := tx.QueryRow(
		query,
		sheet.ReviewID,
		sheet.ReviewerID,
		sheet.DueDate,
		sheet.Weight,
		sheet.ReviewerGroup,
		sheet.Completed,
		sheet.CompletedDate,
		now,
		now,
	).Scan(&sheet.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrSheetExists
		}
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	sheet.CreatedAt = now
	sheet.UpdatedAt = now
	return nil
}

// GetByID retrieves a sheet by ID
func (r *SheetRepository) GetByID(id uint) (*models.Sheet, error) {
	query := `SELECT ` + sheetColumns + ` FROM sheets WHERE id = $1`

	sheet := &models.Sheet{}
	err := r.db.QueryRow(query, id).Scan(
		&sheet.ID,
		&sheet.ReviewID,
		&sheet.ReviewerID,
		&sheet.DueDate,
		&sheet.Weight,
		&sheet.ReviewerGroup,
		&sheet.Completed,
		&sheet.CompletedDate,
		&sheet.CreatedAt,
		&sheet.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSheetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}

	return sheet, nil
}

// Update updates a sheet's lifecycle fields
func (r *SheetRepository) Update(sheet *models.Sheet) error {
	query := `
		UPDATE sheets
		SET due_date = $1, reviewer_group = $2, completed = $3, completed_date = $4, updated_at = $5
		WHERE id = $6
	`

	now := time.Now()
	result, err := r.db.Exec(
		query,
		sheet.DueDate,
		sheet.ReviewerGroup,
		sheet.Completed,
		sheet.CompletedDate,
		now,
		sheet.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sheet: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrSheetNotFound
	}

	sheet.UpdatedAt = now
	return nil
}

// SetWeightTx sets a sheet's weight inside a transaction
func (r *SheetRepository) SetWeightTx(tx *sql.Tx, sheetID uint, weight float64) error {
	query := `UPDATE sheets SET weight = $1, updated_at = $2 WHERE id = $3`

	result, err := tx.Exec(query, weight, time.Now(), sheetID)
	if err != nil {
		return fmt.Errorf("failed to set sheet weight: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrSheetNotFound
	}

	return nil
}

// CompleteOpenByReviewTx force-completes all open sheets of a review at the
// given instant, inside a transaction
func (r *SheetRepository) CompleteOpenByReviewTx(tx *sql.Tx, reviewID uint, completedDate time.Time) error {
	query := `
		UPDATE sheets
		SET completed = TRUE, completed_date = $1, updated_at = $2
		WHERE review_id = $3 AND completed = FALSE
	`

	if _, err := tx.Exec(query, completedDate, time.Now(), reviewID); err != nil {
		return fmt.Errorf("failed to complete sheets: %w", err)
	}

	return nil
}

// ListByReview retrieves all sheets of a review
func (r *SheetRepository) ListByReview(reviewID uint) ([]models.Sheet, error) {
	query := `SELECT ` + sheetColumns + ` FROM sheets WHERE review_id = $1 ORDER BY id`

	rows, err := r.db.Query(query, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	defer rows.Close()

	return scanSheetRows(rows)
}

// ListByReviewer retrieves all sheets assigned to a reviewer
func (r *SheetRepository) ListByReviewer(reviewerID uint) ([]models.Sheet, error) {
	query := `SELECT ` + sheetColumns + ` FROM sheets WHERE reviewer_id = $1 ORDER BY due_date`

	rows, err := r.db.Query(query, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	defer rows.Close()

	return scanSheetRows(rows)
}

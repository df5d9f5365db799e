package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"feedback/internal/models"
)

var ErrSheetAnswerNotFound = errors.New("sheet answer not found")

// SheetAnswerRepository handles sheet-level verdict operations
type SheetAnswerRepository struct {
	db *sql.DB
}

// NewSheetAnswerRepository creates a new sheet answer repository
func NewSheetAnswerRepository(db *sql.DB) *SheetAnswerRepository {
	return &SheetAnswerRepository{db: db}
}

// CreateStubTx creates the empty verdict row for a sheet inside a transaction
func (r *SheetAnswerRepository) CreateStubTx(tx *sql.Tx, sheetID uint) error {
	query := `
		INSERT INTO sheet_answers (sheet_id, total_score, comment, created_at, updated_at)
		VALUES ($1, NULL, NULL, $2, $2)
	`

	if _, err := tx.Exec(query, sheetID, time.Now()); err != nil {
		return fmt.Errorf("failed to create sheet answer stub: %w", err)
	}

	return nil
}

// Update updates the verdict of a sheet
func (r *SheetAnswerRepository) Update(sheetAnswer *models.SheetAnswer) error {
	query := `
		UPDATE sheet_answers
		SET total_score = $1, comment = $2, updated_at = $3
		WHERE sheet_id = $4
		RETURNING id, created_at
	`

	now := time.Now()
	err := r.db.QueryRow(query, sheetAnswer.TotalScore, sheetAnswer.Comment, now, sheetAnswer.SheetID).
		Scan(&sheetAnswer.ID, &sheetAnswer.CreatedAt)
	if err == sql.ErrNoRows {
		return ErrSheetAnswerNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update sheet answer: %w", err)
	}

	sheetAnswer.UpdatedAt = now
	return nil
}

// GetBySheet retrieves the verdict of a sheet
func (r *SheetAnswerRepository) GetBySheet(sheetID uint) (*models.SheetAnswer, error) {
	query := `
		SELECT id, sheet_id, total_score, comment, created_at, updated_at
		FROM sheet_answers
		WHERE sheet_id = $1
	`

	sheetAnswer := &models.SheetAnswer{}
	err := r.db.QueryRow(query, sheetID).Scan(
		&sheetAnswer.ID,
		&sheetAnswer.SheetID,
		&sheetAnswer.TotalScore,
		&sheetAnswer.Comment,
		&sheetAnswer.CreatedAt,
		&sheetAnswer.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSheetAnswerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet answer: %w", err)
	}

	return sheetAnswer, nil
}

// ListByReview retrieves all sheet answers across a review's sheets
func (r *SheetAnswerRepository) ListByReview(reviewID uint) ([]models.SheetAnswer, error) {
	query := `
		SELECT sa.id, sa.sheet_id, sa.total_score, sa.comment, sa.created_at, sa.updated_at
		FROM sheet_answers sa
		JOIN sheets s ON s.id = sa.sheet_id
		WHERE s.review_id = $1
		ORDER BY sa.sheet_id
	`

	rows, err := r.db.Query(query, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheet answers: %w", err)
	}
	defer rows.Close()

	var sheetAnswers []models.SheetAnswer
	for rows.Next() {
		var sheetAnswer models.SheetAnswer
		err := rows.Scan(
			&sheetAnswer.ID,
			&sheetAnswer.SheetID,
			&sheetAnswer.TotalScore,
			&sheetAnswer.Comment,
			&sheetAnswer.CreatedAt,
			&sheetAnswer.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sheet answer: %w", err)
		}
		sheetAnswers = append(sheetAnswers, sheetAnswer)
	}

	return sheetAnswers, rows.Err()
}

package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"feedback/internal/models"
)

var ErrAnswerNotFound = errors.New("answer not found")

// AnswerRepository handles answer database operations
type AnswerRepository struct {
	db *sql.DB
}

// NewAnswerRepository creates a new answer repository
func NewAnswerRepository(db *sql.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// Upsert inserts or updates the answer for a sheet and criteria pair
func (r *AnswerRepository) Upsert(answer *models.Answer) error {
	query := `
		INSERT INTO answers (sheet_id, criteria_id, score, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (sheet_id, criteria_id)
		DO UPDATE SET score = EXCLUDED.score, comment = EXCLUDED.comment, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		answer.SheetID,
		answer.CriteriaID,
		answer.Score,
		answer.Comment,
		now,
	).Scan(&answer.ID, &answer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert answer: %w", err)
	}

	answer.UpdatedAt = now
	return nil
}

// InsertStubsTx creates empty answers for the given criteria inside a transaction
func (r *AnswerRepository) InsertStubsTx(tx *sql.Tx, sheetID uint, criteriaIDs []uint) error {
	query := `
		INSERT INTO answers (sheet_id, criteria_id, score, comment, created_at, updated_at)
		VALUES ($1, $2, NULL, NULL, $3, $3)
	`

	now := time.Now()
	for _, criteriaID := range criteriaIDs {
		if _, err := tx.Exec(query, sheetID, criteriaID, now); err != nil {
			return fmt.Errorf("failed to create answer stub: %w", err)
		}
	}

	return nil
}

// Get retrieves the answer for a sheet and criteria pair
func (r *AnswerRepository) Get(sheetID, criteriaID uint) (*models.Answer, error) {
	query := `
		SELECT id, sheet_id, criteria_id, score, comment, created_at, updated_at
		FROM answers
		WHERE sheet_id = $1 AND criteria_id = $2
	`

	answer := &models.Answer{}
	err := r.db.QueryRow(query, sheetID, criteriaID).Scan(
		&answer.ID,
		&answer.SheetID,
		&answer.CriteriaID,
		&answer.Score,
		&answer.Comment,
		&answer.CreatedAt,
		&answer.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAnswerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}

	return answer, nil
}

// ListBySheet retrieves all answers of a sheet
func (r *AnswerRepository) ListBySheet(sheetID uint) ([]models.Answer, error) {
	query := `
		SELECT id, sheet_id, criteria_id, score, comment, created_at, updated_at
		FROM answers
		WHERE sheet_id = $1
		ORDER BY criteria_id
	`

	rows, err := r.db.Query(query, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var answer models.Answer
		err := rows.Scan(
			&answer.ID,
			&answer.SheetID,
			&answer.CriteriaID,
			&answer.Score,
			&answer.Comment,
			&answer.CreatedAt,
			&answer.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, answer)
	}

	return answers, rows.Err()
}

// ListByReview retrieves all answers across a review's sheets
func (r *AnswerRepository) ListByReview(reviewID uint) ([]models.Answer, error) {
	query := `
		SELECT a.id, a.sheet_id, a.criteria_id, a.score, a.comment, a.created_at, a.updated_at
		FROM answers a
		JOIN sheets s ON s.id = a.sheet_id
		WHERE s.review_id = $1
		ORDER BY a.sheet_id, a.criteria_id
	`

	rows, err := r.db.Query(query, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review answers: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var answer models.Answer
		err := rows.Scan(
			&answer.ID,
			&answer.SheetID,
			&answer.CriteriaID,
			&answer.Score,
			&answer.Comment,
			&answer.CreatedAt,
			&answer.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, answer)
	}

	return answers, rows.Err()
}

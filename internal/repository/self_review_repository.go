package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"feedback/internal/models"
)

var ErrSelfReviewNotFound = errors.New("self review not found")

// SelfReviewRepository handles self review database operations
type SelfReviewRepository struct {
	db *sql.DB
}

// NewSelfReviewRepository creates a new self review repository
func NewSelfReviewRepository(db *sql.DB) *SelfReviewRepository {
	return &SelfReviewRepository{db: db}
}

// CreateTx creates an empty self review for a review inside a transaction
func (r *SelfReviewRepository) CreateTx(tx *sql.Tx, selfReview *models.SelfReview) error {
	query := `
		INSERT INTO self_reviews (review_id, description, good_things, bad_things, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`

	now := time.Now()
	err := tx.QueryRow(
		query,
		selfReview.ReviewID,
		selfReview.Description,
		selfReview.GoodThings,
		selfReview.BadThings,
		now,
	).Scan(&selfReview.ID)
	if err != nil {
		return fmt.Errorf("failed to create self review: %w", err)
	}

	selfReview.CreatedAt = now
	selfReview.UpdatedAt = now
	return nil
}

// GetByReview retrieves the self review of a review
func (r *SelfReviewRepository) GetByReview(reviewID uint) (*models.SelfReview, error) {
	query := `
		SELECT id, review_id, description, good_things, bad_things, created_at, updated_at
		FROM self_reviews
		WHERE review_id = $1
	`

	selfReview := &models.SelfReview{}
	err := r.db.QueryRow(query, reviewID).Scan(
		&selfReview.ID,
		&selfReview.ReviewID,
		&selfReview.Description,
		&selfReview.GoodThings,
		&selfReview.BadThings,
		&selfReview.CreatedAt,
		&selfReview.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSelfReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get self review: %w", err)
	}

	return selfReview, nil
}

// Update updates the self review content
func (r *SelfReviewRepository) Update(selfReview *models.SelfReview) error {
	query := `
		UPDATE self_reviews
		SET description = $1, good_things = $2, bad_things = $3, updated_at = $4
		WHERE id = $5
	`

	now := time.Now()
	result, err := r.db.Exec(
		query,
		selfReview.Description,
		selfReview.GoodThings,
		selfReview.BadThings,
		now,
		selfReview.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update self review: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrSelfReviewNotFound
	}

	selfReview.UpdatedAt = now
	return nil
}

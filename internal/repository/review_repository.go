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
	ErrReviewNotFound = errors.New("review not found")
	ErrReviewExists   = errors.New("review already exists for this period")
)

// ReviewRepository handles review database operations
type ReviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// DB exposes the underlying pool for service-level transactions
func (r *ReviewRepository) DB() *sql.DB {
	return r.db
}

const reviewColumns = `id, user_id, period, completed, completed_date, user_position, created_at, updated_at`

// CreateTx creates a new review inside a transaction
func (r *ReviewRepository) CreateTx(tx *sql.Tx, review *models.Review) error {
	query := `
		INSERT INTO reviews (user_id, period, completed, completed_date, user_position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	now := time.Now()
	err := tx.QueryRow(
		query,
		review.UserID,
		review.Period,
		review.Completed,
		review.CompletedDate,
		review.UserPosition,
		now,
		now,
	).Scan(&review.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrReviewExists
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	review.CreatedAt = now
	review.UpdatedAt = now
	return nil
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(id uint) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review := &models.Review{}
	err := r.db.QueryRow(query, id).Scan(
		&review.ID,
		&review.UserID,
		&review.Period,
		&review.Completed,
		&review.CompletedDate,
		&review.UserPosition,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return review, nil
}

// UpdateTx updates a review's lifecycle fields inside a transaction
func (r *ReviewRepository) UpdateTx(tx *sql.Tx, review *models.Review) error {
	query := `
		UPDATE reviews
		SET period = $1, completed = $2, completed_date = $3, user_position = $4, updated_at = $5
		WHERE id = $6
	`

	now := time.Now()
	result, err := tx.Exec(
		query,
		review.Period,
		review.Completed,
		review.CompletedDate,
		review.UserPosition,
		now,
		review.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrReviewNotFound
	}

	review.UpdatedAt = now
	return nil
}

// List retrieves reviews filtered by username and/or period, newest first
func (r *ReviewRepository) List(username, period string) ([]models.Review, error) {
	query := `
		SELECT r.id, r.user_id, r.period, r.completed, r.completed_date, r.user_position, r.created_at, r.updated_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE ($1 = '' OR u.username = $1)
		  AND ($2 = '' OR r.period = $2)
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.Query(query, username, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var review models.Review
		err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.Period,
			&review.Completed,
			&review.CompletedDate,
			&review.UserPosition,
			&review.CreatedAt,
			&review.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

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
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// UserRepository handles user database operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, password_hash, user_role, job_role_id, position,
       full_name, email, department, appointment, active, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.JobRoleID,
		&user.Position,
		&user.FullName,
		&user.Email,
		&user.Department,
		&user.Appointment,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Create creates a new user
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, user_role, job_role_id, position,
		                   full_name, email, department, appointment, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.JobRoleID,
		user.Position,
		user.FullName,
		user.Email,
		user.Department,
		user.Appointment,
		user.Active,
		now,
		now,
	).Scan(&user.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(query, id))
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRow(query, username))
}

// List retrieves all users ordered by username
func (r *UserRepository) List() ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
			&user.Role,
			&user.JobRoleID,
			&user.Position,
			&user.FullName,
			&user.Email,
			&user.Department,
			&user.Appointment,
			&user.Active,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// Update updates a user's mutable fields
func (r *UserRepository) Update(user *models.User) error {
	query := `
		UPDATE users
		SET password_hash = $1, user_role = $2, job_role_id = $3, position = $4,
		    full_name = $5, email = $6, department = $7, appointment = $8,
		    active = $9, updated_at = $10
		WHERE id = $11
	`

	now := time.Now()
	result, err := r.db.Exec(
		query,
		user.PasswordHash,
		user.Role,
		user.JobRoleID,
		user.Position,
		user.FullName,
		user.Email,
		user.Department,
		user.Appointment,
		user.Active,
		now,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	user.UpdatedAt = now
	return nil
}

// Count returns the total number of users
func (r *UserRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// ExistsByRole reports whether any user with the given role exists
func (r *UserRepository) ExistsByRole(role models.UserRole) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE user_role = $1)`
	if err := r.db.QueryRow(query, role).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check role existence: %w", err)
	}
	return exists, nil
}

// HasCurrentReviews reports whether the user owns at least one open review
func (r *UserRepository) HasCurrentReviews(userID uint) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM reviews WHERE user_id = $1 AND completed = FALSE`
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count open reviews: %w", err)
	}
	return count > 0, nil
}

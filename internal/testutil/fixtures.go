package testutil

import (
	"database/sql"
	"testing"
	"time"

	"feedback/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Fixtures holds test data
type Fixtures struct {
	DB       *sql.DB
	JobRole  *models.JobRole
	Criteria []models.Criteria
	Admin    *models.User
	Head     *models.User
	Reviewee *models.User
	Reviewer *models.User
}

// SetupFixtures creates a job role with criteria and a set of users
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	fixtures := &Fixtures{DB: db}

	fixtures.JobRole = CreateJobRole(t, db, "Software Engineer")
	fixtures.Criteria = []models.Criteria{
		*CreateCriteria(t, db, fixtures.JobRole.ID, "Code Quality", false),
		*CreateCriteria(t, db, fixtures.JobRole.ID, "Communication", false),
		*CreateCriteria(t, db, fixtures.JobRole.ID, "Ownership", false),
	}

	fixtures.Admin = CreateUser(t, db, "admin", models.RoleAdmin, nil, models.PositionNone)
	fixtures.Head = CreateUser(t, db, "head", models.RoleHead, nil, models.PositionNone)
	fixtures.Reviewee = CreateUser(t, db, "reviewee", models.RoleUser, &fixtures.JobRole.ID, models.PositionMiddle)
	fixtures.Reviewer = CreateUser(t, db, "reviewer", models.RoleUser, &fixtures.JobRole.ID, models.PositionSenior)

	return fixtures
}

// CreateJobRole inserts a job role
func CreateJobRole(t *testing.T, db *sql.DB, name string) *models.JobRole {
	t.Helper()

	var jobRole models.JobRole
	err := db.QueryRow(`
		INSERT INTO job_roles (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at
	`, name).Scan(&jobRole.ID, &jobRole.Name, &jobRole.CreatedAt, &jobRole.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create job role %s: %v", name, err)
	}

	return &jobRole
}

// CreateCriteria inserts a criterion under a job role
func CreateCriteria(t *testing.T, db *sql.DB, jobRoleID uint, name string, archived bool) *models.Criteria {
	t.Helper()

	var criteria models.Criteria
	err := db.QueryRow(`
		INSERT INTO criteria (name, job_role_id, archived)
		VALUES ($1, $2, $3)
		RETURNING id, name, job_role_id, archived, created_at, updated_at
	`, name, jobRoleID, archived).Scan(
		&criteria.ID, &criteria.Name, &criteria.JobRoleID, &criteria.Archived,
		&criteria.CreatedAt, &criteria.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create criteria %s: %v", name, err)
	}

	return &criteria
}

// CreateUser inserts a user with the given role, job role and position
func CreateUser(t *testing.T, db *sql.DB, username string, role models.UserRole, jobRoleID *uint, position models.Position) *models.User {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	var user models.User
	err = db.QueryRow(`
		INSERT INTO users (username, password_hash, user_role, job_role_id, position, full_name, email, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING id, username, password_hash, user_role, job_role_id, position, full_name, email, department, appointment, active, created_at, updated_at
	`, username, string(hashedPassword), role, jobRoleID, position, username+" Test", username+"@test.com").Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.JobRoleID,
		&user.Position, &user.FullName, &user.Email, &user.Department,
		&user.Appointment, &user.Active, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}

	return &user
}

// CreateReview inserts a review with its self review, bypassing the service layer
func (f *Fixtures) CreateReview(t *testing.T, userID uint, period string) *models.Review {
	t.Helper()

	var review models.Review
	err := f.DB.QueryRow(`
		INSERT INTO reviews (user_id, period, user_position)
		VALUES ($1, $2, (SELECT position FROM users WHERE id = $1))
		RETURNING id, user_id, period, completed, completed_date, user_position, created_at, updated_at
	`, userID, period).Scan(
		&review.ID, &review.UserID, &review.Period, &review.Completed,
		&review.CompletedDate, &review.UserPosition, &review.CreatedAt, &review.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}

	_, err = f.DB.Exec(`INSERT INTO self_reviews (review_id) VALUES ($1)`, review.ID)
	if err != nil {
		t.Fatalf("Failed to create self review: %v", err)
	}

	return &review
}

// CreateSheet inserts a sheet with its sheet answer stub
func (f *Fixtures) CreateSheet(t *testing.T, reviewID, reviewerID uint, group models.ReviewerGroup) *models.Sheet {
	t.Helper()

	dueDate := time.Now().Add(14 * 24 * time.Hour)

	var sheet models.Sheet
	err := f.DB.QueryRow(`
		INSERT INTO sheets (review_id, reviewer_id, due_date, reviewer_group)
		VALUES ($1, $2, $3, $4)
		RETURNING id, review_id, reviewer_id, due_date, weight, reviewer_group, completed, completed_date, created_at, updated_at
	`, reviewID, reviewerID, dueDate, group).Scan(
		&sheet.ID, &sheet.ReviewID, &sheet.ReviewerID, &sheet.DueDate,
		&sheet.Weight, &sheet.ReviewerGroup, &sheet.Completed, &sheet.CompletedDate,
		&sheet.CreatedAt, &sheet.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create sheet: %v", err)
	}

	_, err = f.DB.Exec(`INSERT INTO sheet_answers (sheet_id) VALUES ($1)`, sheet.ID)
	if err != nil {
		t.Fatalf("Failed to create sheet answer stub: %v", err)
	}

	return &sheet
}

// CreateAnswerStubs inserts empty answers for the given criteria on a sheet
func (f *Fixtures) CreateAnswerStubs(t *testing.T, sheetID uint, criteria []models.Criteria) {
	t.Helper()

	for _, c := range criteria {
		_, err := f.DB.Exec(`INSERT INTO answers (sheet_id, criteria_id) VALUES ($1, $2)`, sheetID, c.ID)
		if err != nil {
			t.Fatalf("Failed to create answer stub for criteria %d: %v", c.ID, err)
		}
	}
}

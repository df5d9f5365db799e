package models

import (
	"time"
)

// JobRole represents a job role that groups assessment criteria
type JobRole struct {
	ID        uint      `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Criteria represents one assessable criterion belonging to a job role
type Criteria struct {
	ID        uint      `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	JobRoleID uint      `json:"job_role_id" db:"job_role_id"`
	Archived  bool      `json:"archived" db:"archived"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Expectation describes what a criterion means at a given position
type Expectation struct {
	ID          uint      `json:"id" db:"id"`
	CriteriaID  uint      `json:"criteria_id" db:"criteria_id"`
	Position    Position  `json:"position" db:"position"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// User represents a user in the system
type User struct {
	ID           uint      `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"user_role"`
	JobRoleID    *uint     `json:"job_role_id,omitempty" db:"job_role_id"`
	Position     Position  `json:"position" db:"position"`
	FullName     string    `json:"full_name" db:"full_name"`
	Email        string    `json:"email" db:"email"`
	Department   string    `json:"department" db:"department"`
	Appointment  string    `json:"appointment" db:"appointment"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserWithStatus extends User with derived review status
type UserWithStatus struct {
	User
	HasCurrentReviews bool `json:"has_current_reviews"`
}

// Review represents one review period for one user
type Review struct {
	ID            uint       `json:"id" db:"id"`
	UserID        uint       `json:"user_id" db:"user_id"`
	Period        string     `json:"period" db:"period"`
	Completed     bool       `json:"completed" db:"completed"`
	CompletedDate *time.Time `json:"completed_date,omitempty" db:"completed_date"`
	UserPosition  Position   `json:"user_position" db:"user_position"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// SelfReview holds the reviewee's own free-text reflection for a review
type SelfReview struct {
	ID          uint      `json:"id" db:"id"`
	ReviewID    uint      `json:"review_id" db:"review_id"`
	Description string    `json:"description" db:"description"`
	GoodThings  string    `json:"good_things" db:"good_things"`
	BadThings   string    `json:"bad_things" db:"bad_things"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Sheet represents one reviewer's feedback sheet within a review
type Sheet struct {
	ID            uint          `json:"id" db:"id"`
	ReviewID      uint          `json:"review_id" db:"review_id"`
	ReviewerID    uint          `json:"reviewer_id" db:"reviewer_id"`
	DueDate       time.Time     `json:"due_date" db:"due_date"`
	Weight        *float64      `json:"weight,omitempty" db:"weight"`
	ReviewerGroup ReviewerGroup `json:"reviewer_group" db:"reviewer_group"`
	Completed     bool          `json:"completed" db:"completed"`
	CompletedDate *time.Time    `json:"completed_date,omitempty" db:"completed_date"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// Answer represents a reviewer's rating of one criterion on one sheet
type Answer struct {
	ID         uint      `json:"id" db:"id"`
	SheetID    uint      `json:"sheet_id" db:"sheet_id"`
	CriteriaID uint      `json:"criteria_id" db:"criteria_id"`
	Score      *Score    `json:"score,omitempty" db:"score"`
	Comment    *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// SheetAnswer holds the reviewer's overall verdict for a sheet, one per sheet
type SheetAnswer struct {
	ID         uint      `json:"id" db:"id"`
	SheetID    uint      `json:"sheet_id" db:"sheet_id"`
	TotalScore *Score    `json:"total_score,omitempty" db:"total_score"`
	Comment    *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        uint      `json:"id" db:"id"`
	UserID    *uint     `json:"user_id,omitempty" db:"user_id"`
	Username  *string   `json:"username,omitempty" db:"username"`
	Action    string    `json:"action" db:"action"`
	Resource  string    `json:"resource" db:"resource"`
	Details   string    `json:"details,omitempty" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SheetWithAnswers extends Sheet with its answers, overall comment and derived state
type SheetWithAnswers struct {
	Sheet
	Answers       []Answer     `json:"answers"`
	SheetAnswer   *SheetAnswer `json:"sheet_answer,omitempty"`
	IsFilled      bool         `json:"is_filled"`
	AvgScoreValue float64      `json:"avg_score_value"`
	AvgScore      Score        `json:"avg_score"`
}

// Comment is one reviewer remark surfaced in aggregated results
type Comment struct {
	Text string `json:"text"`
}

// CriteriaResult aggregates all reviewer answers for one criterion
type CriteriaResult struct {
	CriteriaID    uint      `json:"criteria_id"`
	CriteriaName  string    `json:"criteria_name"`
	ScoreValue    float64   `json:"score_value"`
	MinScoreValue float64   `json:"min_score_value"`
	MaxScoreValue float64   `json:"max_score_value"`
	Score         Score     `json:"score"`
	MinScore      Score     `json:"min_score"`
	MaxScore      Score     `json:"max_score"`
	Comments      []Comment `json:"comments"`
}

// TotalResult aggregates the whole review across sheets
type TotalResult struct {
	ScoreValue float64   `json:"score_value"`
	Score      Score     `json:"score"`
	Comments   []Comment `json:"comments"`
}

// SheetCounters summarizes sheet progress for a review
type SheetCounters struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Filled    int `json:"filled"`
}

// ReviewWithResults extends Review with freshly derived aggregates
type ReviewWithResults struct {
	Review
	CriteriaResults []CriteriaResult   `json:"criteria_results"`
	TotalResult     TotalResult        `json:"total_result"`
	Counters        SheetCounters      `json:"counters"`
	SelfReview      *SelfReview        `json:"self_review,omitempty"`
	Sheets          []SheetWithAnswers `json:"sheets,omitempty"`
}

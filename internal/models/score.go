package models

import "math"

// Score is a reviewer's rating on the ordered expectations scale.
// NONE means "no opinion" and is excluded from numeric aggregation.
type Score string

const (
	ScoreNone     Score = "NONE"
	ScoreWayBelow Score = "WAY_BELOW_EXPECTATIONS"
	ScoreBelow    Score = "BELOW_EXPECTATIONS"
	ScoreMeet     Score = "MEET_EXPECTATIONS"
	ScoreAbove    Score = "ABOVE_EXPECTATIONS"
	ScoreWayAbove Score = "WAY_ABOVE_EXPECTATIONS"
)

// scoreOrder defines the ordinal value of every score, NONE first.
var scoreOrder = []Score{
	ScoreNone,
	ScoreWayBelow,
	ScoreBelow,
	ScoreMeet,
	ScoreAbove,
	ScoreWayAbove,
}

// Ordinal returns the numeric position of the score on the scale (NONE = 0).
func (s Score) Ordinal() int {
	for i, v := range scoreOrder {
		if v == s {
			return i
		}
	}
	return 0
}

// Valid reports whether s is one of the known scores.
func (s Score) Valid() bool {
	for _, v := range scoreOrder {
		if v == s {
			return true
		}
	}
	return false
}

// ScoreForValue maps a numeric score value to the nearest discrete score,
// clamped to the scale bounds.
func ScoreForValue(value float64) Score {
	idx := int(math.Round(value))
	if idx < 0 {
		idx = 0
	}
	if idx > len(scoreOrder)-1 {
		idx = len(scoreOrder) - 1
	}
	return scoreOrder[idx]
}

// Position is a user's seniority level. Reviews cannot be created for users
// whose position is still NONE.
type Position string

const (
	PositionNone    Position = "NONE"
	PositionTrainee Position = "TRAINEE"
	PositionJunior  Position = "JUNIOR"
	PositionMiddle  Position = "MIDDLE"
	PositionSenior  Position = "SENIOR"
)

// Valid reports whether p is one of the known positions.
func (p Position) Valid() bool {
	switch p {
	case PositionNone, PositionTrainee, PositionJunior, PositionMiddle, PositionSenior:
		return true
	}
	return false
}

// UserRole controls what part of the API a user may call.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleHead  UserRole = "HEAD"
	RoleAdmin UserRole = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleHead, RoleAdmin:
		return true
	}
	return false
}

// ReviewerGroup is a categorical tag describing the reviewer's relation to
// the reviewee. It is not used in score aggregation.
type ReviewerGroup string

const (
	GroupStakeholder    ReviewerGroup = "STAKEHOLDER"
	GroupColleague      ReviewerGroup = "COLLEAGUE"
	GroupMentee         ReviewerGroup = "MENTEE"
	GroupMentor         ReviewerGroup = "MENTOR"
	GroupManager        ReviewerGroup = "MANAGER"
	GroupProjectManager ReviewerGroup = "PROJECT_MANAGER"
)

// Valid reports whether g is one of the known reviewer groups.
func (g ReviewerGroup) Valid() bool {
	switch g {
	case GroupStakeholder, GroupColleague, GroupMentee, GroupMentor, GroupManager, GroupProjectManager:
		return true
	}
	return false
}

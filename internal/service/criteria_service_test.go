package service

import (
	"errors"
	"testing"

	"feedback/internal/models"
)

func TestJobRolesAndCriteria(t *testing.T) {
	env := newTestEnv(t)

	t.Run("job role names are unique", func(t *testing.T) {
		jobRole, err := env.criteria.CreateJobRole(env.fixtures.Admin, "QA Engineer")
		if err != nil {
			t.Fatalf("Failed to create job role: %v", err)
		}
		if jobRole.Name != "QA Engineer" {
			t.Errorf("Unexpected job role: %+v", jobRole)
		}

		_, err = env.criteria.CreateJobRole(env.fixtures.Admin, "QA Engineer")
		var val *ValidationError
		if !errors.As(err, &val) {
			t.Fatalf("Expected validation error on duplicate, got %v", err)
		}

		if _, err := env.criteria.CreateJobRole(env.fixtures.Admin, ""); err == nil {
			t.Error("Expected empty name to be rejected")
		}
	})

	t.Run("archiving hides a criterion from the default listing", func(t *testing.T) {
		criteria := env.fixtures.Criteria[2]
		updated, err := env.criteria.UpdateCriteria(env.fixtures.Admin, criteria.ID, nil, boolPtr(true))
		if err != nil {
			t.Fatalf("Failed to archive criteria: %v", err)
		}
		if !updated.Archived {
			t.Error("Expected criteria to be archived")
		}

		active, err := env.criteria.ListCriteria(env.fixtures.JobRole.ID, false)
		if err != nil {
			t.Fatalf("Failed to list criteria: %v", err)
		}
		if len(active) != 2 {
			t.Errorf("Expected 2 active criteria, got %d", len(active))
		}

		all, err := env.criteria.ListCriteria(env.fixtures.JobRole.ID, true)
		if err != nil {
			t.Fatalf("Failed to list criteria: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("Expected 3 criteria including archived, got %d", len(all))
		}
	})

	t.Run("criteria names are unique per job role", func(t *testing.T) {
		_, err := env.criteria.CreateCriteria(env.fixtures.Admin, env.fixtures.JobRole.ID, "Code Quality")
		var val *ValidationError
		if !errors.As(err, &val) {
			t.Fatalf("Expected validation error on duplicate, got %v", err)
		}

		other, err := env.criteria.CreateJobRole(env.fixtures.Admin, "Product Manager")
		if err != nil {
			t.Fatalf("Failed to create job role: %v", err)
		}
		if _, err := env.criteria.CreateCriteria(env.fixtures.Admin, other.ID, "Code Quality"); err != nil {
			t.Errorf("Expected same name under another job role to be allowed, got %v", err)
		}
	})

	t.Run("expectations are unique per position", func(t *testing.T) {
		criteria := env.fixtures.Criteria[0]

		expectation, err := env.criteria.CreateExpectation(env.fixtures.Admin, criteria.ID, models.PositionJunior, "Writes readable code with guidance")
		if err != nil {
			t.Fatalf("Failed to create expectation: %v", err)
		}
		if expectation.Position != models.PositionJunior {
			t.Errorf("Unexpected expectation: %+v", expectation)
		}

		_, err = env.criteria.CreateExpectation(env.fixtures.Admin, criteria.ID, models.PositionJunior, "Another take")
		var val *ValidationError
		if !errors.As(err, &val) {
			t.Fatalf("Expected validation error on duplicate position, got %v", err)
		}

		if _, err := env.criteria.CreateExpectation(env.fixtures.Admin, criteria.ID, models.Position("GURU"), "x"); err == nil {
			t.Error("Expected unknown position to be rejected")
		}

		listed, err := env.criteria.ListExpectations(criteria.ID)
		if err != nil {
			t.Fatalf("Failed to list expectations: %v", err)
		}
		if len(listed) != 1 {
			t.Errorf("Expected 1 expectation, got %d", len(listed))
		}
	})

	t.Run("unknown job role is reported", func(t *testing.T) {
		_, err := env.criteria.ListCriteria(99999, false)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("Expected not found error, got %v", err)
		}
	})
}

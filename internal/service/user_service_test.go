package service

import (
	"errors"
	"testing"

	"feedback/internal/models"
	"feedback/internal/repository"
	"feedback/internal/testutil"
)

func TestFirstUserBecomesAdmin(t *testing.T) {
	tc := testutil.SetupTestContainers(t)
	t.Cleanup(func() { tc.Cleanup(t) })

	userRepo := repository.NewUserRepository(tc.DB)
	jobRoleRepo := repository.NewJobRoleRepository(tc.DB)
	auditService := NewAuditService(repository.NewAuditRepository(tc.DB))
	users := NewUserService(userRepo, jobRoleRepo, auditService)

	alice, err := users.UpdateOrCreateDefault("alice", "Alice Adams", "alice@test.com", "Engineering", "", true, "hash")
	if err != nil {
		t.Fatalf("Failed to create first user: %v", err)
	}
	if alice.Role != models.RoleAdmin {
		t.Errorf("Expected first user to be ADMIN, got %v", alice.Role)
	}

	bob, err := users.UpdateOrCreateDefault("bob", "Bob Brown", "bob@test.com", "Engineering", "", true, "hash")
	if err != nil {
		t.Fatalf("Failed to create second user: %v", err)
	}
	if bob.Role != models.RoleUser {
		t.Errorf("Expected second user to be USER, got %v", bob.Role)
	}

	// upsert on an existing user updates the profile and keeps the role
	alice, err = users.UpdateOrCreateDefault("alice", "Alice Adams-Smith", "alice@test.com", "Engineering", "Team Lead", true, "")
	if err != nil {
		t.Fatalf("Failed to update existing user: %v", err)
	}
	if alice.Role != models.RoleAdmin {
		t.Errorf("Expected role to survive the upsert, got %v", alice.Role)
	}
	if alice.FullName != "Alice Adams-Smith" || alice.Appointment != "Team Lead" {
		t.Errorf("Expected profile fields to be updated, got %+v", alice)
	}
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)

	t.Run("only admins change roles", func(t *testing.T) {
		role := models.RoleHead
		_, err := env.users.UpdateUser(env.fixtures.Head, env.fixtures.Reviewee.ID, &role, nil, nil)
		var denied *AccessDeniedError
		if !errors.As(err, &denied) {
			t.Fatalf("Expected access denied error, got %v", err)
		}
		if denied.Message != "You are not allowed to change user role" {
			t.Errorf("Unexpected message: %q", denied.Message)
		}

		updated, err := env.users.UpdateUser(env.fixtures.Admin, env.fixtures.Reviewee.ID, &role, nil, nil)
		if err != nil {
			t.Fatalf("Failed to change role as admin: %v", err)
		}
		if updated.Role != models.RoleHead {
			t.Errorf("Expected role HEAD, got %v", updated.Role)
		}
	})

	t.Run("assigns job role and position", func(t *testing.T) {
		position := models.PositionJunior
		updated, err := env.users.UpdateUser(env.fixtures.Admin, env.fixtures.Head.ID, nil, &env.fixtures.JobRole.ID, &position)
		if err != nil {
			t.Fatalf("Failed to update user: %v", err)
		}
		if updated.JobRoleID == nil || *updated.JobRoleID != env.fixtures.JobRole.ID {
			t.Errorf("Expected job role %d, got %v", env.fixtures.JobRole.ID, updated.JobRoleID)
		}
		if updated.Position != models.PositionJunior {
			t.Errorf("Expected position JUNIOR, got %v", updated.Position)
		}
	})

	t.Run("rejects unknown job role", func(t *testing.T) {
		badJobRole := uint(99999)
		_, err := env.users.UpdateUser(env.fixtures.Admin, env.fixtures.Head.ID, nil, &badJobRole, nil)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("Expected not found error, got %v", err)
		}
	})

	t.Run("rejects unknown position", func(t *testing.T) {
		position := models.Position("PRINCIPAL")
		_, err := env.users.UpdateUser(env.fixtures.Admin, env.fixtures.Head.ID, nil, nil, &position)
		var val *ValidationError
		if !errors.As(err, &val) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})
}

func TestGetWithStatus(t *testing.T) {
	env := newTestEnv(t)

	before, err := env.users.GetWithStatus(env.fixtures.Reviewee.ID)
	if err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	if before.HasCurrentReviews {
		t.Error("Expected no current reviews before any exist")
	}

	review, err := env.reviews.CreateReview(env.fixtures.Head, env.fixtures.Reviewee.ID, "2026-H1")
	if err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}

	during, err := env.users.GetWithStatus(env.fixtures.Reviewee.ID)
	if err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	if !during.HasCurrentReviews {
		t.Error("Expected an open review to be reported")
	}

	if _, err := env.reviews.UpdateReview(env.fixtures.Head, review.ID, ReviewPatch{Completed: boolPtr(true)}); err != nil {
		t.Fatalf("Failed to complete review: %v", err)
	}

	after, err := env.users.GetWithStatus(env.fixtures.Reviewee.ID)
	if err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	if after.HasCurrentReviews {
		t.Error("Expected completed reviews not to count as current")
	}
}

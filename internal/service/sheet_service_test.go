package service

import (
	"errors"
	"testing"
	"time"

	"feedback/internal/models"
	"feedback/internal/testutil"
)

func TestCreateSheet(t *testing.T) {
	env := newTestEnv(t)
	dueDate := time.Now().Add(14 * 24 * time.Hour)

	review, err := env.reviews.CreateReview(env.fixtures.Head, env.fixtures.Reviewee.ID, "2026-H1")
	if err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}

	t.Run("generates one stub per active criterion plus the verdict", func(t *testing.T) {
		sheet, err := env.sheets.CreateSheet(env.fixtures.Head, review.ID, env.fixtures.Reviewer.ID, dueDate, "")
		if err != nil {
			t.Fatalf("Failed to create sheet: %v", err)
		}
		if sheet.ReviewerGroup != models.GroupColleague {
			t.Errorf("Expected default group COLLEAGUE, got %v", sheet.ReviewerGroup)
		}

		got, err := env.sheets.GetSheet(sheet.ID)
		if err != nil {
			t.Fatalf("Failed to reload sheet: %v", err)
		}
		if len(got.Answers) != 3 {
			t.Fatalf("Expected 3 answer stubs, got %d", len(got.Answers))
		}
		for _, answer := range got.Answers {
			if answer.Score != nil || answer.Comment != nil {
				t.Errorf("Expected empty stub, got %+v", answer)
			}
		}
		if got.SheetAnswer == nil {
			t.Fatal("Expected a verdict stub to exist")
		}
		if got.SheetAnswer.TotalScore != nil || got.SheetAnswer.Comment != nil {
			t.Errorf("Expected empty verdict stub, got %+v", got.SheetAnswer)
		}
		if got.IsFilled {
			t.Error("Expected fresh sheet not to be filled")
		}
	})

	t.Run("rejects a second sheet for the same reviewer", func(t *testing.T) {
		_, err := env.sheets.CreateSheet(env.fixtures.Head, review.ID, env.fixtures.Reviewer.ID, dueDate, models.GroupMentor)
		var pre *PreconditionError
		if !errors.As(err, &pre) {
			t.Fatalf("Expected precondition error, got %v", err)
		}
		if pre.Message != "Sheet for this reviewer already exists" {
			t.Errorf("Unexpected message: %q", pre.Message)
		}
	})

	t.Run("archived criteria get no stubs", func(t *testing.T) {
		testutil.CreateCriteria(t, env.fixtures.DB, env.fixtures.JobRole.ID, "Retired Criterion", true)

		sheet, err := env.sheets.CreateSheet(env.fixtures.Head, review.ID, env.fixtures.Head.ID, dueDate, models.GroupManager)
		if err != nil {
			t.Fatalf("Failed to create sheet: %v", err)
		}
		got, err := env.sheets.GetSheet(sheet.ID)
		if err != nil {
			t.Fatalf("Failed to reload sheet: %v", err)
		}
		if len(got.Answers) != 3 {
			t.Errorf("Expected 3 answer stubs, archived criteria excluded, got %d", len(got.Answers))
		}
	})

	t.Run("rejects job role without criteria", func(t *testing.T) {
		designer := testutil.CreateJobRole(t, env.fixtures.DB, "Designer")
		user := testutil.CreateUser(t, env.fixtures.DB, "designer1", models.RoleUser, &designer.ID, models.PositionJunior)
		designerReview, err := env.reviews.CreateReview(env.fixtures.Head, user.ID, "2026-H1")
		if err != nil {
			t.Fatalf("Failed to create review: %v", err)
		}

		_, err = env.sheets.CreateSheet(env.fixtures.Head, designerReview.ID, env.fixtures.Reviewer.ID, dueDate, models.GroupColleague)
		var pre *PreconditionError
		if !errors.As(err, &pre) {
			t.Fatalf("Expected precondition error, got %v", err)
		}
		if pre.Message != "Can not create sheet. Criterias for Designer does not exist" {
			t.Errorf("Unexpected message: %q", pre.Message)
		}
	})

	t.Run("rejects unknown reviewer group", func(t *testing.T) {
		_, err := env.sheets.CreateSheet(env.fixtures.Head, review.ID, env.fixtures.Admin.ID, dueDate, models.ReviewerGroup("BUDDY"))
		var val *ValidationError
		if !errors.As(err, &val) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})

	t.Run("rejects unknown review", func(t *testing.T) {
		_, err := env.sheets.CreateSheet(env.fixtures.Head, 99999, env.fixtures.Reviewer.ID, dueDate, models.GroupColleague)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("Expected not found error, got %v", err)
		}
	})
}

func TestUpdateSheet(t *testing.T) {
	env := newTestEnv(t)
	dueDate := time.Now().Add(14 * 24 * time.Hour)

	review, err := env.reviews.CreateReview(env.fixtures.Head, env.fixtures.Reviewee.ID, "2026-H1")
	if err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}
	sheet, err := env.sheets.CreateSheet(env.fixtures.Head, review.ID, env.fixtures.Reviewer.ID, dueDate, models.GroupColleague)
	if err != nil {
		t.Fatalf("Failed to create sheet: %v", err)
	}

	t.Run("patches due date and group", func(t *testing.T) {
		newDue := dueDate.Add(7 * 24 * time.Hour)
		group := models.GroupMentor
		updated, err := env.sheets.UpdateSheet(env.fixtures.Head, sheet.ID, SheetPatch{DueDate: &newDue, ReviewerGroup: &group})
		if err != nil {
			t.Fatalf("Failed to update sheet: %v", err)
		}
		if updated.ReviewerGroup != models.GroupMentor {
			t.Errorf("Expected group MENTOR, got %v", updated.ReviewerGroup)
		}
	})

	t.Run("completing stamps the completion date", func(t *testing.T) {
		updated, err := env.sheets.UpdateSheet(env.fixtures.Reviewer, sheet.ID, SheetPatch{Completed: boolPtr(true)})
		if err != nil {
			t.Fatalf("Failed to complete sheet: %v", err)
		}
		if !updated.Completed || updated.CompletedDate == nil {
			t.Error("Expected sheet to be completed with a completion date")
		}
	})

	t.Run("completed sheet is immutable", func(t *testing.T) {
		newDue := dueDate.Add(30 * 24 * time.Hour)
		_, err := env.sheets.UpdateSheet(env.fixtures.Head, sheet.ID, SheetPatch{DueDate: &newDue})
		var denied *AccessDeniedError
		if !errors.As(err, &denied) {
			t.Fatalf("Expected access denied error, got %v", err)
		}
		if denied.Message != "Not allowed to edit sheet marked as completed" {
			t.Errorf("Unexpected message: %q", denied.Message)
		}
	})

	t.Run("reopening in the same patch is allowed", func(t *testing.T) {
		newDue := dueDate.Add(30 * 24 * time.Hour)
		updated, err := env.sheets.UpdateSheet(env.fixtures.Head, sheet.ID, SheetPatch{DueDate: &newDue, Completed: boolPtr(false)})
		if err != nil {
			t.Fatalf("Failed to reopen sheet: %v", err)
		}
		if updated.Completed {
			t.Error("Expected sheet to be open again")
		}
	})
}

func TestListByReviewer(t *testing.T) {
	env := newTestEnv(t)
	dueDate := time.Now().Add(14 * 24 * time.Hour)

	review, err := env.reviews.CreateReview(env.fixtures.Head, env.fixtures.Reviewee.ID, "2026-H1")
	if err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}
	if _, err := env.sheets.CreateSheet(env.fixtures.Head, review.ID, env.fixtures.Reviewer.ID, dueDate, models.GroupColleague); err != nil {
		t.Fatalf("Failed to create sheet: %v", err)
	}

	mine, err := env.sheets.ListByReviewer(env.fixtures.Reviewer.ID)
	if err != nil {
		t.Fatalf("Failed to list sheets: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("Expected 1 sheet, got %d", len(mine))
	}
	if len(mine[0].Answers) != 3 {
		t.Errorf("Expected listed sheet to carry its answers, got %d", len(mine[0].Answers))
	}

	others, err := env.sheets.ListByReviewer(env.fixtures.Admin.ID)
	if err != nil {
		t.Fatalf("Failed to list sheets: %v", err)
	}
	if len(others) != 0 {
		t.Errorf("Expected no sheets for admin, got %d", len(others))
	}
}

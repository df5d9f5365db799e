package service

import (
	"errors"
	"testing"
	"time"

	"feedback/internal/models"
	"feedback/internal/testutil"
)

func boolPtr(b bool) *bool { return &b }

func TestCreateReview(t *testing.T) {
	env := newTestEnv(t)

	t.Run("snapshots position and spawns self review", func(t *testing.T) {
		review, err := env.reviews.CreateReview(env.fixtures.Head, env.fixtures.Reviewee.ID, "2026-H1")
		if err != nil {
			t.Fatalf("Failed to create review: %v", err)
		}
		if review.UserPosition != models.PositionMiddle {
			t.Errorf("Expected snapshotted position MIDDLE, got %v", review.UserPosition)
		}
		if review.Completed {
			t.Error("Expected new review to be open")
		}

		got, err := env.reviews.GetReview(review.ID)
		if err != nil {
			t.Fatalf("Failed to load review: %v", err)
		}
		if got.SelfReview == nil {
			t.Fatal("Expected an empty self review to exist")
		}
		if got.SelfReview.Description != "" {
			t.Errorf("Expected empty self review, got %q", got.SelfReview.Description)
		}
		if len(got.CriteriaResults) != 0 {
			t.Errorf("Expected no criteria results yet, got %d", len(got.CriteriaResults))
		}
		if got.TotalResult.Score != models.ScoreNone || got.TotalResult.ScoreValue != 0 {
			t.Errorf("Expected empty total result, got %+v", got.TotalResult)
		}
		if got.Counters.Total != 0 || got.Counters.Filled != 0 || got.Counters.Completed != 0 {
			t.Errorf("Expected zero counters, got %+v", got.Counters)
		}
	})

	t.Run("rejects user without job role", func(t *testing.T) {
		_, err := env.reviews.CreateReview(env.fixtures.Head, env.fixtures.Head.ID, "2026-H1")
		var pre *PreconditionError
		if !errors.As(err, &pre) {
			t.Fatalf("Expected precondition error, got %v", err)
		}
		if pre.Message != "Can not create review for user without jobRole" {
			t.Errorf("Unexpected message: %q", pre.Message)
		}
	})

	t.Run("rejects user without position", func(t *testing.T) {
		noPosition := testutil.CreateUser(t, env.fixtures.DB, "noposition", models.RoleUser, &env.fixtures.JobRole.ID, models.PositionNone)
		_, err := env.reviews.CreateReview(env.fixtures.Head, noPosition.ID, "2026-H1")
		var pre *PreconditionError
		if !errors.As(err, &pre) {
			t.Fatalf("Expected precondition error, got %v", err)
		}
		if pre.Message != "Can not create review for user without position" {
			t.Errorf("Unexpected message: %q", pre.Message)
		}
	})

	t.Run("rejects duplicate period", func(t *testing.T) {
		_, err := env.reviews.CreateReview(env.fixtures.Head, env.fixtures.Reviewee.ID, "2026-H1")
		var pre *PreconditionError
		if !errors.As(err, &pre) {
			t.Fatalf("Expected precondition error, got %v", err)
		}
		if pre.Message != "Review for this user and period already exists" {
			t.Errorf("Unexpected message: %q", pre.Message)
		}
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		_, err := env.reviews.CreateReview(env.fixtures.Head, 99999, "2026-H1")
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("Expected not found error, got %v", err)
		}
	})
}

func TestCompleteReviewCascadesToOpenSheets(t *testing.T) {
	env := newTestEnv(t)
	dueDate := time.Now().Add(14 * 24 * time.Hour)

	review, err := env.reviews.CreateReview(env.fixtures.Head, env.fixtures.Reviewee.ID, "2026-H2")
	if err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}
	sheet1, err := env.sheets.CreateSheet(env.fixtures.Head, review.ID, env.fixtures.Reviewer.ID, dueDate, models.GroupColleague)
	if err != nil {
		t.Fatalf("Failed to create sheet: %v", err)
	}
	sheet2, err := env.sheets.CreateSheet(env.fixtures.Head, review.ID, env.fixtures.Head.ID, dueDate, models.GroupManager)
	if err != nil {
		t.Fatalf("Failed to create sheet: %v", err)
	}

	updated, err := env.reviews.UpdateReview(env.fixtures.Head, review.ID, ReviewPatch{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("Failed to complete review: %v", err)
	}
	if !updated.Completed || updated.CompletedDate == nil {
		t.Fatal("Expected review to be completed with a completion date")
	}

	stored, err := env.reviews.GetReview(review.ID)
	if err != nil {
		t.Fatalf("Failed to reload review: %v", err)
	}

	got1, err := env.sheets.GetSheet(sheet1.ID)
	if err != nil {
		t.Fatalf("Failed to reload sheet: %v", err)
	}
	got2, err := env.sheets.GetSheet(sheet2.ID)
	if err != nil {
		t.Fatalf("Failed to reload sheet: %v", err)
	}

	for _, sheet := range []*models.SheetWithAnswers{got1, got2} {
		if !sheet.Completed || sheet.CompletedDate == nil {
			t.Fatalf("Expected sheet %d to be force-completed", sheet.ID)
		}
	}
	if !got1.CompletedDate.Equal(*got2.CompletedDate) {
		t.Errorf("Expected both sheets completed at the same instant, got %v and %v", got1.CompletedDate, got2.CompletedDate)
	}
	if stored.CompletedDate == nil || !got1.CompletedDate.Equal(*stored.CompletedDate) {
		t.Errorf("Expected sheets to carry the review's completion date %v, got %v", stored.CompletedDate, got1.CompletedDate)
	}

	// saving again while completed keeps the cascade idempotent
	if _, err := env.reviews.UpdateReview(env.fixtures.Head, review.ID, ReviewPatch{Completed: boolPtr(true)}); err != nil {
		t.Fatalf("Failed to re-save completed review: %v", err)
	}
	again, err := env.sheets.GetSheet(sheet1.ID)
	if err != nil {
		t.Fatalf("Failed to reload sheet: %v", err)
	}
	if !again.CompletedDate.Equal(*got1.CompletedDate) {
		t.Errorf("Expected completion date to stay %v, got %v", got1.CompletedDate, again.CompletedDate)
	}

	// force-completed sheets reject answer writes like any completed sheet
	score := models.ScoreMeet
	_, err = env.answers.SaveAnswer(env.fixtures.Reviewer, sheet1.ID, env.fixtures.Criteria[0].ID, &score, nil)
	var denied *AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("Expected access denied error, got %v", err)
	}
	if denied.Message != "Not allowed to modify sheet marked as completed" {
		t.Errorf("Unexpected message: %q", denied.Message)
	}
}

func TestSetWeights(t *testing.T) {
	env := newTestEnv(t)
	dueDate := time.Now().Add(14 * 24 * time.Hour)

	review, err := env.reviews.CreateReview(env.fixtures.Head, env.fixtures.Reviewee.ID, "2026-H1")
	if err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}
	sheet1, err := env.sheets.CreateSheet(env.fixtures.Head, review.ID, env.fixtures.Reviewer.ID, dueDate, models.GroupColleague)
	if err != nil {
		t.Fatalf("Failed to create sheet: %v", err)
	}
	sheet2, err := env.sheets.CreateSheet(env.fixtures.Head, review.ID, env.fixtures.Head.ID, dueDate, models.GroupManager)
	if err != nil {
		t.Fatalf("Failed to create sheet: %v", err)
	}

	t.Run("applies weights summing to one", func(t *testing.T) {
		err := env.reviews.SetWeights(env.fixtures.Head, review.ID, []SheetWeight{
			{SheetID: sheet1.ID, Weight: 0.6},
			{SheetID: sheet2.ID, Weight: 0.4},
		})
		if err != nil {
			t.Fatalf("Failed to set weights: %v", err)
		}

		got, err := env.sheets.GetSheet(sheet1.ID)
		if err != nil {
			t.Fatalf("Failed to reload sheet: %v", err)
		}
		if got.Weight == nil || *got.Weight != 0.6 {
			t.Errorf("Expected weight 0.6, got %v", got.Weight)
		}
	})

	t.Run("rejects weights not summing to one", func(t *testing.T) {
		err := env.reviews.SetWeights(env.fixtures.Head, review.ID, []SheetWeight{
			{SheetID: sheet1.ID, Weight: 0.5},
			{SheetID: sheet2.ID, Weight: 0.3},
		})
		var pre *PreconditionError
		if !errors.As(err, &pre) {
			t.Fatalf("Expected precondition error, got %v", err)
		}
		if pre.Message != "Incorrect weights" {
			t.Errorf("Unexpected message: %q", pre.Message)
		}

		got, err := env.sheets.GetSheet(sheet1.ID)
		if err != nil {
			t.Fatalf("Failed to reload sheet: %v", err)
		}
		if got.Weight == nil || *got.Weight != 0.6 {
			t.Errorf("Expected weight to stay 0.6, got %v", got.Weight)
		}
	})

	t.Run("rejects sheets of another review without partial writes", func(t *testing.T) {
		otherReview, err := env.reviews.CreateReview(env.fixtures.Head, env.fixtures.Reviewee.ID, "2026-H2")
		if err != nil {
			t.Fatalf("Failed to create review: %v", err)
		}
		foreign, err := env.sheets.CreateSheet(env.fixtures.Head, otherReview.ID, env.fixtures.Reviewer.ID, dueDate, models.GroupColleague)
		if err != nil {
			t.Fatalf("Failed to create sheet: %v", err)
		}

		err = env.reviews.SetWeights(env.fixtures.Head, review.ID, []SheetWeight{
			{SheetID: sheet1.ID, Weight: 0.5},
			{SheetID: foreign.ID, Weight: 0.5},
		})
		var val *ValidationError
		if !errors.As(err, &val) {
			t.Fatalf("Expected validation error, got %v", err)
		}

		got, err := env.sheets.GetSheet(sheet1.ID)
		if err != nil {
			t.Fatalf("Failed to reload sheet: %v", err)
		}
		if got.Weight == nil || *got.Weight != 0.6 {
			t.Errorf("Expected weight to stay 0.6, got %v", got.Weight)
		}
	})
}

func TestUpdateSelfReview(t *testing.T) {
	env := newTestEnv(t)

	review, err := env.reviews.CreateReview(env.fixtures.Head, env.fixtures.Reviewee.ID, "2026-H1")
	if err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}

	t.Run("reviewee can edit", func(t *testing.T) {
		selfReview, err := env.reviews.UpdateSelfReview(env.fixtures.Reviewee, review.ID, "my half year", "shipped things", "too many meetings")
		if err != nil {
			t.Fatalf("Failed to update self review: %v", err)
		}
		if selfReview.Description != "my half year" || selfReview.GoodThings != "shipped things" {
			t.Errorf("Unexpected self review: %+v", selfReview)
		}
	})

	t.Run("other users can not edit", func(t *testing.T) {
		_, err := env.reviews.UpdateSelfReview(env.fixtures.Reviewer, review.ID, "x", "y", "z")
		var denied *AccessDeniedError
		if !errors.As(err, &denied) {
			t.Fatalf("Expected access denied error, got %v", err)
		}
		if denied.Message != "Only the reviewee can edit the self review" {
			t.Errorf("Unexpected message: %q", denied.Message)
		}
	})

	t.Run("locked once the review is completed", func(t *testing.T) {
		if _, err := env.reviews.UpdateReview(env.fixtures.Head, review.ID, ReviewPatch{Completed: boolPtr(true)}); err != nil {
			t.Fatalf("Failed to complete review: %v", err)
		}

		_, err := env.reviews.UpdateSelfReview(env.fixtures.Reviewee, review.ID, "late edit", "", "")
		var denied *AccessDeniedError
		if !errors.As(err, &denied) {
			t.Fatalf("Expected access denied error, got %v", err)
		}
		if denied.Message != "Not allowed to edit self review of a completed review" {
			t.Errorf("Unexpected message: %q", denied.Message)
		}
	})
}

func TestListReviews(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.reviews.CreateReview(env.fixtures.Head, env.fixtures.Reviewee.ID, "2026-H1"); err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}
	if _, err := env.reviews.CreateReview(env.fixtures.Head, env.fixtures.Reviewee.ID, "2026-H2"); err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}

	byUser, err := env.reviews.ListReviews("reviewee", "")
	if err != nil {
		t.Fatalf("Failed to list reviews: %v", err)
	}
	if len(byUser) != 2 {
		t.Errorf("Expected 2 reviews for reviewee, got %d", len(byUser))
	}

	byPeriod, err := env.reviews.ListReviews("", "2026-H1")
	if err != nil {
		t.Fatalf("Failed to list reviews: %v", err)
	}
	if len(byPeriod) != 1 {
		t.Errorf("Expected 1 review for period, got %d", len(byPeriod))
	}

	none, err := env.reviews.ListReviews("nobody", "")
	if err != nil {
		t.Fatalf("Failed to list reviews: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no reviews, got %d", len(none))
	}
}

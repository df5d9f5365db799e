package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"feedback/internal/models"
	"feedback/internal/repository"
)

// ReviewPatch carries the mutable fields of a review update
type ReviewPatch struct {
	Period    *string `json:"period,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// SheetWeight is one entry of a weight batch
type SheetWeight struct {
	SheetID uint    `json:"sheet_id"`
	Weight  float64 `json:"weight"`
}

// ReviewService implements review lifecycle, weight assignment and
// read-time aggregation
type ReviewService struct {
	db              *sql.DB
	reviewRepo      *repository.ReviewRepository
	sheetRepo       *repository.SheetRepository
	answerRepo      *repository.AnswerRepository
	sheetAnswerRepo *repository.SheetAnswerRepository
	selfReviewRepo  *repository.SelfReviewRepository
	userRepo        *repository.UserRepository
	criteriaRepo    *repository.CriteriaRepository
	auditService    *AuditService
	locks           *reviewLocks
}

// NewReviewService creates a new review service
func NewReviewService(
	db *sql.DB,
	reviewRepo *repository.ReviewRepository,
	sheetRepo *repository.SheetRepository,
	answerRepo *repository.AnswerRepository,
	sheetAnswerRepo *repository.SheetAnswerRepository,
	selfReviewRepo *repository.SelfReviewRepository,
	userRepo *repository.UserRepository,
	criteriaRepo *repository.CriteriaRepository,
	auditService *AuditService,
) *ReviewService {
	return &ReviewService{
		db:              db,
		reviewRepo:      reviewRepo,
		sheetRepo:       sheetRepo,
		answerRepo:      answerRepo,
		sheetAnswerRepo: sheetAnswerRepo,
		selfReviewRepo:  selfReviewRepo,
		userRepo:        userRepo,
		criteriaRepo:    criteriaRepo,
		auditService:    auditService,
		locks:           newReviewLocks(),
	}
}

// CreateReview creates a review for a user and period, snapshotting the
// user's position and spawning an empty self review
func (s *ReviewService) CreateReview(caller *models.User, userID uint, period string) (*models.Review, error) {
	if period == "" {
		return nil, validation("period must not be empty")
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("user", userID)
		}
		return nil, err
	}

	if user.JobRoleID == nil {
		return nil, precondition("Can not create review for user without jobRole")
	}
	if user.Position == models.PositionNone {
		return nil, precondition("Can not create review for user without position")
	}

	review := &models.Review{
		UserID:       user.ID,
		Period:       period,
		UserPosition: user.Position,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	if err := s.reviewRepo.CreateTx(tx, review); err != nil {
		if errors.Is(err, repository.ErrReviewExists) {
			return nil, precondition("Review for this user and period already exists")
		}
		return nil, err
	}

	selfReview := &models.SelfReview{ReviewID: review.ID}
	if err := s.selfReviewRepo.CreateTx(tx, selfReview); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.auditService.Log(caller, "review.create", fmt.Sprintf("review:%d", review.ID),
		fmt.Sprintf("user=%s period=%s", user.Username, period))

	return review, nil
}

// UpdateReview applies a lifecycle patch to a review. Completing a review
// stamps its completion date and force-completes every still-open sheet at
// the same instant. The cascade runs on every save that leaves the review
// completed, and deliberately bypasses the sheet immutability guard.
func (s *ReviewService) UpdateReview(caller *models.User, id uint, patch ReviewPatch) (*models.Review, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	review, err := s.reviewRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, notFound("review", id)
		}
		return nil, err
	}

	wasCompleted := review.Completed

	if patch.Period != nil {
		if *patch.Period == "" {
			return nil, validation("period must not be empty")
		}
		review.Period = *patch.Period
	}
	if patch.Completed != nil {
		review.Completed = *patch.Completed
	}

	if !wasCompleted && review.Completed {
		now := time.Now()
		review.CompletedDate = &now
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	if err := s.reviewRepo.UpdateTx(tx, review); err != nil {
		return nil, err
	}

	if review.Completed {
		completedDate := time.Now()
		if review.CompletedDate != nil {
			completedDate = *review.CompletedDate
		}
		if err := s.sheetRepo.CompleteOpenByReviewTx(tx, review.ID, completedDate); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if !wasCompleted && review.Completed {
		s.auditService.Log(caller, "review.complete", fmt.Sprintf("review:%d", review.ID), "")
	}

	return review, nil
}

// SetWeights validates and applies a batch of sheet weights for a review.
// The batch is all-or-nothing: the weights must sum to 1.00 and every sheet
// must belong to the review.
func (s *ReviewService) SetWeights(caller *models.User, reviewID uint, weights []SheetWeight) error {
	sum := 0.0
	for _, w := range weights {
		sum += w.Weight
	}
	if int(math.Round(sum*100)) != 100 {
		return precondition("Incorrect weights")
	}

	unlock := s.locks.acquire(reviewID)
	defer unlock()

	if _, err := s.reviewRepo.GetByID(reviewID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return notFound("review", reviewID)
		}
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	for _, w := range weights {
		sheet, err := s.sheetRepo.GetByID(w.SheetID)
		if err != nil {
			if errors.Is(err, repository.ErrSheetNotFound) {
				return notFound("sheet", w.SheetID)
			}
			return err
		}
		if sheet.ReviewID != reviewID {
			return validation("sheet %d does not belong to review %d", w.SheetID, reviewID)
		}
		if err := s.sheetRepo.SetWeightTx(tx, w.SheetID, w.Weight); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.auditService.Log(caller, "review.weights", fmt.Sprintf("review:%d", reviewID),
		fmt.Sprintf("sheets=%d", len(weights)))

	return nil
}

// GetReview loads a review with all aggregates computed fresh
func (s *ReviewService) GetReview(id uint) (*models.ReviewWithResults, error) {
	review, err := s.reviewRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, notFound("review", id)
		}
		return nil, err
	}

	sheets, err := s.loadSheetsWithAnswers(*review)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(review.UserID)
	if err != nil {
		return nil, err
	}

	criteriaNames := map[uint]string{}
	if user.JobRoleID != nil {
		criteriaList, err := s.criteriaRepo.ListByJobRole(*user.JobRoleID, true)
		if err != nil {
			return nil, err
		}
		for _, criteria := range criteriaList {
			criteriaNames[criteria.ID] = criteria.Name
		}
	}

	selfReview, err := s.selfReviewRepo.GetByReview(review.ID)
	if err != nil && !errors.Is(err, repository.ErrSelfReviewNotFound) {
		return nil, err
	}

	results := criteriaResults(sheets, criteriaNames)

	return &models.ReviewWithResults{
		Review:          *review,
		CriteriaResults: results,
		TotalResult:     totalResult(sheets),
		Counters:        sheetCounters(sheets),
		SelfReview:      selfReview,
		Sheets:          sheets,
	}, nil
}

// ListReviews lists reviews filtered by username and/or period
func (s *ReviewService) ListReviews(username, period string) ([]models.Review, error) {
	return s.reviewRepo.List(username, period)
}

// UpdateSelfReview lets the reviewee edit the self review of their own review
func (s *ReviewService) UpdateSelfReview(caller *models.User, reviewID uint, description, goodThings, badThings string) (*models.SelfReview, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, notFound("review", reviewID)
		}
		return nil, err
	}

	if review.UserID != caller.ID {
		return nil, accessDenied("Only the reviewee can edit the self review")
	}
	if review.Completed {
		return nil, accessDenied("Not allowed to edit self review of a completed review")
	}

	selfReview, err := s.selfReviewRepo.GetByReview(reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrSelfReviewNotFound) {
			return nil, notFound("self review", reviewID)
		}
		return nil, err
	}

	selfReview.Description = description
	selfReview.GoodThings = goodThings
	selfReview.BadThings = badThings
	if err := s.selfReviewRepo.Update(selfReview); err != nil {
		return nil, err
	}

	return selfReview, nil
}

// loadSheetsWithAnswers loads every sheet of a review with derived fields
func (s *ReviewService) loadSheetsWithAnswers(review models.Review) ([]models.SheetWithAnswers, error) {
	sheets, err := s.sheetRepo.ListByReview(review.ID)
	if err != nil {
		return nil, err
	}

	answers, err := s.answerRepo.ListByReview(review.ID)
	if err != nil {
		return nil, err
	}
	answersBySheet := make(map[uint][]models.Answer)
	for _, answer := range answers {
		answersBySheet[answer.SheetID] = append(answersBySheet[answer.SheetID], answer)
	}

	sheetAnswers, err := s.sheetAnswerRepo.ListByReview(review.ID)
	if err != nil {
		return nil, err
	}
	verdictBySheet := make(map[uint]*models.SheetAnswer)
	for i := range sheetAnswers {
		verdictBySheet[sheetAnswers[i].SheetID] = &sheetAnswers[i]
	}

	result := make([]models.SheetWithAnswers, 0, len(sheets))
	for _, sheet := range sheets {
		result = append(result, deriveSheet(sheet, answersBySheet[sheet.ID], verdictBySheet[sheet.ID]))
	}

	return result, nil
}

// rollback rolls a transaction back, logging unexpected failures
func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Error("Failed to rollback transaction", "error", err)
	}
}

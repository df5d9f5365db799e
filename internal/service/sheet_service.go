package service

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"feedback/internal/models"
	"feedback/internal/repository"
)

// SheetPatch carries the mutable fields of a sheet update
type SheetPatch struct {
	DueDate       *time.Time            `json:"due_date,omitempty"`
	ReviewerGroup *models.ReviewerGroup `json:"reviewer_group,omitempty"`
	Completed     *bool                 `json:"completed,omitempty"`
}

// SheetService implements sheet lifecycle and reads
type SheetService struct {
	db              *sql.DB
	sheetRepo       *repository.SheetRepository
	reviewRepo      *repository.ReviewRepository
	answerRepo      *repository.AnswerRepository
	sheetAnswerRepo *repository.SheetAnswerRepository
	userRepo        *repository.UserRepository
	criteriaRepo    *repository.CriteriaRepository
	jobRoleRepo     *repository.JobRoleRepository
	auditService    *AuditService
	locks           *reviewLocks
}

// NewSheetService creates a new sheet service. It shares the review service's
// lock registry so sheet and review mutations serialize against each other.
func NewSheetService(
	db *sql.DB,
	sheetRepo *repository.SheetRepository,
	reviewRepo *repository.ReviewRepository,
	answerRepo *repository.AnswerRepository,
	sheetAnswerRepo *repository.SheetAnswerRepository,
	userRepo *repository.UserRepository,
	criteriaRepo *repository.CriteriaRepository,
	jobRoleRepo *repository.JobRoleRepository,
	auditService *AuditService,
	reviewService *ReviewService,
) *SheetService {
	return &SheetService{
		db:              db,
		sheetRepo:       sheetRepo,
		reviewRepo:      reviewRepo,
		answerRepo:      answerRepo,
		sheetAnswerRepo: sheetAnswerRepo,
		userRepo:        userRepo,
		criteriaRepo:    criteriaRepo,
		jobRoleRepo:     jobRoleRepo,
		auditService:    auditService,
		locks:           reviewService.locks,
	}
}

// CreateSheet creates a reviewer's sheet under a review, generating one
// answer stub per non-archived criteria of the reviewee's job role plus the
// sheet verdict stub. The criteria set is snapshotted here; criteria added
// later do not appear on existing sheets.
func (s *SheetService) CreateSheet(caller *models.User, reviewID, reviewerID uint, dueDate time.Time, reviewerGroup models.ReviewerGroup) (*models.Sheet, error) {
	if reviewerGroup == "" {
		reviewerGroup = models.GroupColleague
	}
	if !reviewerGroup.Valid() {
		return nil, validation("unknown reviewer group: %s", reviewerGroup)
	}

	unlock := s.locks.acquire(reviewID)
	defer unlock()

	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, notFound("review", reviewID)
		}
		return nil, err
	}

	if _, err := s.userRepo.GetByID(reviewerID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("user", reviewerID)
		}
		return nil, err
	}

	reviewee, err := s.userRepo.GetByID(review.UserID)
	if err != nil {
		return nil, err
	}
	if reviewee.JobRoleID == nil {
		return nil, precondition("Can not create sheet for reviewee without jobRole")
	}

	// archived criteria count towards the existence check but get no stubs
	total, err := s.criteriaRepo.CountByJobRole(*reviewee.JobRoleID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		jobRole, err := s.jobRoleRepo.GetByID(*reviewee.JobRoleID)
		if err != nil {
			return nil, err
		}
		return nil, precondition("Can not create sheet. Criterias for %s does not exist", jobRole.Name)
	}

	activeCriteria, err := s.criteriaRepo.ListByJobRole(*reviewee.JobRoleID, false)
	if err != nil {
		return nil, err
	}

	sheet := &models.Sheet{
		ReviewID:      reviewID,
		ReviewerID:    reviewerID,
		DueDate:       dueDate,
		ReviewerGroup: reviewerGroup,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	if err := s.sheetRepo.CreateTx(tx, sheet); err != nil {
		if errors.Is(err, repository.ErrSheetExists) {
			return nil, precondition("Sheet for this reviewer already exists")
		}
		return nil, err
	}

	criteriaIDs := make([]uint, 0, len(activeCriteria))
	for _, criteria := range activeCriteria {
		criteriaIDs = append(criteriaIDs, criteria.ID)
	}
	if err := s.answerRepo.InsertStubsTx(tx, sheet.ID, criteriaIDs); err != nil {
		return nil, err
	}

	if err := s.sheetAnswerRepo.CreateStubTx(tx, sheet.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.auditService.Log(caller, "sheet.create", fmt.Sprintf("sheet:%d", sheet.ID),
		fmt.Sprintf("review=%d reviewer=%d", reviewID, reviewerID))

	return sheet, nil
}

// UpdateSheet applies a lifecycle patch to a sheet. A sheet that is stored
// completed and stays completed is immutable; it must be reopened first.
func (s *SheetService) UpdateSheet(caller *models.User, id uint, patch SheetPatch) (*models.Sheet, error) {
	sheet, err := s.sheetRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrSheetNotFound) {
			return nil, notFound("sheet", id)
		}
		return nil, err
	}

	unlock := s.locks.acquire(sheet.ReviewID)
	defer unlock()

	// reload under the lock, the cascade may have completed it meanwhile
	sheet, err = s.sheetRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrSheetNotFound) {
			return nil, notFound("sheet", id)
		}
		return nil, err
	}

	wasCompleted := sheet.Completed

	if patch.DueDate != nil {
		sheet.DueDate = *patch.DueDate
	}
	if patch.ReviewerGroup != nil {
		if !patch.ReviewerGroup.Valid() {
			return nil, validation("unknown reviewer group: %s", *patch.ReviewerGroup)
		}
		sheet.ReviewerGroup = *patch.ReviewerGroup
	}
	if patch.Completed != nil {
		sheet.Completed = *patch.Completed
	}

	if wasCompleted && sheet.Completed {
		return nil, accessDenied("Not allowed to edit sheet marked as completed")
	}

	if !wasCompleted && sheet.Completed {
		now := time.Now()
		sheet.CompletedDate = &now
	}

	if err := s.sheetRepo.Update(sheet); err != nil {
		return nil, err
	}

	if !wasCompleted && sheet.Completed {
		s.auditService.Log(caller, "sheet.complete", fmt.Sprintf("sheet:%d", sheet.ID), "")
	}

	return sheet, nil
}

// GetSheet loads a sheet with answers, verdict and derived fields
func (s *SheetService) GetSheet(id uint) (*models.SheetWithAnswers, error) {
	sheet, err := s.sheetRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrSheetNotFound) {
			return nil, notFound("sheet", id)
		}
		return nil, err
	}

	answers, err := s.answerRepo.ListBySheet(id)
	if err != nil {
		return nil, err
	}

	sheetAnswer, err := s.sheetAnswerRepo.GetBySheet(id)
	if err != nil && !errors.Is(err, repository.ErrSheetAnswerNotFound) {
		return nil, err
	}

	derived := deriveSheet(*sheet, answers, sheetAnswer)
	return &derived, nil
}

// ListByReviewer lists a reviewer's sheets with derived fields
func (s *SheetService) ListByReviewer(reviewerID uint) ([]models.SheetWithAnswers, error) {
	sheets, err := s.sheetRepo.ListByReviewer(reviewerID)
	if err != nil {
		return nil, err
	}

	result := make([]models.SheetWithAnswers, 0, len(sheets))
	for _, sheet := range sheets {
		answers, err := s.answerRepo.ListBySheet(sheet.ID)
		if err != nil {
			return nil, err
		}
		sheetAnswer, err := s.sheetAnswerRepo.GetBySheet(sheet.ID)
		if err != nil && !errors.Is(err, repository.ErrSheetAnswerNotFound) {
			return nil, err
		}
		result = append(result, deriveSheet(sheet, answers, sheetAnswer))
	}

	return result, nil
}

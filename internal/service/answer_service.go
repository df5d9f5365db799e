package service

import (
	"errors"
	"fmt"

	"feedback/internal/models"
	"feedback/internal/repository"
)

// AnswerService implements the mutation guard for answers and sheet verdicts
type AnswerService struct {
	answerRepo      *repository.AnswerRepository
	sheetAnswerRepo *repository.SheetAnswerRepository
	sheetRepo       *repository.SheetRepository
	reviewRepo      *repository.ReviewRepository
	userRepo        *repository.UserRepository
	criteriaRepo    *repository.CriteriaRepository
	auditService    *AuditService
	locks           *reviewLocks
}

// NewAnswerService creates a new answer service sharing the review lock
// registry
func NewAnswerService(
	answerRepo *repository.AnswerRepository,
	sheetAnswerRepo *repository.SheetAnswerRepository,
	sheetRepo *repository.SheetRepository,
	reviewRepo *repository.ReviewRepository,
	userRepo *repository.UserRepository,
	criteriaRepo *repository.CriteriaRepository,
	auditService *AuditService,
	reviewService *ReviewService,
) *AnswerService {
	return &AnswerService{
		answerRepo:      answerRepo,
		sheetAnswerRepo: sheetAnswerRepo,
		sheetRepo:       sheetRepo,
		reviewRepo:      reviewRepo,
		userRepo:        userRepo,
		criteriaRepo:    criteriaRepo,
		auditService:    auditService,
		locks:           reviewService.locks,
	}
}

// guardSheetOpen loads the sheet and rejects writes when the sheet or its
// review is completed. The caller must hold the review lock.
func (s *AnswerService) guardSheetOpen(sheetID uint) (*models.Sheet, *models.Review, error) {
	sheet, err := s.sheetRepo.GetByID(sheetID)
	if err != nil {
		if errors.Is(err, repository.ErrSheetNotFound) {
			return nil, nil, notFound("sheet", sheetID)
		}
		return nil, nil, err
	}

	review, err := s.reviewRepo.GetByID(sheet.ReviewID)
	if err != nil {
		return nil, nil, err
	}

	if sheet.Completed || review.Completed {
		return nil, nil, accessDenied("Not allowed to modify sheet marked as completed")
	}

	return sheet, review, nil
}

// SaveAnswer writes a reviewer's score and comment for one criterion. The
// sheet and its review must be open, the caller must be the sheet's
// reviewer, and the criterion must belong to the reviewee's current job role.
func (s *AnswerService) SaveAnswer(caller *models.User, sheetID, criteriaID uint, score *models.Score, comment *string) (*models.Answer, error) {
	if score != nil && !score.Valid() {
		return nil, validation("unknown score: %s", *score)
	}

	stored, err := s.sheetRepo.GetByID(sheetID)
	if err != nil {
		if errors.Is(err, repository.ErrSheetNotFound) {
			return nil, notFound("sheet", sheetID)
		}
		return nil, err
	}

	unlock := s.locks.acquire(stored.ReviewID)
	defer unlock()

	sheet, review, err := s.guardSheetOpen(sheetID)
	if err != nil {
		return nil, err
	}

	if caller.Role == models.RoleUser && sheet.ReviewerID != caller.ID {
		return nil, accessDenied("Only the assigned reviewer can fill this sheet")
	}

	criteria, err := s.criteriaRepo.GetByID(criteriaID)
	if err != nil {
		if errors.Is(err, repository.ErrCriteriaNotFound) {
			return nil, notFound("criteria", criteriaID)
		}
		return nil, err
	}

	reviewee, err := s.userRepo.GetByID(review.UserID)
	if err != nil {
		return nil, err
	}
	if reviewee.JobRoleID == nil || *reviewee.JobRoleID != criteria.JobRoleID {
		return nil, validation("Criteria jobRole does not match with reviewee jobRole")
	}

	answer := &models.Answer{
		SheetID:    sheetID,
		CriteriaID: criteriaID,
		Score:      score,
		Comment:    comment,
	}
	if err := s.answerRepo.Upsert(answer); err != nil {
		return nil, err
	}

	return answer, nil
}

// SaveSheetAnswer writes the reviewer's overall verdict for a sheet. Same
// open-sheet guard as SaveAnswer, without the job role check.
func (s *AnswerService) SaveSheetAnswer(caller *models.User, sheetID uint, totalScore *models.Score, comment *string) (*models.SheetAnswer, error) {
	if totalScore != nil && !totalScore.Valid() {
		return nil, validation("unknown score: %s", *totalScore)
	}

	stored, err := s.sheetRepo.GetByID(sheetID)
	if err != nil {
		if errors.Is(err, repository.ErrSheetNotFound) {
			return nil, notFound("sheet", sheetID)
		}
		return nil, err
	}

	unlock := s.locks.acquire(stored.ReviewID)
	defer unlock()

	sheet, _, err := s.guardSheetOpen(sheetID)
	if err != nil {
		return nil, err
	}

	if caller.Role == models.RoleUser && sheet.ReviewerID != caller.ID {
		return nil, accessDenied("Only the assigned reviewer can fill this sheet")
	}

	sheetAnswer := &models.SheetAnswer{
		SheetID:    sheetID,
		TotalScore: totalScore,
		Comment:    comment,
	}
	if err := s.sheetAnswerRepo.Update(sheetAnswer); err != nil {
		if errors.Is(err, repository.ErrSheetAnswerNotFound) {
			return nil, notFound("sheet answer", sheetID)
		}
		return nil, err
	}

	s.auditService.Log(caller, "sheet.answer", fmt.Sprintf("sheet:%d", sheetID), "")

	return sheetAnswer, nil
}

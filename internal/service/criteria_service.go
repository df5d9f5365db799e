package service

import (
	"errors"

	"feedback/internal/models"
	"feedback/internal/repository"
)

// CriteriaService manages job roles, criteria and expectations
type CriteriaService struct {
	jobRoleRepo  *repository.JobRoleRepository
	criteriaRepo *repository.CriteriaRepository
	auditService *AuditService
}

// NewCriteriaService creates a new criteria service
func NewCriteriaService(jobRoleRepo *repository.JobRoleRepository, criteriaRepo *repository.CriteriaRepository, auditService *AuditService) *CriteriaService {
	return &CriteriaService{
		jobRoleRepo:  jobRoleRepo,
		criteriaRepo: criteriaRepo,
		auditService: auditService,
	}
}

// CreateJobRole creates a job role with a unique name
func (s *CriteriaService) CreateJobRole(caller *models.User, name string) (*models.JobRole, error) {
	if name == "" {
		return nil, validation("job role name must not be empty")
	}

	jobRole := &models.JobRole{Name: name}
	if err := s.jobRoleRepo.Create(jobRole); err != nil {
		if errors.Is(err, repository.ErrJobRoleExists) {
			return nil, validation("job role %q already exists", name)
		}
		return nil, err
	}

	s.auditService.Log(caller, "jobrole.create", name, "")

	return jobRole, nil
}

// ListJobRoles retrieves all job roles
func (s *CriteriaService) ListJobRoles() ([]models.JobRole, error) {
	return s.jobRoleRepo.List()
}

// CreateCriteria creates a criterion under a job role
func (s *CriteriaService) CreateCriteria(caller *models.User, jobRoleID uint, name string) (*models.Criteria, error) {
	if name == "" {
		return nil, validation("criteria name must not be empty")
	}

	if _, err := s.jobRoleRepo.GetByID(jobRoleID); err != nil {
		if errors.Is(err, repository.ErrJobRoleNotFound) {
			return nil, notFound("job role", jobRoleID)
		}
		return nil, err
	}

	criteria := &models.Criteria{Name: name, JobRoleID: jobRoleID}
	if err := s.criteriaRepo.Create(criteria); err != nil {
		if errors.Is(err, repository.ErrCriteriaExists) {
			return nil, validation("criteria %q already exists for this job role", name)
		}
		return nil, err
	}

	s.auditService.Log(caller, "criteria.create", name, "")

	return criteria, nil
}

// UpdateCriteria renames a criterion and/or toggles its archived flag
func (s *CriteriaService) UpdateCriteria(caller *models.User, id uint, name *string, archived *bool) (*models.Criteria, error) {
	criteria, err := s.criteriaRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrCriteriaNotFound) {
			return nil, notFound("criteria", id)
		}
		return nil, err
	}

	if name != nil {
		if *name == "" {
			return nil, validation("criteria name must not be empty")
		}
		criteria.Name = *name
	}
	if archived != nil {
		criteria.Archived = *archived
	}

	if err := s.criteriaRepo.Update(criteria); err != nil {
		if errors.Is(err, repository.ErrCriteriaExists) {
			return nil, validation("criteria %q already exists for this job role", criteria.Name)
		}
		return nil, err
	}

	return criteria, nil
}

// ListCriteria retrieves a job role's criteria
func (s *CriteriaService) ListCriteria(jobRoleID uint, includeArchived bool) ([]models.Criteria, error) {
	if _, err := s.jobRoleRepo.GetByID(jobRoleID); err != nil {
		if errors.Is(err, repository.ErrJobRoleNotFound) {
			return nil, notFound("job role", jobRoleID)
		}
		return nil, err
	}
	return s.criteriaRepo.ListByJobRole(jobRoleID, includeArchived)
}

// CreateExpectation attaches a position-level expectation to a criterion
func (s *CriteriaService) CreateExpectation(caller *models.User, criteriaID uint, position models.Position, description string) (*models.Expectation, error) {
	if !position.Valid() {
		return nil, validation("unknown position: %s", position)
	}

	if _, err := s.criteriaRepo.GetByID(criteriaID); err != nil {
		if errors.Is(err, repository.ErrCriteriaNotFound) {
			return nil, notFound("criteria", criteriaID)
		}
		return nil, err
	}

	expectation := &models.Expectation{
		CriteriaID:  criteriaID,
		Position:    position,
		Description: description,
	}
	if err := s.criteriaRepo.CreateExpectation(expectation); err != nil {
		if errors.Is(err, repository.ErrExpectationExists) {
			return nil, validation("expectation for position %s already exists", position)
		}
		return nil, err
	}

	return expectation, nil
}

// ListExpectations retrieves a criterion's expectations
func (s *CriteriaService) ListExpectations(criteriaID uint) ([]models.Expectation, error) {
	if _, err := s.criteriaRepo.GetByID(criteriaID); err != nil {
		if errors.Is(err, repository.ErrCriteriaNotFound) {
			return nil, notFound("criteria", criteriaID)
		}
		return nil, err
	}
	return s.criteriaRepo.ListExpectations(criteriaID)
}

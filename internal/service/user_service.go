package service

import (
	"errors"

	"feedback/internal/models"
	"feedback/internal/repository"
)

// UserService implements user provisioning and profile management
type UserService struct {
	userRepo     *repository.UserRepository
	jobRoleRepo  *repository.JobRoleRepository
	auditService *AuditService
}

// NewUserService creates a new user service
func NewUserService(userRepo *repository.UserRepository, jobRoleRepo *repository.JobRoleRepository, auditService *AuditService) *UserService {
	return &UserService{
		userRepo:     userRepo,
		jobRoleRepo:  jobRoleRepo,
		auditService: auditService,
	}
}

// UpdateOrCreateDefault upserts a directory-synced user profile. A new user
// gets ADMIN if no admin exists yet, USER otherwise.
func (s *UserService) UpdateOrCreateDefault(username, fullName, email, department, appointment string, active bool, passwordHash string) (*models.User, error) {
	if username == "" {
		return nil, validation("username must not be empty")
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	if user != nil {
		user.FullName = fullName
		user.Email = email
		user.Department = department
		user.Appointment = appointment
		user.Active = active
		if passwordHash != "" {
			user.PasswordHash = passwordHash
		}
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	role, err := s.defaultRole()
	if err != nil {
		return nil, err
	}

	user = &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		Position:     models.PositionNone,
		FullName:     fullName,
		Email:        email,
		Department:   department,
		Appointment:  appointment,
		Active:       active,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// defaultRole returns ADMIN while no admin user exists, USER afterwards
func (s *UserService) defaultRole() (models.UserRole, error) {
	hasAdmin, err := s.userRepo.ExistsByRole(models.RoleAdmin)
	if err != nil {
		return "", err
	}
	if hasAdmin {
		return models.RoleUser, nil
	}
	return models.RoleAdmin, nil
}

// UpdateUser lets an admin change a user's role, job role and position
func (s *UserService) UpdateUser(caller *models.User, id uint, role *models.UserRole, jobRoleID *uint, position *models.Position) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("user", id)
		}
		return nil, err
	}

	if role != nil && *role != user.Role {
		if caller.Role != models.RoleAdmin {
			return nil, accessDenied("You are not allowed to change user role")
		}
		if !role.Valid() {
			return nil, validation("unknown user role: %s", *role)
		}
		user.Role = *role
	}

	if jobRoleID != nil {
		if _, err := s.jobRoleRepo.GetByID(*jobRoleID); err != nil {
			if errors.Is(err, repository.ErrJobRoleNotFound) {
				return nil, notFound("job role", *jobRoleID)
			}
			return nil, err
		}
		user.JobRoleID = jobRoleID
	}

	if position != nil {
		if !position.Valid() {
			return nil, validation("unknown position: %s", *position)
		}
		user.Position = *position
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	s.auditService.Log(caller, "user.update", user.Username, "")

	return user, nil
}

// GetByUsername retrieves a user by username
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("user", 0)
		}
		return nil, err
	}
	return user, nil
}

// GetWithStatus retrieves a user with the derived open-reviews flag
func (s *UserService) GetWithStatus(id uint) (*models.UserWithStatus, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("user", id)
		}
		return nil, err
	}

	hasCurrent, err := s.userRepo.HasCurrentReviews(id)
	if err != nil {
		return nil, err
	}

	return &models.UserWithStatus{User: *user, HasCurrentReviews: hasCurrent}, nil
}

// List retrieves all users
func (s *UserService) List() ([]models.User, error) {
	return s.userRepo.List()
}

package handlers

import (
	"encoding/json"
	"net/http"

	"feedback/internal/middleware"
	"feedback/internal/models"
	"feedback/internal/service"
)

// UserHandler handles user profile and administration requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateUserRequest represents an admin user update
type UpdateUserRequest struct {
	Role      *models.UserRole `json:"role,omitempty"`
	JobRoleID *uint            `json:"job_role_id,omitempty"`
	Position  *models.Position `json:"position,omitempty"`
}

// GetMe returns the calling user's profile
// @Summary Get own profile
// @Description Get the authenticated user's profile with the open-reviews flag
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserWithStatus
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /users/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	user, err := h.userService.GetWithStatus(caller.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// ListUsers returns all users
// @Summary List users
// @Description Get all users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

// GetUser returns a single user with status
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.UserWithStatus
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidUserID)
		return
	}

	user, err := h.userService.GetWithStatus(id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// UpdateUser changes a user's role, job role or position
// @Summary Update user
// @Description Change a user's role, job role or position. Role changes require admin rights.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to update"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	id, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidUserID)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	user, err := h.userService.UpdateUser(caller, id, req.Role, req.JobRoleID, req.Position)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"feedback/internal/middleware"
	"feedback/internal/models"
	"feedback/internal/service"
)

// JobRoleHandler handles job role, criteria and expectation requests
type JobRoleHandler struct {
	criteriaService *service.CriteriaService
}

// NewJobRoleHandler creates a new job role handler
func NewJobRoleHandler(criteriaService *service.CriteriaService) *JobRoleHandler {
	return &JobRoleHandler{criteriaService: criteriaService}
}

// JobRoleRequest represents a job role creation request
type JobRoleRequest struct {
	Name string `json:"name"`
}

// CriteriaRequest represents a criteria creation request
type CriteriaRequest struct {
	Name string `json:"name"`
}

// UpdateCriteriaRequest represents a criteria update
type UpdateCriteriaRequest struct {
	Name     *string `json:"name,omitempty"`
	Archived *bool   `json:"archived,omitempty"`
}

// ExpectationRequest represents an expectation creation request
type ExpectationRequest struct {
	Position    models.Position `json:"position"`
	Description string          `json:"description"`
}

// CreateJobRole creates a new job role
// @Summary Create job role
// @Tags JobRoles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body JobRoleRequest true "Job role data"
// @Success 201 {object} models.JobRole
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /job-roles [post]
func (h *JobRoleHandler) CreateJobRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req JobRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	jobRole, err := h.criteriaService.CreateJobRole(caller, req.Name)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, jobRole)
}

// ListJobRoles returns all job roles
// @Summary List job roles
// @Tags JobRoles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.JobRole
// @Router /job-roles [get]
func (h *JobRoleHandler) ListJobRoles(w http.ResponseWriter, r *http.Request) {
	jobRoles, err := h.criteriaService.ListJobRoles()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, jobRoles)
}

// CreateCriteria adds a criterion to a job role
// @Summary Create criteria
// @Tags JobRoles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job role ID"
// @Param request body CriteriaRequest true "Criteria data"
// @Success 201 {object} models.Criteria
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Job role not found"
// @Router /job-roles/{id}/criteria [post]
func (h *JobRoleHandler) CreateCriteria(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	jobRoleID, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidJobRoleID)
		return
	}

	var req CriteriaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	criteria, err := h.criteriaService.CreateCriteria(caller, jobRoleID, req.Name)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, criteria)
}

// ListCriteria returns a job role's criteria
// @Summary List criteria
// @Description Get a job role's criteria, optionally including archived ones
// @Tags JobRoles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job role ID"
// @Param include_archived query bool false "Include archived criteria"
// @Success 200 {array} models.Criteria
// @Failure 404 {object} map[string]string "Job role not found"
// @Router /job-roles/{id}/criteria [get]
func (h *JobRoleHandler) ListCriteria(w http.ResponseWriter, r *http.Request) {
	jobRoleID, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidJobRoleID)
		return
	}

	includeArchived := r.URL.Query().Get("include_archived") == "true"

	criteria, err := h.criteriaService.ListCriteria(jobRoleID, includeArchived)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, criteria)
}

// UpdateCriteria renames or archives a criterion
// @Summary Update criteria
// @Tags JobRoles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Criteria ID"
// @Param request body UpdateCriteriaRequest true "Fields to update"
// @Success 200 {object} models.Criteria
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Criteria not found"
// @Router /criteria/{id} [patch]
func (h *JobRoleHandler) UpdateCriteria(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	id, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidCriteriaID)
		return
	}

	var req UpdateCriteriaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	criteria, err := h.criteriaService.UpdateCriteria(caller, id, req.Name, req.Archived)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, criteria)
}

// CreateExpectation attaches a position-level expectation to a criterion
// @Summary Create expectation
// @Tags JobRoles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Criteria ID"
// @Param request body ExpectationRequest true "Expectation data"
// @Success 201 {object} models.Expectation
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Criteria not found"
// @Router /criteria/{id}/expectations [post]
func (h *JobRoleHandler) CreateExpectation(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	criteriaID, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidCriteriaID)
		return
	}

	var req ExpectationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	expectation, err := h.criteriaService.CreateExpectation(caller, criteriaID, req.Position, req.Description)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, expectation)
}

// ListExpectations returns a criterion's expectations
// @Summary List expectations
// @Tags JobRoles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Criteria ID"
// @Success 200 {array} models.Expectation
// @Failure 404 {object} map[string]string "Criteria not found"
// @Router /criteria/{id}/expectations [get]
func (h *JobRoleHandler) ListExpectations(w http.ResponseWriter, r *http.Request) {
	criteriaID, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidCriteriaID)
		return
	}

	expectations, err := h.criteriaService.ListExpectations(criteriaID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, expectations)
}

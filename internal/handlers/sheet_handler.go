package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"feedback/internal/middleware"
	"feedback/internal/models"
	"feedback/internal/service"
)

// SheetHandler handles feedback sheet requests
type SheetHandler struct {
	sheetService *service.SheetService
}

// NewSheetHandler creates a new sheet handler
func NewSheetHandler(sheetService *service.SheetService) *SheetHandler {
	return &SheetHandler{sheetService: sheetService}
}

// CreateSheetRequest represents a sheet creation request
type CreateSheetRequest struct {
	ReviewID      uint                 `json:"review_id"`
	ReviewerID    uint                 `json:"reviewer_id"`
	DueDate       time.Time            `json:"due_date"`
	ReviewerGroup models.ReviewerGroup `json:"reviewer_group,omitempty"`
}

// CreateSheet creates a feedback sheet for a review
// @Summary Create sheet
// @Description Create a feedback sheet with answer stubs for the reviewee's active criteria
// @Tags Sheets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSheetRequest true "Sheet data"
// @Success 201 {object} models.Sheet
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Review or reviewer not found"
// @Failure 412 {object} map[string]string "Reviewee has no criteria"
// @Router /sheets [post]
func (h *SheetHandler) CreateSheet(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req CreateSheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	sheet, err := h.sheetService.CreateSheet(caller, req.ReviewID, req.ReviewerID, req.DueDate, req.ReviewerGroup)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, sheet)
}

// GetSheet returns a sheet with its answers and derived state
// @Summary Get sheet
// @Tags Sheets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sheet ID"
// @Success 200 {object} models.SheetWithAnswers
// @Failure 404 {object} map[string]string "Sheet not found"
// @Router /sheets/{id} [get]
func (h *SheetHandler) GetSheet(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidSheetID)
		return
	}

	sheet, err := h.sheetService.GetSheet(id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, sheet)
}

// UpdateSheet changes a sheet's due date, reviewer group or completion flag
// @Summary Update sheet
// @Description Update a sheet. Completed sheets reject further edits.
// @Tags Sheets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sheet ID"
// @Param request body service.SheetPatch true "Fields to update"
// @Success 200 {object} models.Sheet
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Sheet completed"
// @Failure 404 {object} map[string]string "Sheet not found"
// @Router /sheets/{id} [patch]
func (h *SheetHandler) UpdateSheet(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	id, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidSheetID)
		return
	}

	var patch service.SheetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	sheet, err := h.sheetService.UpdateSheet(caller, id, patch)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, sheet)
}

// ListMySheets returns the caller's sheets as a reviewer
// @Summary List own sheets
// @Description Get all sheets assigned to the authenticated user as reviewer
// @Tags Sheets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.SheetWithAnswers
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /sheets [get]
func (h *SheetHandler) ListMySheets(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	sheets, err := h.sheetService.ListByReviewer(caller.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, sheets)
}

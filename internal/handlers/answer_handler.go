package handlers

import (
	"encoding/json"
	"net/http"

	"feedback/internal/middleware"
	"feedback/internal/models"
	"feedback/internal/service"
)

// AnswerHandler handles answer and overall sheet answer requests
type AnswerHandler struct {
	answerService *service.AnswerService
}

// NewAnswerHandler creates a new answer handler
func NewAnswerHandler(answerService *service.AnswerService) *AnswerHandler {
	return &AnswerHandler{answerService: answerService}
}

// AnswerRequest represents a per-criteria answer
type AnswerRequest struct {
	Score   *models.Score `json:"score,omitempty"`
	Comment *string       `json:"comment,omitempty"`
}

// SheetAnswerRequest represents the overall sheet answer
type SheetAnswerRequest struct {
	TotalScore *models.Score `json:"total_score,omitempty"`
	Comment    *string       `json:"comment,omitempty"`
}

// SaveAnswer upserts an answer on a sheet
// @Summary Save answer
// @Description Save the score and comment for one criterion on a sheet
// @Tags Sheets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sheet ID"
// @Param criteriaId path int true "Criteria ID"
// @Param request body AnswerRequest true "Answer data"
// @Success 200 {object} models.Answer
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Sheet completed or not the reviewer"
// @Failure 404 {object} map[string]string "Sheet or criteria not found"
// @Router /sheets/{id}/answers/{criteriaId} [put]
func (h *AnswerHandler) SaveAnswer(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	sheetID, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidSheetID)
		return
	}

	criteriaID, err := parsePathID(r, "criteriaId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidCriteriaID)
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	answer, err := h.answerService.SaveAnswer(caller, sheetID, criteriaID, req.Score, req.Comment)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, answer)
}

// SaveSheetAnswer updates the overall score and comment of a sheet
// @Summary Save sheet answer
// @Description Save the overall total score and comment for a sheet
// @Tags Sheets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sheet ID"
// @Param request body SheetAnswerRequest true "Sheet answer data"
// @Success 200 {object} models.SheetAnswer
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Sheet completed or not the reviewer"
// @Failure 404 {object} map[string]string "Sheet not found"
// @Router /sheets/{id}/sheet-answer [put]
func (h *AnswerHandler) SaveSheetAnswer(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	sheetID, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidSheetID)
		return
	}

	var req SheetAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	sheetAnswer, err := h.answerService.SaveSheetAnswer(caller, sheetID, req.TotalScore, req.Comment)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, sheetAnswer)
}

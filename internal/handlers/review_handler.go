package handlers

import (
	"encoding/json"
	"net/http"

	"feedback/internal/middleware"
	"feedback/internal/service"
)

// ReviewHandler handles review lifecycle requests
type ReviewHandler struct {
	reviewService *service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReviewRequest represents a review creation request
type CreateReviewRequest struct {
	UserID uint   `json:"user_id"`
	Period string `json:"period"`
}

// SetWeightsRequest represents a weight batch for a review's sheets
type SetWeightsRequest struct {
	Weights []service.SheetWeight `json:"weights"`
}

// SelfReviewRequest represents a self review update
type SelfReviewRequest struct {
	Description string `json:"description"`
	GoodThings  string `json:"good_things"`
	BadThings   string `json:"bad_things"`
}

// CreateReview starts a review for a user
// @Summary Create review
// @Description Start a review period for a user. Spawns an empty self review.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReviewRequest true "Review data"
// @Success 201 {object} models.Review
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 412 {object} map[string]string "User not reviewable"
// @Router /reviews [post]
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	review, err := h.reviewService.CreateReview(caller, req.UserID, req.Period)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, review)
}

// GetReview returns a review with derived results
// @Summary Get review
// @Description Get a review with sheets, criteria results, total result and counters
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Success 200 {object} models.ReviewWithResults
// @Failure 404 {object} map[string]string "Review not found"
// @Router /reviews/{id} [get]
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidReviewID)
		return
	}

	review, err := h.reviewService.GetReview(id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, review)
}

// ListReviews returns reviews with optional filters
// @Summary List reviews
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param username query string false "Filter by reviewee username"
// @Param period query string false "Filter by period"
// @Success 200 {array} models.Review
// @Router /reviews [get]
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.ListReviews(
		r.URL.Query().Get("username"),
		r.URL.Query().Get("period"),
	)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reviews)
}

// UpdateReview changes a review's period or completion flag
// @Summary Update review
// @Description Update a review. Completing a review force-completes its open sheets.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param request body service.ReviewPatch true "Fields to update"
// @Success 200 {object} models.Review
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Review not found"
// @Router /reviews/{id} [patch]
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	id, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidReviewID)
		return
	}

	var patch service.ReviewPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	review, err := h.reviewService.UpdateReview(caller, id, patch)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, review)
}

// SetWeights assigns sheet weights for a review
// @Summary Set sheet weights
// @Description Assign weights to a review's sheets. Weights must sum to 1.0.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param request body SetWeightsRequest true "Weight batch"
// @Success 204 "Weights assigned"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Review or sheet not found"
// @Failure 412 {object} map[string]string "Incorrect weights"
// @Router /reviews/{id}/weights [put]
func (h *ReviewHandler) SetWeights(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	id, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidReviewID)
		return
	}

	var req SetWeightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.reviewService.SetWeights(caller, id, req.Weights); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateSelfReview fills in the reviewee's self review
// @Summary Update self review
// @Description Update the self review text fields. Only the reviewee may do this.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param request body SelfReviewRequest true "Self review text"
// @Success 200 {object} models.SelfReview
// @Failure 403 {object} map[string]string "Not the reviewee"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 412 {object} map[string]string "Review completed"
// @Router /reviews/{id}/self-review [put]
func (h *ReviewHandler) UpdateSelfReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	id, err := parsePathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidReviewID)
		return
	}

	var req SelfReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	selfReview, err := h.reviewService.UpdateSelfReview(caller, id, req.Description, req.GoodThings, req.BadThings)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, selfReview)
}

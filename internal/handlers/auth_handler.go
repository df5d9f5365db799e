package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"feedback/internal/auth"
	"feedback/internal/repository"
	"feedback/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *auth.Service
	userService *service.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Department  string `json:"department"`
	Appointment string `json:"appointment"`
}

// Login handles user login
// @Summary User login
// @Description Authenticate with username and password, returns a JWT token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{} "Login successful with token"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}
	if req.Username == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.userService.GetByUsername(req.Username)
	if err != nil {
		slog.Warn("Login failed", "username", req.Username, "ip", getIP(r))
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.Active || h.authService.VerifyPassword(user.PasswordHash, req.Password) != nil {
		slog.Warn("Login failed", "username", req.Username, "ip", getIP(r))
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		slog.Error("Token generation failed", "user_id", user.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	slog.Info("User logged in", "user_id", user.ID, "username", user.Username, "ip", getIP(r))

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "Bearer",
		"user":         user,
	})
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a user account. The first registered user becomes an admin.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Username taken"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}
	if req.Username == "" || len(req.Password) < 8 {
		respondWithError(w, http.StatusBadRequest, "Username and a password of at least 8 characters are required")
		return
	}

	if _, err := h.userService.GetByUsername(req.Username); err == nil {
		respondWithError(w, http.StatusConflict, "Username already taken")
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user, err := h.userService.UpdateOrCreateDefault(req.Username, req.FullName, req.Email, req.Department, req.Appointment, true, hash)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			respondWithError(w, http.StatusConflict, "Username already taken")
			return
		}
		respondWithServiceError(w, err)
		return
	}

	slog.Info("User registered", "user_id", user.ID, "username", user.Username)

	respondWithJSON(w, http.StatusCreated, user)
}

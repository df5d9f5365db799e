package middleware

import (
	"context"
	"net/http"
	"strings"

	"feedback/internal/auth"
	"feedback/internal/models"
	"feedback/internal/repository"
)

type contextKey string

const callerKey contextKey = "caller"

// AuthMiddleware validates JWT tokens and resolves the calling user
type AuthMiddleware struct {
	authService *auth.Service
	userRepo    *repository.UserRepository
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService *auth.Service, userRepo *repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
	}
}

// Authenticate validates the bearer token and loads the caller from the
// database so handlers always see the user's current role, not the role at
// token issue time.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := m.authService.ValidateToken(parts[1])
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := m.userRepo.GetByID(claims.UserID)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Unknown user")
			return
		}
		if !user.Active {
			respondWithError(w, http.StatusUnauthorized, "User is deactivated")
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCaller retrieves the authenticated user from the request context
func GetCaller(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(callerKey).(*models.User)
	return user, ok
}

// Helper function to respond with JSON error
func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

package middleware

import (
	"net/http"

	"feedback/internal/models"
)

// RBACMiddleware handles role-based access control
type RBACMiddleware struct{}

// NewRBACMiddleware creates a new RBAC middleware
func NewRBACMiddleware() *RBACMiddleware {
	return &RBACMiddleware{}
}

// RequireAnyRole checks that the caller holds one of the given roles
func (m *RBACMiddleware) RequireAnyRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := GetCaller(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			for _, role := range roles {
				if caller.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}

// RequireAdmin checks that the caller is an admin
func (m *RBACMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireAnyRole(models.RoleAdmin)(next)
}

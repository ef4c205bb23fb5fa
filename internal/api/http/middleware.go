package http

import (
	"context"
	"net/http"
	"strings"

	"assetdesk-backend/internal/apperrors"
	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/logger"
	"assetdesk-backend/internal/repository"
	"assetdesk-backend/internal/security"
)

type contextKey string

const userContextKey contextKey = "current_user"

// Middleware guards routes with JWT auth and role checks.
type Middleware struct {
	tokens   security.TokenManager
	userRepo repository.UserRepository
}

func NewMiddleware(tokens security.TokenManager, userRepo repository.UserRepository) *Middleware {
	return &Middleware{tokens: tokens, userRepo: userRepo}
}

// Protect validates the access token and loads the current user row, so
// role or status changes take effect on the next request rather than at
// token expiry.
func (m *Middleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			respondError(w, apperrors.Unauthorized("not authorized to access this route"))
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			respondError(w, apperrors.Unauthorized("not authorized to access this route"))
			return
		}

		user, err := m.userRepo.GetByID(r.Context(), claims.UserID)
		if err != nil {
			respondError(w, apperrors.Unauthorized("not authorized to access this route"))
			return
		}
		if user.Status == domain.UserStatusSuspended {
			respondError(w, apperrors.Forbidden("account is suspended"))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authorize allows only the listed roles through. It must run after Protect.
func (m *Middleware) Authorize(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r)
			if user == nil {
				respondError(w, apperrors.Unauthorized("not authorized to access this route"))
				return
			}
			if !allowed[user.Role] {
				logger.Warn("Role denied", "userID", user.ID, "role", user.Role, "path", r.URL.Path)
				respondError(w, apperrors.Forbidden("role %s is not authorized to access this route", user.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission checks the role permission table instead of naming
// roles directly.
func (m *Middleware) RequirePermission(p domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r)
			if user == nil {
				respondError(w, apperrors.Unauthorized("not authorized to access this route"))
				return
			}
			if !domain.HasPermission(user.Role, p) {
				respondError(w, apperrors.Forbidden("you do not have permission to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentUser returns the authenticated user placed in the context by
// Protect, or nil outside a protected route.
func CurrentUser(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/getlims/limsgo/internal/models"
	"github.com/getlims/limsgo/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

type contextKey string

const UserContextKey contextKey = "user"

// Auth verifies JWT bearer tokens and stores the claims on the request context
func Auth(secret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			// Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := utils.ValidateToken(parts[1], secret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the JWT claims stored by Auth, if any
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(UserContextKey).(jwt.MapClaims)
	return claims, ok
}

// UserIDFromContext returns the authenticated user's ID, zero when absent
func UserIDFromContext(ctx context.Context) uint {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0
	}
	// JSON numbers decode as float64 in MapClaims
	if id, ok := claims["id"].(float64); ok {
		return uint(id)
	}
	return 0
}

// IsStaff reports whether the authenticated caller carries the staff role
func IsStaff(ctx context.Context) bool {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return false
	}
	role, _ := claims["role"].(string)
	return role == models.RoleStaff
}

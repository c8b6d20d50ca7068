package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/GlebRadaev/projecthub/pkg/utils"
	"go.uber.org/zap"
)

type ContextKey string

const (
	UserIDKey ContextKey = "userID"
	RoleKey   ContextKey = "role"
)

const RoleAdmin = "admin"

// RoleLookup reads the current role of a user from storage.
type RoleLookup interface {
	UserRole(ctx context.Context, userID int) (string, error)
}

// OwnerResolver returns the id of the user owning the resource addressed by r.
type OwnerResolver func(r *http.Request) (int, error)

func AuthMiddleware(jwtService JWTServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoadRole re-reads the role of the token subject on every request.
func LoadRole(lookup RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r.Context())
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			role, err := lookup.UserRole(r.Context(), userID)
			if err != nil {
				zap.L().Error("can't load user role", zap.Int("userID", userID), zap.Error(err))
				utils.RespondWithAppError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAdmin(lookup RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return LoadRole(lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdmin(r.Context()) {
				utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// RequireOwnerOrAdmin lets the request through when the token subject owns the
// resource or has the admin role. It expects LoadRole to run first.
func RequireOwnerOrAdmin(owner OwnerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, err := owner(r)
			if err != nil {
				utils.RespondWithAppError(w, err)
				return
			}
			if !CanAccess(r.Context(), ownerID) {
				utils.RespondWithError(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(UserIDKey).(int)
	return id, ok && id != 0
}

func IsAdmin(ctx context.Context) bool {
	role, _ := ctx.Value(RoleKey).(string)
	return role == RoleAdmin
}

func CanAccess(ctx context.Context, ownerID int) bool {
	userID, ok := UserID(ctx)
	if ok && userID == ownerID {
		return true
	}
	return IsAdmin(ctx)
}

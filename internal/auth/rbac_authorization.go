package auth

import (
	"log/slog"
	"net/http"
)

// RBACAuthorization guards routes by permission. Checks run against the
// permissions loaded into the request context by AuthMiddleware.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

// Require allows the request through when the user holds any of the listed
// permissions. Admin is always accepted.
func (ra *RBACAuthorization) Require(permissions ...string) func(http.Handler) http.Handler {
	required := append([]string{PermAdmin}, permissions...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.HasAnyPermission(required...) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permissions", permissions,
					"user_permissions", user.Permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireManageEmployees() func(http.Handler) http.Handler {
	return ra.Require(PermManageEmployees)
}

func (ra *RBACAuthorization) RequireManageDepartments() func(http.Handler) http.Handler {
	return ra.Require(PermManageDepartments)
}

func (ra *RBACAuthorization) RequireApproveLeave() func(http.Handler) http.Handler {
	return ra.Require(PermApproveLeave)
}

func (ra *RBACAuthorization) RequireManagePayroll() func(http.Handler) http.Handler {
	return ra.Require(PermManagePayroll)
}

func (ra *RBACAuthorization) RequireManageIncentive() func(http.Handler) http.Handler {
	return ra.Require(PermManageIncentive)
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.Require()
}

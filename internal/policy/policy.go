package policy

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"noticeboard/auth"
	"noticeboard/httpx"
	"noticeboard/internal/models"
)

// Gate is the central authorization point: admin-gating for every mutating
// notification/attachment operation and for admin-only reads.
type Gate struct {
	db *gorm.DB
}

func NewGate(db *gorm.DB) *Gate { return &Gate{db: db} }

// IsAdmin reports whether the user exists and carries the admin flag.
func (g *Gate) IsAdmin(ctx context.Context, userID uint) bool {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_admin = ?", userID, true).
		Count(&count).Error
	return err == nil && count > 0
}

// RequireAdmin returns middleware that short-circuits the request unless the
// authenticated caller is an admin. The wrapped handler never runs for a
// rejected caller, so no store operation can begin.
func (g *Gate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if !g.IsAdmin(r.Context(), userID) {
				httpx.JSONError(w, http.StatusForbidden, "admin_required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
